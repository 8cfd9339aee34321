package game

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog/log"
)

// RouteHome 主页路由
const RouteHome = "/"

// SceneFactory 为路由创建场景
type SceneFactory func(route string) Scene

// RouteGuard 返回 false 时拒绝进入并重定向到主页
type RouteGuard func(route string) bool

// SceneManager 路由表与当前场景
//
// Navigate 只记录目标路由，真正的切换发生在下一次 Update 开始时，
// 因此场景可以在自己的 Update 中安全地请求跳转。
type SceneManager struct {
	currentScene Scene
	currentRoute string
	pending      string
	hasPending   bool
	routes       map[string]SceneFactory
	guard        RouteGuard
}

// NewSceneManager creates a SceneManager with an empty route table.
func NewSceneManager() *SceneManager {
	return &SceneManager{routes: make(map[string]SceneFactory)}
}

// Register 注册路由
func (sm *SceneManager) Register(route string, factory SceneFactory) {
	sm.routes[route] = factory
}

// SetGuard 设置路由守卫
func (sm *SceneManager) SetGuard(guard RouteGuard) {
	sm.guard = guard
}

// Navigate 请求跳转（实现 systems.Navigator）
func (sm *SceneManager) Navigate(route string) {
	sm.pending = route
	sm.hasPending = true
}

// SwitchTo 直接替换当前场景（不经过路由表）
func (sm *SceneManager) SwitchTo(scene Scene) {
	if leaver, ok := sm.currentScene.(Leaver); ok && sm.currentScene != scene {
		leaver.OnLeave()
	}
	sm.currentScene = scene
}

// GetCurrentScene 当前场景，没有时为 nil
func (sm *SceneManager) GetCurrentScene() Scene {
	return sm.currentScene
}

// CurrentRoute 当前路由
func (sm *SceneManager) CurrentRoute() string {
	return sm.currentRoute
}

// Close 程序退出前调用
func (sm *SceneManager) Close() {
	sm.SwitchTo(nil)
}

func (sm *SceneManager) resolve(route string) string {
	if _, ok := sm.routes[route]; !ok {
		log.Warn().Str("component", "SceneManager").Str("route", route).Msg("unknown route, going home")
		return RouteHome
	}
	if route != RouteHome && sm.guard != nil && !sm.guard(route) {
		log.Info().Str("component", "SceneManager").Str("route", route).Msg("route locked, going home")
		return RouteHome
	}
	return route
}

func (sm *SceneManager) applyPending() {
	if !sm.hasPending {
		return
	}
	sm.hasPending = false
	route := sm.resolve(sm.pending)
	factory, ok := sm.routes[route]
	if !ok {
		log.Error().Str("component", "SceneManager").Str("route", route).Msg("no scene registered")
		return
	}
	scene := factory(route)
	if scene == nil {
		log.Error().Str("component", "SceneManager").Str("route", route).Msg("failed to create scene")
		return
	}
	sm.SwitchTo(scene)
	sm.currentRoute = route
	log.Debug().Str("component", "SceneManager").Str("route", route).Msg("scene switched")
}

// Update applies a pending navigation and updates the current scene.
func (sm *SceneManager) Update(deltaTime float64) {
	sm.applyPending()
	if sm.currentScene != nil {
		sm.currentScene.Update(deltaTime)
	}
}

// Draw renders the current scene.
func (sm *SceneManager) Draw(screen *ebiten.Image) {
	if sm.currentScene != nil {
		sm.currentScene.Draw(screen)
	}
}
