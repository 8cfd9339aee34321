// Package app 提供游戏应用的核心包装器
//
// 该包将游戏初始化逻辑从 main 包提取出来，使其可以被桌面端和移动端共用。
// 桌面端通过 main.go 调用 NewApp()，移动端通过 mobile/mobile.go 调用。
package app

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jermochi/Hygin/pkg/config"
	"github.com/jermochi/Hygin/pkg/embedded"
	"github.com/jermochi/Hygin/pkg/game"
	"github.com/jermochi/Hygin/pkg/scenes"
	"github.com/jermochi/Hygin/pkg/scores"
	"github.com/jermochi/Hygin/pkg/systems"
	"github.com/jermochi/Hygin/pkg/utils"
)

// GamesDir 游戏定义所在目录（嵌入资源中）
const GamesDir = "data/games"

// registerTimeout 启动时登记玩家的超时时间
const registerTimeout = 5 * time.Second

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// Muted 覆盖保存的静音设置，nil 表示沿用
	Muted *bool
	// StartRoute 启动后进入的路由，为空时进入主页
	StartRoute string
	// Scores 成绩存储，nil 表示离线
	Scores scores.Store
	// PlayerName 没有当前玩家时用这个名字登记
	PlayerName string
	// AppName gdata 存储目录名，为空时使用 game.AppName
	AppName string
	// LogOutput 日志输出，为空时使用 stderr
	LogOutput io.Writer
}

// App 是游戏应用的核心包装器，实现 ebiten.Game 接口
type App struct {
	services                 *scenes.Services
	verbose                  bool
	pendingWindowSizeReset   bool // 延迟设置窗口大小标志
	windowSizeResetCountdown int  // 延迟帧数
}

// NewApp 创建并初始化游戏应用
//
// 调用此函数前，必须先调用 embedded.Init() 初始化嵌入资源。
func NewApp(cfg Config) (*App, error) {
	ConfigureLogging(cfg.LogOutput, cfg.Verbose)

	if !embedded.IsInitialized() {
		return nil, embedded.ErrNotInitialized
	}
	fsys := embedded.FS()

	catalog, err := config.LoadGameCatalog(fsys, GamesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load game definitions: %w", err)
	}

	appName := cfg.AppName
	if appName == "" {
		appName = game.AppName
	}
	profile := game.OpenProfile(appName, catalog)

	audioContext := audio.NewContext(game.AudioSampleRate)
	resourceManager := game.NewResourceManager(fsys, audioContext)
	audioManager := game.NewAudioManager(resourceManager, profile.Settings)
	if cfg.Muted != nil {
		audioManager.SetMuted(*cfg.Muted)
	}
	audioManager.Preload([]string{
		systems.CueTargetSuccess, systems.CueTargetFailed, systems.CueWrong,
		systems.CueGameComplete, systems.CueGameLose,
	})
	log.Debug().Str("component", "App").Msg("audio manager initialized")

	svc := &scenes.Services{
		Resources: resourceManager,
		Audio:     audioManager,
		Scenes:    game.NewSceneManager(),
		Catalog:   catalog,
		Profile:   profile,
	}
	if cfg.Scores != nil {
		svc.Submitter = scores.NewSubmitter(cfg.Scores, profile.Player)
		registerPlayer(svc.Submitter, profile.Player, cfg.PlayerName)
	}

	RegisterRoutes(svc)

	start := cfg.StartRoute
	if start == "" {
		start = systems.RouteHome
	}
	svc.Scenes.Navigate(start)

	return &App{services: svc, verbose: cfg.Verbose}, nil
}

// ConfigureLogging 设置全局日志
// 非 verbose 模式只输出警告及以上
func ConfigureLogging(w io.Writer, verbose bool) {
	if w == nil {
		w = os.Stderr
	}
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}).With().Timestamp().Logger()
}

// RegisterRoutes 注册主页与每个小游戏的路由
// 不可进入的游戏路由由守卫重定向到主页
func RegisterRoutes(svc *scenes.Services) {
	sm := svc.Scenes
	sm.Register(systems.RouteHome, func(string) game.Scene {
		return scenes.NewMainMenuScene(svc)
	})
	for _, id := range svc.Catalog.IDs() {
		def, err := svc.Catalog.Get(id)
		if err != nil {
			continue
		}
		sm.Register(def.Route, func(string) game.Scene {
			return scenes.NewMinigameScene(svc, def)
		})
	}
	sm.SetGuard(svc.Profile.Flow.CanEnterRoute)
}

// registerPlayer 没有当前玩家且配置了名字时登记新玩家
func registerPlayer(sub *scores.Submitter, session *game.PlayerSession, name string) {
	if session.Active() || name == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), registerTimeout)
	defer cancel()
	p, err := sub.StartSession(ctx, scores.NewPlayer{Name: name})
	if err != nil {
		log.Warn().Err(err).Str("component", "App").Msg("failed to register player, scores will not be saved")
		return
	}
	log.Info().Str("component", "App").Str("player", p.ID).Msg("player registered")
}

// Update 更新游戏逻辑
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	// 延迟设置窗口大小（退出全屏后需要等待几帧才能正确设置）
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(config.GameWindowWidth, config.GameWindowHeight)
			a.pendingWindowSizeReset = false
		}
	}

	// F11 切换全屏（移动端没有窗口）
	if !utils.IsMobile() && inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		a.SetFullscreen(!ebiten.IsFullscreen())
	}

	deltaTime := 1.0 / 60.0
	a.services.Scenes.Update(deltaTime)
	return nil
}

// SetFullscreen 切换全屏并保存设置
func (a *App) SetFullscreen(enabled bool) {
	if !enabled && ebiten.IsFullscreen() {
		ebiten.SetFullscreen(false)
		if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
			ebiten.RestoreWindow()
		}
		// 延迟几帧后设置窗口大小，让窗口管理器有时间处理
		a.pendingWindowSizeReset = true
		a.windowSizeResetCountdown = 3
	} else if enabled {
		ebiten.SetFullscreen(true)
	}

	settings := a.services.Profile.Settings
	settings.SetFullscreen(enabled)
	if err := settings.Save(); err != nil {
		log.Warn().Err(err).Str("component", "App").Msg("failed to save settings")
	}
}

// Fullscreen 保存的全屏设置
func (a *App) Fullscreen() bool {
	return a.services.Profile.Settings.GetSettings().Fullscreen
}

// Draw 绘制游戏画面
// 每帧调用一次
func (a *App) Draw(screen *ebiten.Image) {
	a.services.Scenes.Draw(screen)
}

// DrawFinalScreen 实现 FinalScreenDrawer 接口
// 用于控制全屏时的缩放和 letterbox 颜色
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 返回游戏的逻辑屏幕尺寸
// 此尺寸独立于实际窗口大小，Ebitengine 会自动处理缩放
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return config.GameWindowWidth, config.GameWindowHeight
}

// Close 离开当前场景（取消提交、停止声音）
func (a *App) Close() {
	a.services.Scenes.Close()
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}
