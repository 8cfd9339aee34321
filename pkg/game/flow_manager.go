package game

import (
	"fmt"

	"github.com/quasilyte/gdata/v2"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// FreePlay 全部游戏按顺序完成后的索引，所有游戏都可进入
const FreePlay = -1

// DefaultGameOrder 规定的游戏顺序
var DefaultGameOrder = []string{"hairwashing", "toothbrushing", "handwashing"}

const flowProperty = "flow"

// GameRoute 顺序中的一个游戏
type GameRoute struct {
	ID    string
	Route string
}

type flowData struct {
	Current int `yaml:"current"`
}

// FlowManager 跨游戏顺序
//
// current 为下一个必须完成的游戏下标，只有 i <= current 的游戏可进入；
// 最后一个游戏完成后进入自由模式（FreePlay）。
type FlowManager struct {
	gdataManager *gdata.Manager
	games        []GameRoute
	current      int
}

// NewFlowManager 创建顺序管理器并加载进度
//
// 参数：
//   - gdataManager: gdata 存储管理器，可为 nil（降级模式）
//   - games: 按顺序排列的游戏
func NewFlowManager(gdataManager *gdata.Manager, games []GameRoute) *FlowManager {
	fm := &FlowManager{gdataManager: gdataManager, games: games}
	if err := fm.load(); err != nil {
		log.Warn().Err(err).Str("component", "FlowManager").Msg("failed to load game flow, starting over")
		fm.current = 0
	}
	return fm
}

func (fm *FlowManager) load() error {
	if fm.gdataManager == nil || !fm.gdataManager.ObjectPropExists(progressObject, flowProperty) {
		return nil
	}
	raw, err := fm.gdataManager.LoadObjectProp(progressObject, flowProperty)
	if err != nil {
		return fmt.Errorf("failed to load game flow: %w", err)
	}
	var data flowData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("failed to unmarshal game flow: %w", err)
	}
	if data.Current != FreePlay && (data.Current < 0 || data.Current >= len(fm.games)) {
		return fmt.Errorf("invalid game flow index %d", data.Current)
	}
	fm.current = data.Current
	return nil
}

func (fm *FlowManager) save() {
	if fm.gdataManager == nil {
		return
	}
	raw, err := yaml.Marshal(flowData{Current: fm.current})
	if err == nil {
		err = fm.gdataManager.SaveObjectProp(progressObject, flowProperty, raw)
	}
	if err != nil {
		log.Warn().Err(err).Str("component", "FlowManager").Msg("failed to save game flow")
	}
}

// Games 按顺序排列的游戏
func (fm *FlowManager) Games() []GameRoute {
	return fm.games
}

// EligibleGameIndex 下一个必须完成的游戏下标，自由模式返回 FreePlay
func (fm *FlowManager) EligibleGameIndex() int {
	return fm.current
}

// IsFreePlay 是否已进入自由模式
func (fm *FlowManager) IsFreePlay() bool {
	return fm.current == FreePlay
}

// CanAccessGame 第 i 个游戏是否可进入
func (fm *FlowManager) CanAccessGame(i int) bool {
	if i < 0 || i >= len(fm.games) {
		return false
	}
	return fm.current == FreePlay || i <= fm.current
}

// CanEnterRoute 路由守卫：不在顺序中的路由总是可进入
func (fm *FlowManager) CanEnterRoute(route string) bool {
	i := fm.indexOfRoute(route)
	if i < 0 {
		return true
	}
	return fm.CanAccessGame(i)
}

// CompleteCurrentGame 完成当前必须完成的游戏
func (fm *FlowManager) CompleteCurrentGame() {
	if fm.current == FreePlay {
		return
	}
	fm.current++
	if fm.current >= len(fm.games) {
		fm.current = FreePlay
	}
	log.Info().Str("component", "FlowManager").Int("current", fm.current).Msg("game flow advanced")
	fm.save()
}

// CompleteGame 完成指定游戏；只有完成当前游戏时顺序才前进
func (fm *FlowManager) CompleteGame(gameID string) {
	if fm.current == FreePlay || fm.current >= len(fm.games) || fm.games[fm.current].ID != gameID {
		return
	}
	fm.CompleteCurrentGame()
}

// NextRoute 顺序中 gameID 之后的游戏路由；最后一个游戏之后回到主页
func (fm *FlowManager) NextRoute(gameID string) string {
	for i, g := range fm.games {
		if g.ID == gameID && i+1 < len(fm.games) {
			return fm.games[i+1].Route
		}
	}
	return "/"
}

// ResetFlow 回到第一个游戏
func (fm *FlowManager) ResetFlow() {
	fm.current = 0
	fm.save()
}

func (fm *FlowManager) indexOfRoute(route string) int {
	for i, g := range fm.games {
		if g.Route == route {
			return i
		}
	}
	return -1
}
