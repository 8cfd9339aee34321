package game

import (
	"fmt"

	"github.com/jermochi/Hygin/pkg/config"
	"github.com/jermochi/Hygin/pkg/utils"
	"github.com/quasilyte/gdata/v2"
	"github.com/rs/zerolog/log"
)

// AppName gdata 存储目录名
const AppName = "hygin"

// OpenStorage 打开本地存储
//
// 失败时返回 nil 与错误，调用方可以继续以降级模式（仅内存）运行
func OpenStorage(appName string) (*gdata.Manager, error) {
	if err := utils.EnsureStorageDir(); err != nil {
		return nil, fmt.Errorf("failed to prepare storage directory: %w", err)
	}
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil, fmt.Errorf("failed to open gdata storage: %w", err)
	}
	log.Debug().Str("component", "Storage").Str("app", appName).Msg("local storage opened")
	return m, nil
}

// GameRoutesFrom 按规定顺序列出目录中的游戏
// 不在 DefaultGameOrder 中的游戏按 ID 顺序排在最后
func GameRoutesFrom(catalog *config.GameCatalog) []GameRoute {
	seen := make(map[string]bool)
	var routes []GameRoute
	add := func(id string) {
		def, err := catalog.Get(id)
		if err != nil || seen[id] {
			return
		}
		seen[id] = true
		routes = append(routes, GameRoute{ID: def.ID, Route: def.Route})
	}
	for _, id := range DefaultGameOrder {
		add(id)
	}
	for _, id := range catalog.IDs() {
		add(id)
	}
	return routes
}

// Profile 本地存储上的全部管理器
type Profile struct {
	Storage    *gdata.Manager // 可为 nil（降级模式）
	Settings   *SettingsManager
	Completion *CompletionRegistry
	Flow       *FlowManager
	Player     *PlayerSession
}

// OpenProfile 打开本地存储并创建各个管理器
// 存储不可用时记录警告并以降级模式返回
func OpenProfile(appName string, catalog *config.GameCatalog) *Profile {
	gm, err := OpenStorage(appName)
	if err != nil {
		log.Warn().Err(err).Str("component", "Storage").Msg("local storage unavailable, progress will not be saved")
		gm = nil
	}
	settings, _ := NewSettingsManager(gm)
	return &Profile{
		Storage:    gm,
		Settings:   settings,
		Completion: NewCompletionRegistry(gm),
		Flow:       NewFlowManager(gm, GameRoutesFrom(catalog)),
		Player:     NewPlayerSession(gm),
	}
}
