package game

import (
	"fmt"
	"sync"

	"github.com/quasilyte/gdata/v2"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const (
	sessionObject   = "session"
	sessionProperty = "player"
)

// PlayerInfo 当前玩家
type PlayerInfo struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// PlayerSession 本地保存的当前玩家
// 成绩存储报告玩家不存在时应调用 Clear
// 提交在后台 goroutine 中读取会话，因此所有方法都加锁
type PlayerSession struct {
	mu           sync.Mutex
	gdataManager *gdata.Manager
	player       PlayerInfo
}

// NewPlayerSession 创建玩家会话并加载已保存的玩家
func NewPlayerSession(gdataManager *gdata.Manager) *PlayerSession {
	ps := &PlayerSession{gdataManager: gdataManager}
	if err := ps.load(); err != nil {
		log.Warn().Err(err).Str("component", "PlayerSession").Msg("failed to load player session")
	}
	return ps
}

func (ps *PlayerSession) load() error {
	if ps.gdataManager == nil || !ps.gdataManager.ObjectPropExists(sessionObject, sessionProperty) {
		return nil
	}
	raw, err := ps.gdataManager.LoadObjectProp(sessionObject, sessionProperty)
	if err != nil {
		return fmt.Errorf("failed to load player session: %w", err)
	}
	if err := yaml.Unmarshal(raw, &ps.player); err != nil {
		ps.player = PlayerInfo{}
		return fmt.Errorf("failed to unmarshal player session: %w", err)
	}
	return nil
}

func (ps *PlayerSession) save() error {
	if ps.gdataManager == nil {
		return nil
	}
	raw, err := yaml.Marshal(ps.player)
	if err != nil {
		return fmt.Errorf("failed to marshal player session: %w", err)
	}
	if err := ps.gdataManager.SaveObjectProp(sessionObject, sessionProperty, raw); err != nil {
		return fmt.Errorf("failed to save player session: %w", err)
	}
	return nil
}

// Active 是否有当前玩家
func (ps *PlayerSession) Active() bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.player.ID != ""
}

// PlayerID 当前玩家 ID（没有时为空）
func (ps *PlayerSession) PlayerID() string {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.player.ID
}

// Player 当前玩家
func (ps *PlayerSession) Player() PlayerInfo {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.player
}

// Set 设置当前玩家
func (ps *PlayerSession) Set(id, name string) error {
	if id == "" {
		return fmt.Errorf("player id cannot be empty")
	}
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.player = PlayerInfo{ID: id, Name: name}
	log.Info().Str("component", "PlayerSession").Str("player", id).Msg("player session started")
	return ps.save()
}

// Clear 结束当前玩家会话
func (ps *PlayerSession) Clear() error {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.player = PlayerInfo{}
	return ps.save()
}
