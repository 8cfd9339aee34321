package game

import (
	"fmt"
	"sort"

	"github.com/quasilyte/gdata/v2"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// MedalStatus 按完成的不同游戏数量颁发的奖牌
type MedalStatus int

const (
	MedalNone MedalStatus = iota
	MedalBronze
	MedalSilver
	MedalGold
)

func (m MedalStatus) String() string {
	switch m {
	case MedalBronze:
		return "bronze"
	case MedalSilver:
		return "silver"
	case MedalGold:
		return "gold"
	}
	return "none"
}

const (
	progressObject    = "progress"
	completedProperty = "completed"
)

// completionData 持久化格式
type completionData struct {
	Completed []string `yaml:"completed"`
}

// CompletionRegistry 本地完成记录
//
// 记录玩家完成过的游戏 ID 集合，重复标记是幂等的。
// gdataManager 为 nil 时只保存在内存中。
type CompletionRegistry struct {
	gdataManager *gdata.Manager
	completed    map[string]struct{}
}

// NewCompletionRegistry 创建完成记录并加载已保存的数据
//
// 参数：
//   - gdataManager: gdata 存储管理器，可为 nil（降级模式）
//
// 返回：
//   - *CompletionRegistry: 完成记录实例（加载失败时为空集合）
func NewCompletionRegistry(gdataManager *gdata.Manager) *CompletionRegistry {
	r := &CompletionRegistry{
		gdataManager: gdataManager,
		completed:    make(map[string]struct{}),
	}
	if err := r.load(); err != nil {
		log.Warn().Err(err).Str("component", "CompletionRegistry").Msg("failed to load completion registry")
	}
	return r
}

func (r *CompletionRegistry) load() error {
	if r.gdataManager == nil || !r.gdataManager.ObjectPropExists(progressObject, completedProperty) {
		return nil
	}
	raw, err := r.gdataManager.LoadObjectProp(progressObject, completedProperty)
	if err != nil {
		return fmt.Errorf("failed to load completed games: %w", err)
	}
	var data completionData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("failed to unmarshal completed games: %w", err)
	}
	for _, id := range data.Completed {
		r.completed[id] = struct{}{}
	}
	return nil
}

func (r *CompletionRegistry) save() error {
	if r.gdataManager == nil {
		return nil
	}
	raw, err := yaml.Marshal(completionData{Completed: r.Completed()})
	if err != nil {
		return fmt.Errorf("failed to marshal completed games: %w", err)
	}
	if err := r.gdataManager.SaveObjectProp(progressObject, completedProperty, raw); err != nil {
		return fmt.Errorf("failed to save completed games: %w", err)
	}
	return nil
}

// MarkCompleted 标记游戏已完成（幂等）
func (r *CompletionRegistry) MarkCompleted(gameID string) error {
	if gameID == "" {
		return fmt.Errorf("game id cannot be empty")
	}
	if _, ok := r.completed[gameID]; ok {
		return nil
	}
	r.completed[gameID] = struct{}{}
	log.Info().Str("component", "CompletionRegistry").Str("game", gameID).
		Str("medal", r.Medal().String()).Msg("game marked completed")
	return r.save()
}

// IsCompleted 游戏是否已完成
func (r *CompletionRegistry) IsCompleted(gameID string) bool {
	_, ok := r.completed[gameID]
	return ok
}

// Completed 已完成的游戏 ID（排序）
func (r *CompletionRegistry) Completed() []string {
	ids := make([]string, 0, len(r.completed))
	for id := range r.completed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Count 已完成的不同游戏数量
func (r *CompletionRegistry) Count() int {
	return len(r.completed)
}

// Medal 当前奖牌
func (r *CompletionRegistry) Medal() MedalStatus {
	switch n := len(r.completed); {
	case n >= 3:
		return MedalGold
	case n == 2:
		return MedalSilver
	case n == 1:
		return MedalBronze
	}
	return MedalNone
}

// Reset 清空完成记录
func (r *CompletionRegistry) Reset() error {
	r.completed = make(map[string]struct{})
	return r.save()
}
