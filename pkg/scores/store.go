// Package scores 玩家成绩与总排行榜的持久化
//
// 同一个 Store 接口有两种实现：直接读写 SQLite 文件的 SQLiteStore，
// 以及访问 cmd/scoreserver 的 HTTP Client。
package scores

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// SlotCount 每个玩家的成绩槽数量（每个小游戏一个）
const SlotCount = 3

// DefaultLeaderboardLimit 排行榜默认条数
const DefaultLeaderboardLimit = 10

var (
	// ErrPlayerNotFound 玩家不存在（本地会话应随之清除）
	ErrPlayerNotFound = errors.New("player not found")
	// ErrInvalidSlot 成绩槽不在 1..SlotCount 内
	ErrInvalidSlot = errors.New("invalid score slot")
	// ErrNoSession 没有当前玩家
	ErrNoSession = errors.New("no active player session")
)

// NewPlayer 创建玩家时填写的信息
type NewPlayer struct {
	Name  string `json:"name"`
	Grade string `json:"grade"`
	Age   int    `json:"age"`
}

// Player 玩家记录，三个成绩槽只保存历史最高分
type Player struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Grade      string `json:"grade"`
	Age        int    `json:"age"`
	Game1Score int    `json:"game1_score"`
	Game2Score int    `json:"game2_score"`
	Game3Score int    `json:"game3_score"`
}

// Score 返回指定槽的成绩，槽号无效时返回 0
func (p Player) Score(slot int) int {
	switch slot {
	case 1:
		return p.Game1Score
	case 2:
		return p.Game2Score
	case 3:
		return p.Game3Score
	}
	return 0
}

// Total 三个槽的总分
func (p Player) Total() int {
	return p.Game1Score + p.Game2Score + p.Game3Score
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Name       string    `json:"name"`
	TotalScore int       `json:"total_score"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store 成绩存储
type Store interface {
	// CreatePlayer 创建玩家，三个成绩槽为 0
	CreatePlayer(ctx context.Context, p NewPlayer) (Player, error)
	// GetPlayer 读取玩家，不存在时返回 ErrPlayerNotFound
	GetPlayer(ctx context.Context, id string) (Player, error)
	// UpdateBestScore 仅当新成绩严格高于已保存成绩时写入
	//
	// 返回：
	//   - bool: 是否写入
	UpdateBestScore(ctx context.Context, id string, slot, score int) (bool, error)
	// CompleteSession 把三个槽的总分写入排行榜
	CompleteSession(ctx context.Context, id string) (LeaderboardEntry, error)
	// Leaderboard 按总分降序返回前 limit 条，limit <= 0 时使用 DefaultLeaderboardLimit
	Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)
}

// ValidateSlot 检查成绩槽
func ValidateSlot(slot int) error {
	if slot < 1 || slot > SlotCount {
		return fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}
	return nil
}

// ValidateNewPlayer 检查新玩家信息
func ValidateNewPlayer(p NewPlayer) error {
	if p.Name == "" {
		return fmt.Errorf("player name cannot be empty")
	}
	if p.Age < 0 {
		return fmt.Errorf("player age cannot be negative: %d", p.Age)
	}
	return nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLeaderboardLimit
	}
	return limit
}
