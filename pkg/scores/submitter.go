package scores

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Session 本地保存的当前玩家（game.PlayerSession 实现）
type Session interface {
	PlayerID() string
	Set(id, name string) error
	Clear() error
}

// Submitter 把小游戏成绩写入当前玩家的成绩槽
// 实现 systems.ScoreSubmitter
type Submitter struct {
	store   Store
	session Session
}

// NewSubmitter 创建 Submitter
func NewSubmitter(store Store, session Session) *Submitter {
	return &Submitter{store: store, session: session}
}

// Store 底层存储
func (s *Submitter) Store() Store { return s.store }

// StartSession 创建玩家并设为当前玩家
func (s *Submitter) StartSession(ctx context.Context, p NewPlayer) (Player, error) {
	player, err := s.store.CreatePlayer(ctx, p)
	if err != nil {
		return Player{}, fmt.Errorf("failed to create player: %w", err)
	}
	if err := s.session.Set(player.ID, player.Name); err != nil {
		return Player{}, fmt.Errorf("failed to save player session: %w", err)
	}
	return player, nil
}

// CurrentPlayer 当前玩家的完整记录
// 存储中已不存在时清除本地会话
func (s *Submitter) CurrentPlayer(ctx context.Context) (Player, error) {
	id := s.session.PlayerID()
	if id == "" {
		return Player{}, ErrNoSession
	}
	player, err := s.store.GetPlayer(ctx, id)
	if err != nil {
		s.clearIfMissing(err)
		return Player{}, err
	}
	return player, nil
}

// Submit 提交成绩，不高于已保存成绩时不写入（不算错误）
func (s *Submitter) Submit(ctx context.Context, slot, score int) error {
	id := s.session.PlayerID()
	if id == "" {
		return ErrNoSession
	}
	updated, err := s.store.UpdateBestScore(ctx, id, slot, score)
	if err != nil {
		s.clearIfMissing(err)
		return err
	}
	log.Debug().Str("component", "Submitter").Int("slot", slot).Int("score", score).Bool("updated", updated).Msg("score submitted")
	return nil
}

// FinishSession 写入排行榜并结束本地会话
func (s *Submitter) FinishSession(ctx context.Context) (LeaderboardEntry, error) {
	id := s.session.PlayerID()
	if id == "" {
		return LeaderboardEntry{}, ErrNoSession
	}
	entry, err := s.store.CompleteSession(ctx, id)
	if err != nil {
		s.clearIfMissing(err)
		return LeaderboardEntry{}, err
	}
	if err := s.session.Clear(); err != nil {
		log.Warn().Err(err).Str("component", "Submitter").Msg("failed to clear player session")
	}
	return entry, nil
}

func (s *Submitter) clearIfMissing(err error) {
	if !errors.Is(err, ErrPlayerNotFound) {
		return
	}
	log.Warn().Str("component", "Submitter").Str("player", s.session.PlayerID()).Msg("player missing from store, clearing session")
	if cerr := s.session.Clear(); cerr != nil {
		log.Warn().Err(cerr).Str("component", "Submitter").Msg("failed to clear player session")
	}
}
