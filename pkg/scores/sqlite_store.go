package scores

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	_ "modernc.org/sqlite" // SQLite driver.
)

// SQLiteStore SQLite 实现
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite 打开或创建数据库并建表
func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	// 单连接避免 SQLITE_BUSY
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Debug().Str("component", "SQLiteStore").Str("path", path).Msg("score database opened")
	return s, nil
}

// Close 关闭数据库
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping 检查数据库连接（健康检查使用）
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS players (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			grade TEXT NOT NULL,
			age INTEGER NOT NULL,
			game1_score INTEGER NOT NULL DEFAULT 0,
			game2_score INTEGER NOT NULL DEFAULT 0,
			game3_score INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS final_leaderboard (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			total_score INTEGER NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_final_leaderboard_total ON final_leaderboard(total_score);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// CreatePlayer 创建玩家，ID 为随机 UUID
func (s *SQLiteStore) CreatePlayer(ctx context.Context, p NewPlayer) (Player, error) {
	if err := ValidateNewPlayer(p); err != nil {
		return Player{}, err
	}
	player := Player{
		ID:    uuid.NewString(),
		Name:  p.Name,
		Grade: p.Grade,
		Age:   p.Age,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO players (id, name, grade, age, game1_score, game2_score, game3_score)
		 VALUES (?, ?, ?, ?, 0, 0, 0)`,
		player.ID, player.Name, player.Grade, player.Age)
	if err != nil {
		return Player{}, fmt.Errorf("failed to insert player: %w", err)
	}
	log.Info().Str("component", "SQLiteStore").Str("player", player.ID).Msg("player created")
	return player, nil
}

// GetPlayer 读取玩家
func (s *SQLiteStore) GetPlayer(ctx context.Context, id string) (Player, error) {
	return getPlayer(ctx, s.db, id)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getPlayer(ctx context.Context, q queryRower, id string) (Player, error) {
	var p Player
	err := q.QueryRowContext(ctx,
		`SELECT id, name, grade, age, game1_score, game2_score, game3_score FROM players WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.Grade, &p.Age, &p.Game1Score, &p.Game2Score, &p.Game3Score)
	if errors.Is(err, sql.ErrNoRows) {
		return Player{}, ErrPlayerNotFound
	}
	if err != nil {
		return Player{}, fmt.Errorf("failed to query player: %w", err)
	}
	return p, nil
}

// scoreColumn 槽号对应的列名，只返回固定的三个值
func scoreColumn(slot int) (string, error) {
	if err := ValidateSlot(slot); err != nil {
		return "", err
	}
	return fmt.Sprintf("game%d_score", slot), nil
}

// UpdateBestScore 条件更新，比较与写入在同一条语句内完成
func (s *SQLiteStore) UpdateBestScore(ctx context.Context, id string, slot, score int) (bool, error) {
	column, err := scoreColumn(slot)
	if err != nil {
		return false, err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE players SET `+column+` = ? WHERE id = ? AND `+column+` < ?`, score, id, score)
	if err != nil {
		return false, fmt.Errorf("failed to update score: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n > 0 {
		log.Info().Str("component", "SQLiteStore").Str("player", id).Int("slot", slot).Int("score", score).Msg("best score updated")
		return true, nil
	}

	// 没有写入：区分"玩家不存在"与"分数不够高"
	if _, err := s.GetPlayer(ctx, id); err != nil {
		return false, err
	}
	log.Debug().Str("component", "SQLiteStore").Str("player", id).Int("slot", slot).Int("score", score).Msg("score not higher, kept best")
	return false, nil
}

// CompleteSession 读取三个槽并写入排行榜
func (s *SQLiteStore) CompleteSession(ctx context.Context, id string) (entry LeaderboardEntry, err error) {
	if id == "" {
		return LeaderboardEntry{}, ErrNoSession
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LeaderboardEntry{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	player, err := getPlayer(ctx, tx, id)
	if err != nil {
		return LeaderboardEntry{}, err
	}
	entry = LeaderboardEntry{
		Name:       player.Name,
		TotalScore: player.Total(),
		CreatedAt:  time.Now().UTC(),
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO final_leaderboard (name, total_score, created_at) VALUES (?, ?, ?)`,
		entry.Name, entry.TotalScore, entry.CreatedAt.Format(time.RFC3339Nano)); err != nil {
		return LeaderboardEntry{}, fmt.Errorf("failed to insert leaderboard entry: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return LeaderboardEntry{}, fmt.Errorf("failed to commit: %w", err)
	}
	log.Info().Str("component", "SQLiteStore").Str("player", id).Int("total", entry.TotalScore).Msg("session completed")
	return entry, nil
}

// Leaderboard 总分降序，同分时先提交的在前
func (s *SQLiteStore) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, total_score, created_at FROM final_leaderboard
		 ORDER BY total_score DESC, id ASC LIMIT ?`, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	entries := []LeaderboardEntry{}
	for rows.Next() {
		var (
			e       LeaderboardEntry
			created string
		)
		if err := rows.Scan(&e.Name, &e.TotalScore, &created); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		e.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("failed to parse leaderboard time %q: %w", created, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}
	return entries, nil
}
