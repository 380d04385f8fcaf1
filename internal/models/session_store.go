// session_store.go

package models

import (
	"context"
	"database/sql"
	"fmt"
)

// SessionStore 战绩记录的 PostgreSQL 存储
type SessionStore struct {
	db *sql.DB
}

// NewSessionStore 创建战绩存储
func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

// InsertRecord 写入一条战绩
func (s *SessionStore) InsertRecord(ctx context.Context, rec *SessionRecord) error {
	query := `
		INSERT INTO session_records
			(id, player_id, player_name, ship, score, kills, form, level, loop, boss_clears, duration_ms, started_at, ended_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := s.db.ExecContext(ctx, query,
		rec.ID, rec.PlayerID, rec.PlayerName, rec.Ship,
		rec.Score, rec.Kills, rec.Form, rec.Level, rec.Loop, rec.BossClears,
		rec.Duration, rec.StartedAt, rec.EndedAt,
	)
	if err != nil {
		return fmt.Errorf("写入战绩失败: %w", err)
	}
	return nil
}

// SubmitRecord 对局结算时写入战绩
func (s *SessionStore) SubmitRecord(ctx context.Context, rec *SessionRecord) error {
	return s.InsertRecord(ctx, rec)
}

// RecentRecords 查询玩家最近的战绩
func (s *SessionStore) RecentRecords(ctx context.Context, playerID string, limit int) ([]SessionRecord, error) {
	query := `
		SELECT id, player_id, player_name, ship, score, kills, form, level, loop, boss_clears, duration_ms, started_at, ended_at
		FROM session_records
		WHERE player_id = $1
		ORDER BY ended_at DESC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("查询战绩失败: %w", err)
	}
	defer rows.Close()

	records := make([]SessionRecord, 0, limit)
	for rows.Next() {
		var rec SessionRecord
		if err := rows.Scan(
			&rec.ID, &rec.PlayerID, &rec.PlayerName, &rec.Ship,
			&rec.Score, &rec.Kills, &rec.Form, &rec.Level, &rec.Loop, &rec.BossClears,
			&rec.Duration, &rec.StartedAt, &rec.EndedAt,
		); err != nil {
			return nil, fmt.Errorf("解析战绩失败: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// TopEntries 按玩家最好成绩排序
func (s *SessionStore) TopEntries(ctx context.Context, scoreType LeaderboardType, limit int) ([]LeaderboardEntry, error) {
	column := "score"
	if scoreType == LeaderboardKills {
		column = "kills"
	}
	query := fmt.Sprintf(`
		SELECT DISTINCT ON (player_id) player_id, player_name, ship, %[1]s
		FROM session_records
		ORDER BY player_id, %[1]s DESC
	`, column)
	query = fmt.Sprintf(`SELECT * FROM (%s) best ORDER BY %s DESC LIMIT $1`, query, column)

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("查询排行榜失败: %w", err)
	}
	defer rows.Close()

	var entries []LeaderboardEntry
	for rows.Next() {
		var entry LeaderboardEntry
		if err := rows.Scan(&entry.PlayerID, &entry.PlayerName, &entry.Ship, &entry.Score); err != nil {
			continue
		}
		entry.Rank = len(entries) + 1
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
