// stats.go

package models

import (
	"time"
)

// SessionRecord 单局战绩
type SessionRecord struct {
	ID         string    `json:"id"`
	PlayerID   string    `json:"player_id"`
	PlayerName string    `json:"player_name"`
	Ship       string    `json:"ship"`
	Score      int64     `json:"score"`
	Kills      int       `json:"kills"`
	Form       int       `json:"form"`
	Level      int       `json:"level"`
	Loop       int       `json:"loop"`
	BossClears int       `json:"boss_clears"`
	Duration   int64     `json:"duration"` // 局内时长(毫秒)
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at"`
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	PlayerID   string  `json:"player_id"`
	PlayerName string  `json:"player_name"`
	Ship       string  `json:"ship"`
	Score      float64 `json:"score"`
	Rank       int     `json:"rank"`
}

// LeaderboardType 排行榜类型
type LeaderboardType string

const (
	// LeaderboardScore 最高分排行榜
	LeaderboardScore LeaderboardType = "score"
	// LeaderboardKills 单局击杀排行榜
	LeaderboardKills LeaderboardType = "kills"
)

// ParseLeaderboardType 解析排行榜类型，未知类型返回 false
func ParseLeaderboardType(s string) (LeaderboardType, bool) {
	switch LeaderboardType(s) {
	case LeaderboardScore, "":
		return LeaderboardScore, true
	case LeaderboardKills:
		return LeaderboardKills, true
	}
	return "", false
}

// 注意：表结构定义在 pkg/db/schema.go 统一管理
