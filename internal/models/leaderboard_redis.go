// leaderboard_redis.go

package models

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisLeaderboard Redis排行榜管理器
type RedisLeaderboard struct {
	client *redis.Client
}

// NewRedisLeaderboard 创建Redis排行榜管理器
func NewRedisLeaderboard(client *redis.Client) *RedisLeaderboard {
	return &RedisLeaderboard{client: client}
}

// 排行榜Redis键名
const (
	LeaderboardScoreKey = "leaderboard:score"
	LeaderboardKillsKey = "leaderboard:kills"

	// 玩家展示信息键前缀
	PlayerInfoPrefix = "player:info:"

	// 玩家信息缓存时间
	PlayerInfoTTL = 24 * time.Hour
)

// SubmitRecord 提交一局战绩，只保留每个玩家的最好成绩
func (rl *RedisLeaderboard) SubmitRecord(ctx context.Context, rec *SessionRecord) error {
	if err := rl.keepBest(ctx, LeaderboardScore, rec.PlayerID, float64(rec.Score)); err != nil {
		return fmt.Errorf("更新分数榜失败: %w", err)
	}
	if err := rl.keepBest(ctx, LeaderboardKills, rec.PlayerID, float64(rec.Kills)); err != nil {
		return fmt.Errorf("更新击杀榜失败: %w", err)
	}
	return rl.UpdatePlayerInfo(ctx, &LeaderboardEntry{
		PlayerID:   rec.PlayerID,
		PlayerName: rec.PlayerName,
		Ship:       rec.Ship,
	})
}

// keepBest 新成绩更高时才写入有序集合
func (rl *RedisLeaderboard) keepBest(ctx context.Context, scoreType LeaderboardType, playerID string, score float64) error {
	key := rl.getLeaderboardKey(scoreType)
	current, err := rl.client.ZScore(ctx, key, playerID).Result()
	if err != nil && err != redis.Nil {
		return err
	}
	if err == nil && current >= score {
		return nil
	}
	return rl.client.ZAdd(ctx, key, &redis.Z{Score: score, Member: playerID}).Err()
}

// UpdatePlayerInfo 缓存玩家展示信息
func (rl *RedisLeaderboard) UpdatePlayerInfo(ctx context.Context, entry *LeaderboardEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return rl.client.Set(ctx, PlayerInfoPrefix+entry.PlayerID, data, PlayerInfoTTL).Err()
}

// GetLeaderboard 获取排行榜
func (rl *RedisLeaderboard) GetLeaderboard(ctx context.Context, scoreType LeaderboardType, limit int) ([]LeaderboardEntry, error) {
	key := rl.getLeaderboardKey(scoreType)

	// 按分数降序
	members, err := rl.client.ZRevRangeWithScores(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(members))
	for i, member := range members {
		playerID, ok := member.Member.(string)
		if !ok {
			continue
		}

		entry, err := rl.getPlayerInfo(ctx, playerID)
		if err != nil {
			entry = &LeaderboardEntry{PlayerID: playerID}
		}
		entry.Score = member.Score
		entry.Rank = i + 1
		entries = append(entries, *entry)
	}

	return entries, nil
}

// GetPlayerRank 获取玩家排名，不在榜上时返回 -1
func (rl *RedisLeaderboard) GetPlayerRank(ctx context.Context, playerID string, scoreType LeaderboardType) (int, error) {
	rank, err := rl.client.ZRevRank(ctx, rl.getLeaderboardKey(scoreType), playerID).Result()
	if err != nil {
		if err == redis.Nil {
			return -1, nil
		}
		return -1, err
	}
	return int(rank) + 1, nil
}

// RefreshLeaderboard 从数据库重建排行榜
func (rl *RedisLeaderboard) RefreshLeaderboard(ctx context.Context, store *SessionStore) error {
	for _, scoreType := range []LeaderboardType{LeaderboardScore, LeaderboardKills} {
		entries, err := store.TopEntries(ctx, scoreType, 1000)
		if err != nil {
			return err
		}

		key := rl.getLeaderboardKey(scoreType)
		rl.client.Del(ctx, key)
		for i := range entries {
			if err := rl.client.ZAdd(ctx, key, &redis.Z{Score: entries[i].Score, Member: entries[i].PlayerID}).Err(); err != nil {
				return err
			}
			rl.UpdatePlayerInfo(ctx, &entries[i])
		}
	}
	return nil
}

// getLeaderboardKey 获取排行榜键名
func (rl *RedisLeaderboard) getLeaderboardKey(scoreType LeaderboardType) string {
	if scoreType == LeaderboardKills {
		return LeaderboardKillsKey
	}
	return LeaderboardScoreKey
}

// getPlayerInfo 从Redis获取玩家信息
func (rl *RedisLeaderboard) getPlayerInfo(ctx context.Context, playerID string) (*LeaderboardEntry, error) {
	data, err := rl.client.Get(ctx, PlayerInfoPrefix+playerID).Result()
	if err != nil {
		return nil, err
	}

	var entry LeaderboardEntry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}
