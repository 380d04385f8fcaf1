package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jacl-coder/AstralSaints-Server/config"
)

var (
	// RedisClient 全局Redis客户端实例，未启用Redis时为 nil
	RedisClient *redis.Client
)

// InitRedis 初始化Redis连接，配置中未启用时直接返回
func InitRedis() error {
	redisConfig := config.GlobalConfig.Redis
	if !redisConfig.Enabled {
		log.Println("Redis未启用，排行榜将直接读取数据库")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     redisConfig.GetRedisAddr(),
		Password: redisConfig.Password,
		DB:       redisConfig.DB,
	})

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return fmt.Errorf("Redis连接失败: %w", err)
	}

	RedisClient = client
	log.Println("成功连接到Redis服务器")
	return nil
}

// CloseRedis 关闭Redis连接
func CloseRedis() {
	if RedisClient != nil {
		if err := RedisClient.Close(); err != nil {
			log.Printf("关闭Redis连接时发生错误: %v", err)
			return
		}
		RedisClient = nil
		log.Println("Redis连接已关闭")
	}
}
