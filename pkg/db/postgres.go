package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/jacl-coder/AstralSaints-Server/config"
	_ "github.com/lib/pq"
)

var (
	// DB 全局数据库连接实例，未启用数据库时为 nil
	DB *sql.DB
)

// InitPostgres 初始化PostgreSQL连接，配置中未启用时直接返回
func InitPostgres() error {
	dbConfig := config.GlobalConfig.Database
	if !dbConfig.Enabled {
		log.Println("PostgreSQL未启用，战绩不会持久化")
		return nil
	}

	conn, err := sql.Open("postgres", dbConfig.GetDSN())
	if err != nil {
		return fmt.Errorf("连接数据库失败: %w", err)
	}
	conn.SetMaxOpenConns(10)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return fmt.Errorf("数据库Ping失败: %w", err)
	}

	DB = conn
	log.Println("成功连接到PostgreSQL数据库")
	return nil
}

// Close 关闭数据库连接
func Close() {
	if DB != nil {
		DB.Close()
		DB = nil
		log.Println("数据库连接已关闭")
	}
}
