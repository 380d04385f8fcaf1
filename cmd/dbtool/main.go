// main.go

package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/jacl-coder/AstralSaints-Server/config"
	"github.com/jacl-coder/AstralSaints-Server/pkg/db"
)

func main() {
	// 解析命令行参数
	configPath := flag.String("config", "config/config.yaml", "配置文件路径")
	action := flag.String("action", "help", "操作类型: init, reset, status, help")
	flag.Parse()

	if *action == "help" {
		showHelp()
		return
	}

	// 加载配置
	if err := config.LoadConfig(*configPath); err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	if !config.GlobalConfig.Database.Enabled {
		log.Fatalf("配置中未启用数据库 (database.enabled)")
	}

	// 初始化数据库连接
	if err := db.InitPostgres(); err != nil {
		log.Fatalf("初始化PostgreSQL失败: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch *action {
	case "init":
		initDatabase(ctx)
	case "reset":
		resetDatabase(ctx)
	case "status":
		showStatus(ctx)
	default:
		log.Fatalf("未知操作: %s", *action)
	}
}

// showHelp 显示帮助信息
func showHelp() {
	log.Println("AstralSaints 数据库管理工具")
	log.Println("")
	log.Println("用法:")
	log.Println("  go run ./cmd/dbtool -action=<操作> [-config=<配置文件>]")
	log.Println("")
	log.Println("操作:")
	log.Println("  init    - 初始化数据库（创建表结构）")
	log.Println("  reset   - 重置数据库（删除所有表和数据后重建）")
	log.Println("  status  - 查看各表状态")
	log.Println("  help    - 显示此帮助信息")
}

// initDatabase 初始化数据库
func initDatabase(ctx context.Context) {
	log.Println("正在初始化数据库...")
	if err := db.InitAllTables(ctx); err != nil {
		log.Fatalf("初始化数据库表失败: %v", err)
	}
	log.Println("数据库初始化完成")
}

// resetDatabase 重置数据库
func resetDatabase(ctx context.Context) {
	log.Println("正在重置数据库，这将删除所有战绩！")
	if err := db.DropAllTables(ctx); err != nil {
		log.Fatalf("重置数据库失败: %v", err)
	}
	initDatabase(ctx)
}

// showStatus 显示各表状态
func showStatus(ctx context.Context) {
	statuses, err := db.Status(ctx)
	if err != nil {
		log.Fatalf("查询状态失败: %v", err)
	}
	for _, st := range statuses {
		if !st.Exists {
			log.Printf("  %s: 不存在", st.Name)
			continue
		}
		log.Printf("  %s: %d 行", st.Name, st.Rows)
	}
}
