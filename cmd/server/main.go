// main.go

package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jacl-coder/AstralSaints-Server/config"
	"github.com/jacl-coder/AstralSaints-Server/internal/auth"
	"github.com/jacl-coder/AstralSaints-Server/internal/game"
	"github.com/jacl-coder/AstralSaints-Server/internal/gateway"
	"github.com/jacl-coder/AstralSaints-Server/internal/models"
	"github.com/jacl-coder/AstralSaints-Server/internal/tables"
	"github.com/jacl-coder/AstralSaints-Server/pkg/db"
)

// stopper 可停止的服务
type stopper interface {
	Stop() error
}

func main() {
	// 解析命令行参数
	configPath := flag.String("config", "config/config.yaml", "配置文件路径")
	serviceType := flag.String("service", "all", "服务类型 (game, gateway, all)")
	flag.Parse()

	// 加载配置
	if err := config.LoadConfig(*configPath); err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	cfg := &config.GlobalConfig

	// 加载数值表
	t, err := loadTables(cfg.Game.TablesPath)
	if err != nil {
		log.Fatalf("加载数值表失败: %v", err)
	}

	// 初始化数据库连接
	if err := db.InitPostgres(); err != nil {
		log.Fatalf("初始化PostgreSQL失败: %v", err)
	}
	defer db.Close()

	// 初始化Redis连接
	if err := db.InitRedis(); err != nil {
		log.Fatalf("初始化Redis失败: %v", err)
	}
	defer db.CloseRedis()

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL())
	stores := openStores()

	var services []stopper
	switch *serviceType {
	case "game":
		services = append(services, startGameServer(cfg, t, tokens, stores))
	case "gateway":
		services = append(services, startGatewayServer(cfg, t, tokens, stores))
	case "all":
		services = append(services,
			startGameServer(cfg, t, tokens, stores),
			startGatewayServer(cfg, t, tokens, stores),
		)
		log.Println("所有服务已启动")
	default:
		log.Fatalf("未知的服务类型: %s", *serviceType)
	}

	// 等待中断信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("接收到关闭信号，正在关闭服务器...")

	// 逆序关闭
	for i := len(services) - 1; i >= 0; i-- {
		if err := services[i].Stop(); err != nil {
			log.Printf("关闭服务失败: %v", err)
		}
	}

	log.Println("服务器已安全关闭")
}

// loadTables 路径为空时使用内置数值表
func loadTables(path string) (*tables.Tables, error) {
	if path == "" {
		return tables.Default()
	}
	return tables.Load(path)
}

// openStores 按已建立的连接创建存储
func openStores() gateway.Stores {
	var stores gateway.Stores
	if db.DB != nil {
		stores.Records = models.NewSessionStore(db.DB)
	}
	if db.RedisClient != nil {
		stores.Leaderboard = models.NewRedisLeaderboard(db.RedisClient)
	}
	return stores
}

// startGameServer 启动游戏服务器，结算写入可用的存储
func startGameServer(cfg *config.Config, t *tables.Tables, tokens *auth.TokenManager, stores gateway.Stores) stopper {
	server := game.NewGameServer(cfg, t, tokens)
	if stores.Leaderboard != nil {
		server.AddSink(stores.Leaderboard)
	}
	if stores.Records != nil {
		server.AddSink(stores.Records)
	}

	if err := server.Start(); err != nil {
		log.Fatalf("启动游戏服务器失败: %v", err)
	}

	log.Println("游戏服务器已启动")
	return server
}

// startGatewayServer 启动网关服务器
func startGatewayServer(cfg *config.Config, t *tables.Tables, tokens *auth.TokenManager, stores gateway.Stores) stopper {
	gatewayServer := gateway.NewGateway(cfg, t, tokens, stores)

	if err := gatewayServer.Start(); err != nil {
		log.Fatalf("启动网关服务失败: %v", err)
	}

	log.Println("网关服务已启动")
	return gatewayServer
}
