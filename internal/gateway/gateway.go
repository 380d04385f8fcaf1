package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/jacl-coder/AstralSaints-Server/config"
	"github.com/jacl-coder/AstralSaints-Server/internal/auth"
	"github.com/jacl-coder/AstralSaints-Server/internal/models"
	"github.com/jacl-coder/AstralSaints-Server/internal/tables"
)

// ServiceType 服务类型
type ServiceType string

const (
	// ServiceGame 游戏服务
	ServiceGame ServiceType = "game"
)

// ServiceInstance 服务实例
type ServiceInstance struct {
	ID        string      `json:"id"`
	Type      ServiceType `json:"type"`
	URL       *url.URL    `json:"-"`
	Health    bool        `json:"health"`
	LastCheck time.Time   `json:"last_check"`

	proxy *httputil.ReverseProxy
}

// Stores 网关可选的数据源，未连接时为 nil
type Stores struct {
	Leaderboard *models.RedisLeaderboard
	Records     *models.SessionStore
}

// Gateway API网关：游客认证、目录、战绩查询，并把 /game/ 转发到游戏服
type Gateway struct {
	config   *config.Config
	tables   *tables.Tables
	tokens   *auth.TokenManager
	stores   Stores
	services map[ServiceType][]*ServiceInstance
	mutex    sync.RWMutex

	httpServer  *http.Server
	rateLimiter *RateLimiter
	isRunning   bool
	shutdown    chan struct{}
	next        uint64
}

// APIResponse 统一的接口响应
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Code    string      `json:"code,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// NewGateway 创建新的网关
func NewGateway(cfg *config.Config, t *tables.Tables, tokens *auth.TokenManager, stores Stores) *Gateway {
	return &Gateway{
		config:   cfg,
		tables:   t,
		tokens:   tokens,
		stores:   stores,
		services: make(map[ServiceType][]*ServiceInstance),
		shutdown: make(chan struct{}),
	}
}

// Start 启动网关
func (g *Gateway) Start() error {
	if g.isRunning {
		return fmt.Errorf("网关已经在运行")
	}

	// 初始化HTTP服务器
	g.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", g.config.Server.GatewayPort),
		Handler: g.createHandler(),
	}

	// 注册内部服务
	g.registerInternalServices()

	// 启动健康检查
	go g.healthCheck()

	// 启动HTTP服务器
	go func() {
		log.Printf("API网关启动，监听端口: %d", g.config.Server.GatewayPort)
		if err := g.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP服务器错误: %v", err)
		}
	}()

	g.isRunning = true
	return nil
}

// Stop 停止网关
func (g *Gateway) Stop() error {
	if !g.isRunning {
		return nil
	}

	close(g.shutdown)
	if g.rateLimiter != nil {
		g.rateLimiter.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := g.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP服务器关闭错误: %w", err)
	}

	g.isRunning = false
	log.Println("API网关已停止")
	return nil
}

// RegisterService 注册服务
func (g *Gateway) RegisterService(serviceType ServiceType, serviceURL string) (*ServiceInstance, error) {
	parsedURL, err := url.Parse(serviceURL)
	if err != nil || parsedURL.Host == "" {
		return nil, fmt.Errorf("无效的服务URL: %s", serviceURL)
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	g.next++
	instance := &ServiceInstance{
		ID:        fmt.Sprintf("%s-%d", serviceType, g.next),
		Type:      serviceType,
		URL:       parsedURL,
		Health:    true,
		LastCheck: time.Now(),
		proxy:     httputil.NewSingleHostReverseProxy(parsedURL),
	}
	g.services[serviceType] = append(g.services[serviceType], instance)
	log.Printf("注册服务: %s, URL: %s", serviceType, serviceURL)

	return instance, nil
}

// UnregisterService 注销服务
func (g *Gateway) UnregisterService(serviceType ServiceType, serviceID string) bool {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	instances := g.services[serviceType]
	for i, instance := range instances {
		if instance.ID == serviceID {
			g.services[serviceType] = append(instances[:i], instances[i+1:]...)
			log.Printf("注销服务: %s, ID: %s", serviceType, serviceID)
			return true
		}
	}
	return false
}

// createHandler 创建HTTP处理器
func (g *Gateway) createHandler() http.Handler {
	mux := http.NewServeMux()

	NewAuthHandler(g.tokens).RegisterHandlers(mux)
	NewCatalogHandler(g.tables).RegisterHandlers(mux)
	g.statsHandler().RegisterHandlers(mux)

	// 游戏服转发，WebSocket 同样经过这里
	mux.HandleFunc("/game/", g.handleGameRequest)

	// 健康检查端点
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// 服务发现端点
	mux.HandleFunc("/services", g.handleServiceDiscovery)

	return g.applyMiddleware(mux)
}

// statsHandler 按可用的数据源组装战绩处理器
func (g *Gateway) statsHandler() *StatsHandler {
	var (
		board   LeaderboardReader
		records RecordReader
	)
	if g.stores.Leaderboard != nil {
		board = g.stores.Leaderboard
	}
	if g.stores.Records != nil {
		records = g.stores.Records
	}

	h := NewStatsHandler(board, records)
	if g.stores.Leaderboard != nil && g.stores.Records != nil {
		h.refresh = func(ctx context.Context) error {
			return g.stores.Leaderboard.RefreshLeaderboard(ctx, g.stores.Records)
		}
	}
	return h
}

// applyMiddleware 应用中间件
func (g *Gateway) applyMiddleware(handler http.Handler) http.Handler {
	g.rateLimiter = NewRateLimiter(120)
	// 长连接不计入频率限制
	g.rateLimiter.ExemptPrefixes = []string{"/game/ws", "/health"}

	// 从内到外
	handler = NewCacheMiddleware().Middleware(handler)
	handler = g.rateLimiter.Middleware(handler)
	handler = NewCORSMiddleware().Middleware(handler)
	handler = NewSecurityMiddleware().Middleware(handler)
	handler = NewLoggingMiddleware().Middleware(handler)

	return handler
}

// handleGameRequest 转发到游戏服，去掉 /game 前缀
func (g *Gateway) handleGameRequest(w http.ResponseWriter, r *http.Request) {
	if _, err := g.tokens.Verify(bearerToken(r)); err != nil {
		sendError(w, "未授权", http.StatusUnauthorized)
		return
	}

	instance := g.getServiceInstance(ServiceGame)
	if instance == nil {
		sendError(w, "服务不可用", http.StatusServiceUnavailable)
		return
	}

	r.URL.Path = strings.TrimPrefix(r.URL.Path, "/game")
	r.Header.Set("X-Forwarded-Host", r.Host)
	r.Host = instance.URL.Host

	instance.proxy.ServeHTTP(w, r)
}

// handleServiceDiscovery 列出已注册的服务实例
func (g *Gateway) handleServiceDiscovery(w http.ResponseWriter, r *http.Request) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	services := make(map[ServiceType][]ServiceInstance, len(g.services))
	for serviceType, instances := range g.services {
		for _, instance := range instances {
			services[serviceType] = append(services[serviceType], *instance)
		}
	}
	sendSuccess(w, "查询成功", services)
}

// getServiceInstance 轮询选择健康的实例
func (g *Gateway) getServiceInstance(serviceType ServiceType) *ServiceInstance {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	var healthy []*ServiceInstance
	for _, instance := range g.services[serviceType] {
		if instance.Health {
			healthy = append(healthy, instance)
		}
	}
	if len(healthy) == 0 {
		return nil
	}

	g.next++
	return healthy[g.next%uint64(len(healthy))]
}

// registerInternalServices 注册内部服务
func (g *Gateway) registerInternalServices() {
	gameURL := fmt.Sprintf("http://localhost:%d", g.config.Server.GamePort)
	if _, err := g.RegisterService(ServiceGame, gameURL); err != nil {
		log.Printf("注册服务失败: %v", err)
	}
}

// healthCheck 健康检查
func (g *Gateway) healthCheck() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			g.checkServicesHealth()
		case <-g.shutdown:
			return
		}
	}
}

// checkServicesHealth 检查服务健康状态
func (g *Gateway) checkServicesHealth() {
	g.mutex.RLock()
	var instances []*ServiceInstance
	for _, list := range g.services {
		instances = append(instances, list...)
	}
	g.mutex.RUnlock()

	client := http.Client{Timeout: 2 * time.Second}
	for _, instance := range instances {
		healthURL := *instance.URL
		healthURL.Path = "/health"

		resp, err := client.Get(healthURL.String())
		healthy := err == nil && resp.StatusCode == http.StatusOK
		if resp != nil {
			resp.Body.Close()
		}

		g.mutex.Lock()
		instance.LastCheck = time.Now()
		if healthy != instance.Health {
			if healthy {
				log.Printf("服务恢复健康: %s, ID: %s", instance.Type, instance.ID)
			} else {
				log.Printf("服务不健康: %s, ID: %s", instance.Type, instance.ID)
			}
			instance.Health = healthy
		}
		g.mutex.Unlock()
	}
}

// sendSuccess 发送成功响应
func sendSuccess(w http.ResponseWriter, message string, data interface{}) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: message, Data: data})
}

// sendError 发送错误响应
func sendError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, statusCode, APIResponse{Success: false, Message: message})
}

func writeJSON(w http.ResponseWriter, statusCode int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("编码响应失败: %v", err)
	}
}
