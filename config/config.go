// config.go

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 服务器配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Game     GameConfig     `mapstructure:"game"`
}

// ServerConfig 服务器基本配置
type ServerConfig struct {
	GamePort       int    `mapstructure:"game_port"`
	GatewayPort    int    `mapstructure:"gateway_port"`
	Debug          bool   `mapstructure:"debug"`
	LogLevel       string `mapstructure:"log_level"`
	MaxSessions    int    `mapstructure:"max_sessions"`
	TickIntervalMS int    `mapstructure:"tick_interval_ms"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig Redis配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig 令牌签发配置
type AuthConfig struct {
	JWTSecret     string `mapstructure:"jwt_secret"`
	TokenTTLHours int    `mapstructure:"token_ttl_hours"`
	Issuer        string `mapstructure:"issuer"`
}

// GameConfig 模拟核心配置
type GameConfig struct {
	TablesPath     string `mapstructure:"tables_path"`
	Seed           int64  `mapstructure:"seed"`
	SnapshotFormat string `mapstructure:"snapshot_format"`
}

var (
	// GlobalConfig 全局配置实例
	GlobalConfig Config
)

// LoadConfig 从文件加载配置
func LoadConfig(configPath string) error {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetEnvPrefix("ASTRAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("无法读取配置文件: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("无法解析配置文件: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("配置校验失败: %w", err)
	}

	GlobalConfig = cfg
	return nil
}

// setDefaults 设置默认值，配置文件缺省时使用
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.game_port", 8081)
	v.SetDefault("server.gateway_port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.max_sessions", 200)
	v.SetDefault("server.tick_interval_ms", 16)

	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("redis.port", 6379)

	v.SetDefault("auth.token_ttl_hours", 24)
	v.SetDefault("auth.issuer", "astralsaints")

	v.SetDefault("game.snapshot_format", "json")
}

// Validate 检查配置的合法性
func (c *Config) Validate() error {
	if c.Server.TickIntervalMS <= 0 {
		return fmt.Errorf("tick_interval_ms 必须大于0, 当前为 %d", c.Server.TickIntervalMS)
	}
	if c.Server.MaxSessions <= 0 {
		return fmt.Errorf("max_sessions 必须大于0, 当前为 %d", c.Server.MaxSessions)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret 不能为空")
	}
	switch c.Game.SnapshotFormat {
	case "json", "msgpack":
	default:
		return fmt.Errorf("未知的快照格式: %s", c.Game.SnapshotFormat)
	}
	return nil
}

// TickInterval 获取帧间隔
func (c *ServerConfig) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMS) * time.Millisecond
}

// TokenTTL 获取令牌有效期
func (c *AuthConfig) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLHours) * time.Hour
}

// GetDSN 获取PostgreSQL连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// GetRedisAddr 获取Redis连接地址
func (c *RedisConfig) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
