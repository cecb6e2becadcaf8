package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/EthanQC/auth-center/pkg/zlog"
)

// Config 定义从 YAML 加载的所有配置项
type Config struct {
	Server struct {
		HTTPPort int `mapstructure:"port"`
	} `mapstructure:"server"`
	JWT struct {
		// Keys 有序密钥列表：第一个负责签发，其余仍可验签，支持密钥轮换
		Keys       []string      `mapstructure:"keys"`
		AccessTTL  time.Duration `mapstructure:"access_ttl"`
		RefreshTTL time.Duration `mapstructure:"refresh_ttl"`
	} `mapstructure:"jwt"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`
	Mysql struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"mysql"`
	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
		Topic   string   `mapstructure:"topic"`
		GroupID string   `mapstructure:"group_id"`
	} `mapstructure:"kafka"`
	Session struct {
		// MaxPerUser 单身份最大并发会话数，超出时踢掉最旧的一条；0 表示不限制
		MaxPerUser int `mapstructure:"max_per_user"`
	} `mapstructure:"session"`
	Log zlog.Config `mapstructure:"log"`
}

// Load 读取配置文件并校验
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetEnvPrefix("AUTH_CENTER")

	v.SetDefault("server.port", 8080)
	v.SetDefault("jwt.access_ttl", "15m")
	v.SetDefault("jwt.refresh_ttl", "168h")
	v.SetDefault("session.max_per_user", 10)
	v.SetDefault("kafka.topic", "auth.events")
	v.SetDefault("kafka.group_id", "auth-center")
	v.SetDefault("log.service", "auth-center")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "json")
	v.SetDefault("log.stdout", true)
	v.SetDefault("log.enable_metric", true)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if len(cfg.JWT.Keys) == 0 {
		return nil, fmt.Errorf("配置错误: jwt.keys 至少需要一个密钥")
	}
	if cfg.JWT.AccessTTL <= 0 || cfg.JWT.RefreshTTL <= 0 {
		return nil, fmt.Errorf("配置错误: jwt ttl 必须为正")
	}
	if cfg.JWT.AccessTTL >= cfg.JWT.RefreshTTL {
		return nil, fmt.Errorf("配置错误: access_ttl 必须小于 refresh_ttl")
	}
	if cfg.Redis.Addr == "" {
		return nil, fmt.Errorf("配置错误: redis.addr 不能为空")
	}
	if cfg.Mysql.DSN == "" {
		return nil, fmt.Errorf("配置错误: mysql.dsn 不能为空")
	}
	if err := cfg.Log.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
