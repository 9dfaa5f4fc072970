package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultFonnteURL Fonnte 发送接口
const DefaultFonnteURL = "https://api.fonnte.com/send"

var GlobalConfig *Config

// Config 全局配置
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Auth         AuthConfig         `mapstructure:"auth"`
	Log          LogConfig          `mapstructure:"log"`
	Storage      StorageConfig      `mapstructure:"storage"`
	Notification NotificationConfig `mapstructure:"notification"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Track        TrackConfig        `mapstructure:"track"`
	Pipeline     PipelineConfig     `mapstructure:"pipeline"`
	Scheduler    SchedulerConfig    `mapstructure:"scheduler"`
}

// ServerConfig 服务配置
type ServerConfig struct {
	Name         string `mapstructure:"name"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Mode         string `mapstructure:"mode"`       // debug, release
	PublicURL    string `mapstructure:"public_url"` // 客户跟踪链接前缀
	ReadTimeout  int    `mapstructure:"read_timeout"`  // 秒
	WriteTimeout int    `mapstructure:"write_timeout"` // 秒
	MaxBodyMB    int64  `mapstructure:"max_body_mb"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"` // mysql, postgres, sqlite
	DSN             string `mapstructure:"dsn"`    // 非空时直接使用
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Database        string `mapstructure:"database"` // sqlite 时为文件路径
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 秒
	LogLevel        string `mapstructure:"log_level"`         // SQL日志级别: silent/error/warn/info
	AutoMigrate     bool   `mapstructure:"auto_migrate"`
}

// AuthConfig 认证配置
type AuthConfig struct {
	JWT   JWTConfig   `mapstructure:"jwt"`
	LDAP  LDAPConfig  `mapstructure:"ldap"`
	Local LocalConfig `mapstructure:"local"`
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret             string `mapstructure:"secret"`
	AccessTokenExpire  int    `mapstructure:"access_token_expire"`  // 秒
	RefreshTokenExpire int    `mapstructure:"refresh_token_expire"` // 秒
}

// LDAPConfig LDAP配置
type LDAPConfig struct {
	Enabled      bool           `mapstructure:"enabled"`
	Host         string         `mapstructure:"host"`
	Port         int            `mapstructure:"port"`
	UseSSL       bool           `mapstructure:"use_ssl"`
	BindDN       string         `mapstructure:"bind_dn"`
	BindPassword string         `mapstructure:"bind_password"`
	BaseDN       string         `mapstructure:"base_dn"`
	UserFilter   string         `mapstructure:"user_filter"`
	Attributes   LDAPAttributes `mapstructure:"attributes"`
}

// LDAPAttributes LDAP属性映射
type LDAPAttributes struct {
	Username    string `mapstructure:"username"`
	Email       string `mapstructure:"email"`
	DisplayName string `mapstructure:"display_name"`
}

// LocalConfig 本地用户配置
type LocalConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`  // debug, info, warn, error
	Format     string `mapstructure:"format"` // json, console
	Output     string `mapstructure:"output"` // stdout, file
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"` // MB
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
	Compress   bool   `mapstructure:"compress"`
}

// StorageConfig 对象存储配置
type StorageConfig struct {
	Driver      string `mapstructure:"driver"` // minio, memory
	Endpoint    string `mapstructure:"endpoint"`
	AccessKey   string `mapstructure:"access_key"`
	SecretKey   string `mapstructure:"secret_key"`
	Bucket      string `mapstructure:"bucket"`
	Region      string `mapstructure:"region"`
	UseSSL      bool   `mapstructure:"use_ssl"`
	PublicURL   string `mapstructure:"public_url"` // 对外访问前缀
	MaxImages   int    `mapstructure:"max_images"`
	MaxFileSize int64  `mapstructure:"max_file_size"` // 字节
}

// NotificationConfig 通知配置
type NotificationConfig struct {
	Enabled   bool   `mapstructure:"enabled"`    // 是否启用
	Provider  string `mapstructure:"provider"`   // fonnte, log
	APIURL    string `mapstructure:"api_url"`    // Fonnte 接口地址
	APIKey    string `mapstructure:"api_key"`    // Fonnte Token
	TimeoutMS int    `mapstructure:"timeout_ms"` // 单次发送超时
	Brand     string `mapstructure:"brand"`
	Signature string `mapstructure:"signature"`
}

// Timeout 发送超时
func (c *NotificationConfig) Timeout() time.Duration {
	if c.TimeoutMS <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// RedisConfig Redis配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TrackTTL int    `mapstructure:"track_ttl"` // 秒
}

// TrackConfig 公开跟踪接口配置
type TrackConfig struct {
	RatePerSecond float64 `mapstructure:"rate_per_second"`
	Burst         int     `mapstructure:"burst"`
}

// PipelineConfig 进度日志流水线配置
type PipelineConfig struct {
	MaxRetries int `mapstructure:"max_retries"` // 乐观锁冲突重试次数
}

// SchedulerConfig 定时任务配置
type SchedulerConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	ReconcileSpec string `mapstructure:"reconcile_spec"` // cron 表达式(含秒)
	OrphanGrace   int    `mapstructure:"orphan_grace"`   // 秒, 早于该时长的未引用对象才会清理
}

// Load 加载配置
func Load(configPath string) (*Config, error) {
	// .env 不存在时忽略
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	// 设置配置文件路径
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// 读取环境变量
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindEnvVariables(v)

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configPath != "" {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	// 解析配置
	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// 设置全局配置
	GlobalConfig = config

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.name", "project-tracker")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.public_url", "http://localhost:8080")
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 60)
	v.SetDefault("server.max_body_mb", 32)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.database", "project-tracker.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.conn_max_lifetime", 3600)
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("database.ssl_mode", "disable")

	v.SetDefault("auth.jwt.secret", "change-me")
	v.SetDefault("auth.jwt.access_token_expire", 86400)
	v.SetDefault("auth.jwt.refresh_token_expire", 7*86400)
	v.SetDefault("auth.local.enabled", true)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.max_size", 50)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 14)

	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.bucket", "project-assets")
	v.SetDefault("storage.max_images", 5)
	v.SetDefault("storage.max_file_size", 10<<20)

	v.SetDefault("notification.provider", "fonnte")
	v.SetDefault("notification.api_url", DefaultFonnteURL)
	v.SetDefault("notification.timeout_ms", 15000)
	v.SetDefault("notification.brand", "PAM Techno")
	v.SetDefault("notification.signature", "PAM Techno Team")

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.track_ttl", 60)

	v.SetDefault("track.rate_per_second", 5)
	v.SetDefault("track.burst", 20)

	v.SetDefault("pipeline.max_retries", 3)

	v.SetDefault("scheduler.reconcile_spec", "0 0 * * * *")
	v.SetDefault("scheduler.orphan_grace", 86400)
}

func bindEnvVariables(v *viper.Viper) {
	// Server
	v.BindEnv("server.port", "SERVER_PORT")
	v.BindEnv("server.mode", "SERVER_MODE")
	v.BindEnv("server.public_url", "PUBLIC_URL")

	// Database
	v.BindEnv("database.driver", "DB_DRIVER")
	v.BindEnv("database.dsn", "DATABASE_URL")
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.username", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.database", "DB_NAME")

	// JWT
	v.BindEnv("auth.jwt.secret", "JWT_SECRET")

	// MinIO
	v.BindEnv("storage.endpoint", "MINIO_ENDPOINT")
	v.BindEnv("storage.access_key", "MINIO_ACCESS_KEY")
	v.BindEnv("storage.secret_key", "MINIO_SECRET_KEY")
	v.BindEnv("storage.bucket", "MINIO_BUCKET")
	v.BindEnv("storage.public_url", "MINIO_PUBLIC_URL")

	// Fonnte
	v.BindEnv("notification.api_key", "FONNTE_API_KEY")
	v.BindEnv("notification.api_url", "FONNTE_API_URL")
	v.BindEnv("notification.timeout_ms", "FONNTE_TIMEOUT_MS")

	// Redis
	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
}

// GetDSN 获取数据库DSN
func (c *DatabaseConfig) GetDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	switch c.Driver {
	case "postgres":
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			c.Host,
			c.Port,
			c.Username,
			c.Password,
			c.Database,
			c.SSLMode,
		)
	case "sqlite":
		return c.Database
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.Username,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}
