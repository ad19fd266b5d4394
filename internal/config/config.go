package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const MiB = 1 << 20

// Config 全局配置结构体
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Storage       StorageConfig       `mapstructure:"storage"`
	MinIO         MinIOConfig         `mapstructure:"minio"`
	S3            S3Config            `mapstructure:"s3"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	JWT           JWTConfig           `mapstructure:"jwt"`
	RateLimit     RateLimitConfig     `mapstructure:"rate_limit"`
	Log           LogConfig           `mapstructure:"log"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name      string `mapstructure:"name"`
	Version   string `mapstructure:"version"`
	Mode      string `mapstructure:"mode"`
	Port      int    `mapstructure:"port"`
	StaticDir string `mapstructure:"static_dir"` // built SPA assets, optional
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 秒
	SlowQueryMS     int    `mapstructure:"slow_query_ms"`     // 0 关闭慢查询日志
}

// SlowThreshold 慢查询阈值
func (d *DatabaseConfig) SlowThreshold() time.Duration {
	return time.Duration(d.SlowQueryMS) * time.Millisecond
}

// DSN 返回PostgreSQL连接字符串
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// RedisConfig Redis配置
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
	// 毫秒
	DialTimeoutMS int `mapstructure:"dial_timeout_ms"`
	OpTimeoutMS   int `mapstructure:"op_timeout_ms"`
}

// Addr 返回Redis地址
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// DialTimeout 建连超时
func (r *RedisConfig) DialTimeout() time.Duration {
	return time.Duration(r.DialTimeoutMS) * time.Millisecond
}

// OpTimeout 单条命令的读写超时
func (r *RedisConfig) OpTimeout() time.Duration {
	return time.Duration(r.OpTimeoutMS) * time.Millisecond
}

// StorageConfig 对象存储策略配置
type StorageConfig struct {
	Driver               string `mapstructure:"driver"` // minio | s3
	MaxVideoSizeMB       int64  `mapstructure:"max_video_size_mb"`
	MaxFileSizeMB        int64  `mapstructure:"max_file_size_mb"`
	UploadTimeoutSeconds int    `mapstructure:"upload_timeout_seconds"`
}

// MaxVideoBytes 视频大小上限（字节）
func (s *StorageConfig) MaxVideoBytes() int64 {
	return s.MaxVideoSizeMB * MiB
}

// MaxFileBytes 普通文件大小上限（字节）
func (s *StorageConfig) MaxFileBytes() int64 {
	return s.MaxFileSizeMB * MiB
}

// UploadTimeout 单次上传的超时时间
func (s *StorageConfig) UploadTimeout() time.Duration {
	return time.Duration(s.UploadTimeoutSeconds) * time.Second
}

// MinIOConfig MinIO配置
type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	PublicURL string `mapstructure:"public_url"` // defaults to scheme://endpoint
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"` // 设置后不再请求 bucket location
}

// S3Config AWS S3 / S3 兼容存储配置
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Endpoint  string `mapstructure:"endpoint"`
}

// KafkaConfig Kafka配置
type KafkaConfig struct {
	Enabled bool              `mapstructure:"enabled"`
	Brokers []string          `mapstructure:"brokers"`
	Topics  map[string]string `mapstructure:"topics"`
}

// Topic 按名称取 topic，未配置时回退到名称本身
func (k *KafkaConfig) Topic(name string) string {
	if t, ok := k.Topics[name]; ok && t != "" {
		return t
	}
	return name
}

// ElasticsearchConfig Elasticsearch配置
type ElasticsearchConfig struct {
	Hosts []string          `mapstructure:"hosts"`
	Index map[string]string `mapstructure:"index"`
}

// VideosIndex 返回视频索引名
func (e *ElasticsearchConfig) VideosIndex() string {
	if name := e.Index["videos"]; name != "" {
		return name
	}
	return "videos"
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"` // 0 = tokens never expire
	RefreshRole bool   `mapstructure:"refresh_role"`
}

// ExpireDuration 返回过期时间
func (j *JWTConfig) ExpireDuration() time.Duration {
	return time.Duration(j.ExpireHours) * time.Hour
}

// RateLimitConfig 登录/注册限流配置
type RateLimitConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	Requests      int  `mapstructure:"requests"`
	WindowSeconds int  `mapstructure:"window_seconds"`
}

// Window 返回限流窗口
func (r *RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowSeconds) * time.Second
}

// LogConfig 日志配置
type LogConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

var (
	ErrMissingJWTSecret = errors.New("jwt.secret must be set")
	ErrInvalidSizeLimit = errors.New("storage size limits must be positive")
	ErrUnknownDriver    = errors.New("storage.driver must be minio or s3")
)

// 全局配置实例
var globalConfig *Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "vidshare")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.mode", "release")
	v.SetDefault("app.port", 5000)

	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 300)
	v.SetDefault("database.slow_query_ms", 200)

	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.dial_timeout_ms", 1000)
	v.SetDefault("redis.op_timeout_ms", 200)

	v.SetDefault("storage.driver", "minio")
	v.SetDefault("storage.max_video_size_mb", 500)
	v.SetDefault("storage.max_file_size_mb", 500)
	v.SetDefault("storage.upload_timeout_seconds", 300)
	v.SetDefault("minio.bucket", "vidshare")
	v.SetDefault("minio.region", "us-east-1")
	v.SetDefault("s3.region", "us-east-1")

	v.SetDefault("kafka.topics.video_uploaded", "video-uploaded")
	v.SetDefault("elasticsearch.index.videos", "videos")

	v.SetDefault("jwt.expire_hours", 0)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 20)
	v.SetDefault("rate_limit.window_seconds", 60)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")
}

// Load 加载配置文件
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// 设置配置文件路径
	v.SetConfigFile(configPath)

	// 设置配置文件类型
	v.SetConfigType("yaml")

	// 读取环境变量，jwt.secret <- JWT_SECRET
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// 解析配置到结构体
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// 保存到全局变量
	globalConfig = &cfg

	return &cfg, nil
}

// Validate 校验启动时必需的配置
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return ErrMissingJWTSecret
	}
	if c.Storage.MaxVideoSizeMB <= 0 || c.Storage.MaxFileSizeMB <= 0 {
		return ErrInvalidSizeLimit
	}
	switch c.Storage.Driver {
	case "minio", "s3":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.Storage.Driver)
	}
	return nil
}

// Get 获取全局配置
func Get() *Config {
	if globalConfig == nil {
		panic("config not loaded, please call Load() first")
	}
	return globalConfig
}
