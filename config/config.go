package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrConfiguration 缺少凭证或签名材料等致命配置错误
var ErrConfiguration = errors.New("configuration error")

// MaxChunkSize 数据实验室单次请求的关键词组上限
const MaxChunkSize = 5

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Addr string `yaml:"-"` // host:port, computed after load
	} `yaml:"server"`
	Naver struct {
		ClientID     string `yaml:"client_id"`
		ClientSecret string `yaml:"client_secret"`
		OpenAPIURL   string `yaml:"open_api_url"`
		SearchURL    string `yaml:"search_url"`
		ShopDisplay  int    `yaml:"shop_display"` // shopping results per query
	} `yaml:"naver"`
	SearchAd struct {
		APIKey     string `yaml:"api_key"`
		SecretKey  string `yaml:"secret_key"`
		CustomerID string `yaml:"customer_id"`
		BaseURL    string `yaml:"base_url"`
		TopN       int    `yaml:"top_n"` // planner keywords kept after volume sort
	} `yaml:"search_ad"`
	Pipeline struct {
		MaxResults          int       `yaml:"max_results"`
		CompareMaxResults   int       `yaml:"compare_max_results"`
		ChunkSize           int       `yaml:"chunk_size"`
		WorkerCount         int       `yaml:"worker_count"`
		TrendWindowDays     int       `yaml:"trend_window_days"`
		UseShortWindowBlend bool      `yaml:"use_short_window_blend"`
		ShortWindowDays     int       `yaml:"short_window_days"`
		BlendWeights        []float64 `yaml:"blend_weights"`       // [long, short]
		SequentialDelayMs   int       `yaml:"sequential_delay_ms"` // only used when worker_count <= 1
	} `yaml:"pipeline"`
	Brands struct {
		Extra []string `yaml:"extra"`
	} `yaml:"brands"`
	Log struct {
		Level    string `yaml:"level"`
		Format   string `yaml:"format"`
		Output   string `yaml:"output"`
		FilePath string `yaml:"file_path"`
	} `yaml:"log"`

	DB struct {
		Driver          string `yaml:"driver"` // mysql | sqlite
		Path            string `yaml:"path"`   // sqlite file path
		Host            string `yaml:"host"`
		Port            int    `yaml:"port"`
		Username        string `yaml:"username"`
		Password        string `yaml:"password"`
		Database        string `yaml:"database"`
		Charset         string `yaml:"charset"`
		ParseTime       bool   `yaml:"parse_time"`
		DSN             string `yaml:"-"`                 // computed after load
		MaxOpenConns    int    `yaml:"max_open_conns"`    // 最大打开连接数
		MaxIdleConns    int    `yaml:"max_idle_conns"`    // 最大空闲连接数
		ConnMaxLifetime int    `yaml:"conn_max_lifetime"` // minutes
	} `yaml:"database"`
	Timeouts struct {
		RequestSec int `yaml:"request_sec"` // outbound API request timeout
	} `yaml:"timeouts"`
	Debug struct {
		Enabled        bool `yaml:"enabled"`
		RefreshFreqSec int  `yaml:"refresh_freq_sec"` // watch-list refresh interval in debug mode
	} `yaml:"debug"`
	Scheduler struct {
		Enabled          bool     `yaml:"enabled"`
		Queries          []string `yaml:"queries"`
		CheckIntervalSec int      `yaml:"check_interval_sec"`
		DefaultHour      int      `yaml:"default_hour"`
		DefaultMinute    int      `yaml:"default_minute"`
		RetentionDays    int      `yaml:"retention_days"` // 0 keeps history forever
	} `yaml:"scheduler"`
}

// Load 加载配置：config.yaml（或 CONFIG_FILE）优先，其次环境变量
func Load() *Config {
	_ = godotenv.Load() // .env is optional

	path := getenv("CONFIG_FILE", "config.yaml")
	cfg, err := LoadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Error loading %s: %v, falling back to environment variables", path, err)
		}
		return loadFromEnv()
	}
	log.Printf("Loading configuration from %s", path)
	return cfg
}

// LoadFile 读取指定 YAML 文件，再叠加环境变量和默认值
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse 从 YAML 字节构建配置
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}

func loadFromEnv() *Config {
	var cfg Config
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	cfg.DB.Driver = os.Getenv("DB_DRIVER")
	cfg.DB.Path = os.Getenv("DB_PATH")
	applyEnv(&cfg)
	applyDefaults(&cfg)

	log.Println("配置从环境变量加载，部分配置可能缺失")
	return &cfg
}

// applyEnv 从环境变量覆盖敏感信息
func applyEnv(cfg *Config) {
	overrides := []struct {
		env string
		dst *string
	}{
		{"NAVER_CLIENT_ID", &cfg.Naver.ClientID},
		{"NAVER_CLIENT_SECRET", &cfg.Naver.ClientSecret},
		{"SEARCHAD_API_KEY", &cfg.SearchAd.APIKey},
		{"SEARCHAD_SECRET_KEY", &cfg.SearchAd.SecretKey},
		{"SEARCHAD_CUSTOMER_ID", &cfg.SearchAd.CustomerID},
		{"DATABASE_USERNAME", &cfg.DB.Username},
		{"DATABASE_PASSWORD", &cfg.DB.Password},
		{"DB_DSN", &cfg.DB.DSN},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.dst = v
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	cfg.Server.Addr = fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)

	if cfg.Naver.OpenAPIURL == "" {
		cfg.Naver.OpenAPIURL = "https://openapi.naver.com"
	}
	if cfg.Naver.SearchURL == "" {
		cfg.Naver.SearchURL = "https://search.naver.com/search.naver"
	}
	if cfg.Naver.ShopDisplay <= 0 {
		cfg.Naver.ShopDisplay = 40
	}
	if cfg.SearchAd.BaseURL == "" {
		cfg.SearchAd.BaseURL = "https://api.naver.com"
	}
	if cfg.SearchAd.TopN <= 0 {
		cfg.SearchAd.TopN = 100
	}

	p := &cfg.Pipeline
	if p.MaxResults <= 0 {
		p.MaxResults = 15
	}
	if p.CompareMaxResults <= 0 {
		p.CompareMaxResults = 10
	}
	if p.ChunkSize <= 0 || p.ChunkSize > MaxChunkSize {
		p.ChunkSize = MaxChunkSize
	}
	if p.WorkerCount <= 0 {
		p.WorkerCount = 4
	}
	if p.TrendWindowDays <= 0 {
		p.TrendWindowDays = 30
	}
	if p.ShortWindowDays <= 0 {
		p.ShortWindowDays = 7
	}
	if len(p.BlendWeights) != 2 {
		p.BlendWeights = []float64{0.7, 0.3}
	}
	if p.SequentialDelayMs < 1000 {
		p.SequentialDelayMs = 1500
	}

	if cfg.Timeouts.RequestSec <= 0 {
		cfg.Timeouts.RequestSec = 15
	}

	if cfg.DB.Driver == "" {
		cfg.DB.Driver = "sqlite"
	}
	if cfg.DB.Driver == "sqlite" && cfg.DB.Path == "" {
		cfg.DB.Path = "keyword_bot.db"
	}
	if cfg.DB.Driver == "mysql" && cfg.DB.DSN == "" && cfg.DB.Host != "" {
		if cfg.DB.Charset == "" {
			cfg.DB.Charset = "utf8mb4"
		}
		parseTime := ""
		if cfg.DB.ParseTime {
			parseTime = "&parseTime=true"
		}
		cfg.DB.DSN = fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s%s",
			cfg.DB.Username,
			cfg.DB.Password,
			cfg.DB.Host,
			cfg.DB.Port,
			cfg.DB.Database,
			cfg.DB.Charset,
			parseTime)
	}

	if cfg.Scheduler.CheckIntervalSec <= 0 {
		cfg.Scheduler.CheckIntervalSec = 60
	}
	if cfg.Debug.RefreshFreqSec <= 0 {
		cfg.Debug.RefreshFreqSec = 1800
	}
}

// Validate 校验外部 API 凭证，缺失时返回 ErrConfiguration
func (c *Config) Validate() error {
	var missing []string
	if c.Naver.ClientID == "" {
		missing = append(missing, "naver.client_id")
	}
	if c.Naver.ClientSecret == "" {
		missing = append(missing, "naver.client_secret")
	}
	if c.SearchAd.APIKey == "" {
		missing = append(missing, "search_ad.api_key")
	}
	if c.SearchAd.SecretKey == "" {
		missing = append(missing, "search_ad.secret_key")
	}
	if c.SearchAd.CustomerID == "" {
		missing = append(missing, "search_ad.customer_id")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrConfiguration, strings.Join(missing, ", "))
	}
	if c.Pipeline.ChunkSize > MaxChunkSize {
		return fmt.Errorf("%w: chunk_size %d exceeds %d", ErrConfiguration, c.Pipeline.ChunkSize, MaxChunkSize)
	}
	return nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
