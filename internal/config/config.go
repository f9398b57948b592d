// Package config 负责加载和管理应用程序的配置。
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config 是整个应用程序的配置结构体，与 config.yaml 文件结构对应。
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Log           LogConfig           `mapstructure:"log"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Embedding     EmbeddingConfig     `mapstructure:"embedding"`
	LLM           LLMConfig           `mapstructure:"llm"`
	Evaluation    EvaluationConfig    `mapstructure:"evaluation"`
	RAG           RAGConfig           `mapstructure:"rag"`
}

// ServerConfig 存储 HTTP 服务器相关的配置。
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// LogConfig 存储日志相关的配置。
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// DatabaseConfig 存储所有数据库连接的配置。
type DatabaseConfig struct {
	MySQL MySQLConfig `mapstructure:"mysql"`
	Redis RedisConfig `mapstructure:"redis"`
}

// MySQLConfig 存储文档目录库 (MySQL) 的配置。
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig 存储问答缓存 (Redis) 的配置。Addr 为空时禁用缓存。
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ElasticsearchConfig 存储向量库 (Elasticsearch) 的配置。
type ElasticsearchConfig struct {
	Addresses string `mapstructure:"addresses"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	IndexName string `mapstructure:"index_name"`
}

// KafkaConfig 存储文档事件生产者的配置。Enabled 为 false 时不发送事件。
type KafkaConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
}

// EmbeddingConfig 存储 Embedding 服务的配置。
// 模型名固定在 pkg/embedding 中，配置只决定 provider 与网络参数。
type EmbeddingConfig struct {
	Provider   string `mapstructure:"provider"`
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"`
	Dimensions int    `mapstructure:"dimensions"`
}

// LLMConfig 存储主回答模型的配置。
type LLMConfig struct {
	Provider    string  `mapstructure:"provider"`
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
}

// EvaluationConfig 存储评估侧模型（LLM + Embedding）的配置。
type EvaluationConfig struct {
	Provider      string `mapstructure:"provider"`
	APIKey        string `mapstructure:"api_key"`
	BaseURL       string `mapstructure:"base_url"`
	Model         string `mapstructure:"model"`
	QuestionCount int    `mapstructure:"question_count"`
}

// RAGConfig 存储检索管道本身的参数。
type RAGConfig struct {
	ChunkSize       int  `mapstructure:"chunk_size"`
	ChunkOverlap    int  `mapstructure:"chunk_overlap"`
	CacheEnabled    bool `mapstructure:"cache_enabled"`
	CacheTTLMinutes int  `mapstructure:"cache_ttl_minutes"`
}

// Load 从指定路径读取 YAML 配置并解析为 Config。
// API 凭证与模型名支持环境变量覆盖（与原有部署约定对齐）：
// OPENAI_API_KEY、DEFAULT_LLM_MODEL、RAGAS_LLM_MODEL。
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	// 凭证与模型名的环境变量绑定
	_ = viper.BindEnv("llm.api_key", "OPENAI_API_KEY")
	_ = viper.BindEnv("llm.model", "DEFAULT_LLM_MODEL")
	_ = viper.BindEnv("evaluation.api_key", "OPENAI_API_KEY")
	_ = viper.BindEnv("evaluation.model", "RAGAS_LLM_MODEL")
	_ = viper.BindEnv("embedding.api_key", "OPENAI_API_KEY")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("无法将配置解析到结构体中: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// applyDefaults 为未配置的检索参数填充默认值。
func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8000"
	}
	if cfg.RAG.ChunkSize <= 0 {
		cfg.RAG.ChunkSize = 1000
	}
	if cfg.RAG.ChunkOverlap <= 0 || cfg.RAG.ChunkOverlap >= cfg.RAG.ChunkSize {
		cfg.RAG.ChunkOverlap = 200
		if cfg.RAG.ChunkOverlap >= cfg.RAG.ChunkSize {
			// 小分块时重叠取分块大小的五分之一，保持与切分器一致
			cfg.RAG.ChunkOverlap = cfg.RAG.ChunkSize / 5
		}
	}
	if cfg.RAG.CacheTTLMinutes <= 0 {
		cfg.RAG.CacheTTLMinutes = 5
	}
	if cfg.Embedding.Dimensions <= 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Evaluation.QuestionCount <= 0 {
		cfg.Evaluation.QuestionCount = 3
	}
	if cfg.Elasticsearch.IndexName == "" {
		cfg.Elasticsearch.IndexName = "rag_documents"
	}
}
