package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	SQLite    SQLiteConfig
	Redis     RedisConfig
	Milvus    MilvusConfig
	Ollama    OllamaConfig
	Embedding EmbeddingConfig
	Pipeline  PipelineConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	BodyLimit    int
}

type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type MilvusConfig struct {
	Enabled        bool
	Endpoint       string
	CollectionName string
	VectorDim      int
}

// OllamaConfig addresses the completion service. BaseURL points at the
// /api/generate endpoint of an Ollama-compatible server.
type OllamaConfig struct {
	BaseURL    string
	Model      string
	TimeoutSec int
}

type EmbeddingConfig struct {
	BaseURL    string
	APIKey     string
	Model      string
	TimeoutSec int
}

type PipelineConfig struct {
	MaxRetries     int
	TopK           int
	ChunkWordLimit int
	ChunkOverlap   int
	ImplicitDayOne bool
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/neuroclinaical")

	viper.SetEnvPrefix("NEUROCLINAICAL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readTimeout", 30)
	viper.SetDefault("server.writeTimeout", 60)
	viper.SetDefault("server.bodyLimit", 20971520)

	viper.SetDefault("sqlite.path", "./data/neuroclinaical.db")

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("milvus.enabled", false)
	viper.SetDefault("milvus.endpoint", "localhost:19530")
	viper.SetDefault("milvus.collectionName", "report_chunks")
	viper.SetDefault("milvus.vectorDim", 768)

	viper.SetDefault("ollama.baseURL", "http://localhost:11434/api/generate")
	viper.SetDefault("ollama.model", "mymodel")
	viper.SetDefault("ollama.timeoutSec", 120)

	viper.SetDefault("embedding.baseURL", "http://localhost:11434/v1")
	viper.SetDefault("embedding.model", "nomic-embed-text")
	viper.SetDefault("embedding.timeoutSec", 30)

	viper.SetDefault("pipeline.maxRetries", 2)
	viper.SetDefault("pipeline.topK", 5)
	viper.SetDefault("pipeline.chunkWordLimit", 150)
	viper.SetDefault("pipeline.chunkOverlap", 0)
	viper.SetDefault("pipeline.implicitDayOne", true)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
