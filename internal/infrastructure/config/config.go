package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	Mongo MongoConfig
	Redis RedisConfig
	Chat  ChatConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=campusmarket"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type ChatConfig struct {
	// Workers is the number of sharded dispatcher workers processing
	// inbound messages.
	Workers int `env:"CHAT_WORKERS, default=8"`
	// SendBuffer is the per-connection outbound queue length.
	SendBuffer int `env:"CHAT_SEND_BUFFER, default=256"`
	// MaxMessageSize caps a single inbound WebSocket frame in bytes.
	MaxMessageSize int64 `env:"CHAT_MAX_MESSAGE_SIZE, default=4096"`
	// HistoryLimit caps how many messages the history endpoint returns.
	HistoryLimit int `env:"CHAT_HISTORY_LIMIT, default=200"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
