package env

import (
	"errors"
	"io/fs"
	"sync"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	AppConfig AppConfig
}

type AppConfig struct {
	Name          string
	Env           string
	Source        string
	Port          uint
	LogFormat     string
	LogLevel      string
	SentryDSN     string
	MetricsPrefix string

	JsonRpcURL              string
	RpcTimeout              time.Duration
	RpcMaxAttempts          uint
	RpcRateLimit            float64
	LatestBlocksConcurrency int
	DecodeStrict            bool
	BlockCacheSize          int

	NatsDefaultURL string
	NatsStreamName string
	BlockTopic     string
	RedisURL       string
	FeederInterval time.Duration
}

const (
	defaultPort           = 8080
	defaultRpcTimeout     = 10 * time.Second
	defaultFeederInterval = 6 * time.Second
	defaultBlockCacheSize = 256
)

var (
	cfg Config

	onceDefaultClient sync.Once
)

func Read(configPath string) (*Config, error) {
	var err error

	onceDefaultClient.Do(func() {
		v := viper.New()
		v.SetConfigType("env")

		if len(configPath) != 0 {
			v.SetConfigFile(configPath)
		} else {
			v.AddConfigPath(".")
			v.SetConfigFile(".env")
		}

		setDefaults(v)

		v.AutomaticEnv()
		if viperErr := v.ReadInConfig(); viperErr != nil {
			if _, ok := viperErr.(viper.ConfigFileNotFoundError); !ok && !isNotExist(viperErr) {
				err = viperErr
				return
			}
		}

		cfg = Config{
			AppConfig: fromViper(v),
		}
	})

	return &cfg, err
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "blockview")
	v.SetDefault("ENV", "local")
	v.SetDefault("PORT", defaultPort)
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("LOG_LEVEL", "INFO")
	v.SetDefault("METRICS_PREFIX", "blockview")
	v.SetDefault("JSON_RPC_URL", "http://127.0.0.1:8545")
	v.SetDefault("RPC_TIMEOUT", defaultRpcTimeout)
	v.SetDefault("RPC_MAX_ATTEMPTS", 1)
	v.SetDefault("RPC_RATE_LIMIT", 0)
	v.SetDefault("LATEST_BLOCKS_CONCURRENCY", 1)
	v.SetDefault("DECODE_STRICT", false)
	v.SetDefault("BLOCK_CACHE_SIZE", defaultBlockCacheSize)
	v.SetDefault("NATS_DEFAULT_URL", "nats://127.0.0.1:4222")
	v.SetDefault("NATS_STREAM_NAME", "BLOCKVIEW")
	v.SetDefault("BLOCK_TOPIC", "blockview.blocks")
	v.SetDefault("REDIS_URL", "127.0.0.1:6379")
	v.SetDefault("FEEDER_INTERVAL", defaultFeederInterval)
}

func fromViper(v *viper.Viper) AppConfig {
	return AppConfig{
		Name:          v.GetString("APP_NAME"),
		Env:           v.GetString("ENV"),
		Source:        v.GetString("SOURCE"),
		Port:          v.GetUint("PORT"),
		LogFormat:     v.GetString("LOG_FORMAT"),
		LogLevel:      v.GetString("LOG_LEVEL"),
		SentryDSN:     v.GetString("SENTRY_DSN"),
		MetricsPrefix: v.GetString("METRICS_PREFIX"),

		JsonRpcURL:              v.GetString("JSON_RPC_URL"),
		RpcTimeout:              v.GetDuration("RPC_TIMEOUT"),
		RpcMaxAttempts:          v.GetUint("RPC_MAX_ATTEMPTS"),
		RpcRateLimit:            v.GetFloat64("RPC_RATE_LIMIT"),
		LatestBlocksConcurrency: v.GetInt("LATEST_BLOCKS_CONCURRENCY"),
		DecodeStrict:            v.GetBool("DECODE_STRICT"),
		BlockCacheSize:          v.GetInt("BLOCK_CACHE_SIZE"),

		NatsDefaultURL: v.GetString("NATS_DEFAULT_URL"),
		NatsStreamName: v.GetString("NATS_STREAM_NAME"),
		BlockTopic:     v.GetString("BLOCK_TOPIC"),
		RedisURL:       v.GetString("REDIS_URL"),
		FeederInterval: v.GetDuration("FEEDER_INTERVAL"),
	}
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
