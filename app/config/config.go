package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Environment EnvironmentConfig
	Server      ServerConfig
	Storage     StorageConfig
	Crypto      CryptoConfig
	Typing      TypingConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Auth        AuthConfig
	RateLimit   RateLimitConfig
	Posts       PostsConfig
	Tracing     TracingConfig
}

type EnvironmentConfig struct {
	Current string
}

type ServerConfig struct {
	Port string
}

type StorageConfig struct {
	Driver     string
	DataDir    string
	SQLitePath string
}

type CryptoConfig struct {
	MessageKey string
}

type TypingConfig struct {
	Backend string
	Window  time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	SecretKey string
	TTL       time.Duration
}

type AuthConfig struct {
	AllowLegacyHeader bool
}

type RateLimitConfig struct {
	MaxRequests int
	Window      time.Duration
}

type PostsConfig struct {
	Cooldown time.Duration
}

type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

const (
	defaultMessageKey = "xvo-secret-encryption-key-2024"
	defaultJWTSecret  = "your_default_secret_change_in_production"
)

func LoadConfig() (config Config, err error) {
	viper.SetConfigName("app")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return config, err
		}
	}

	viper.AutomaticEnv()

	viper.SetDefault("environment.current", "development")
	viper.SetDefault("server.port", "5000")
	viper.SetDefault("storage.driver", "json")
	viper.SetDefault("storage.datadir", "./data")
	viper.SetDefault("storage.sqlitepath", "./data/xvo.db")
	viper.SetDefault("crypto.messagekey", defaultMessageKey)
	viper.SetDefault("typing.backend", "memory")
	viper.SetDefault("typing.window", 5*time.Second)
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("jwt.secretkey", defaultJWTSecret)
	viper.SetDefault("jwt.ttl", 24*time.Hour)
	viper.SetDefault("auth.allowlegacyheader", true)
	viper.SetDefault("ratelimit.maxrequests", 100)
	viper.SetDefault("ratelimit.window", time.Minute)
	viper.SetDefault("posts.cooldown", time.Minute)
	viper.SetDefault("tracing.enabled", false)
	viper.SetDefault("tracing.endpoint", "http://localhost:14268/api/traces")
	viper.SetDefault("tracing.servicename", "xvo")

	err = viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config.JWT.SecretKey == defaultJWTSecret {
		log.Println("WARNING: Using default JWT secret key. This is insecure for production.")
	}
	if config.Crypto.MessageKey == defaultMessageKey {
		log.Println("WARNING: Using default message encryption key. This is insecure for production.")
	}

	return config, nil
}
