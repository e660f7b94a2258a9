package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	ClientDB  ClientDBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Dashboard DashboardConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"readTimeout"`
	WriteTimeout   time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout    time.Duration `mapstructure:"idleTimeout"`
	ShutdownPeriod time.Duration `mapstructure:"shutdownPeriod"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"`
	ConnectAttempts int           `mapstructure:"connectAttempts"`
	ConnectTimeout  time.Duration `mapstructure:"connectTimeout"`
}

// ClientDBConfig describes how to reach the per-client databases that
// issued keys unlock. Individual databases are addressed by name against
// the same host.
type ClientDBConfig struct {
	URLTemplate  string        `mapstructure:"urlTemplate"`
	ProbeTimeout time.Duration `mapstructure:"probeTimeout"`
	MaxConns     int           `mapstructure:"maxConns"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret   string        `mapstructure:"secret"`
	TokenTTL time.Duration `mapstructure:"tokenTTL"`
	Issuer   string        `mapstructure:"issuer"`
}

type DashboardConfig struct {
	ExpiringSoonDays int           `mapstructure:"expiringSoonDays"`
	StatsCacheTTL    time.Duration `mapstructure:"statsCacheTTL"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func LoadConfig(configPath string) (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading it, relying on environment variables and config file")
	}

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.readTimeout", 5*time.Second)
	viper.SetDefault("server.writeTimeout", 10*time.Second)
	viper.SetDefault("server.idleTimeout", 120*time.Second)
	viper.SetDefault("server.shutdownPeriod", 15*time.Second)

	viper.SetDefault("database.maxOpenConns", 25)
	viper.SetDefault("database.maxIdleConns", 25)
	viper.SetDefault("database.connMaxLifetime", 5*time.Minute)
	viper.SetDefault("database.connectAttempts", 3)
	viper.SetDefault("database.connectTimeout", 10*time.Second)

	viper.SetDefault("clientdb.probeTimeout", 5*time.Second)
	viper.SetDefault("clientdb.maxConns", 2)

	viper.SetDefault("redis.db", "0")

	viper.SetDefault("jwt.tokenTTL", 12*time.Hour)
	viper.SetDefault("jwt.issuer", "license-admin-api")

	viper.SetDefault("dashboard.expiringSoonDays", 7)
	viper.SetDefault("dashboard.statsCacheTTL", 60*time.Second)

	viper.SetDefault("log.level", "info")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AllowEmptyEnv(true)

	if configPath != "" {
		viper.SetConfigFile(configPath)
		if err := viper.ReadInConfig(); err != nil {
			log.Printf("Warning: could not read config file: %s. Error: %v\n", configPath, err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
