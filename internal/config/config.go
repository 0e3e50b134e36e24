package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel  string    `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort  string    `yaml:"http-port" env:"PORT" env-default:"3000"`
	Redis     Redis     `yaml:"redis"`
	Stats     Stats     `yaml:"stats"`
	Session   Session   `yaml:"session"`
	Room      Room      `yaml:"room"`
	WebSocket WebSocket `yaml:"websocket"`
}

// Redis is optional. When enabled, coordinator snapshots are mirrored into it.
type Redis struct {
	Enabled   bool   `yaml:"enabled" env:"REDIS_ENABLED" env-default:"false"`
	Host      string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port      string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	KeyPrefix string `yaml:"key-prefix" env:"REDIS_KEY_PREFIX" env-default:"warfront:"`
}

type Stats struct {
	Interval time.Duration `yaml:"interval" env:"STATS_INTERVAL" env-default:"10s"`
}

type Session struct {
	StrictTurns bool `yaml:"strict-turns" env:"SESSION_STRICT_TURNS" env-default:"false"`
}

type Room struct {
	CodeAttempts int `yaml:"code-attempts" env:"ROOM_CODE_ATTEMPTS" env-default:"8"`
}

type WebSocket struct {
	ReadLimit  int64 `yaml:"read-limit" env:"WS_READ_LIMIT" env-default:"65536"`
	SendBuffer int   `yaml:"send-buffer" env:"WS_SEND_BUFFER" env-default:"256"`
}

// Load - reads the yaml file at path with environment overrides. A missing file is not an
// error: the environment and the defaults are used alone.
func Load(path string) (*Config, error) {
	config := &Config{}

	_, err := os.Stat(path)
	switch {
	case err == nil:
		if err = cleanenv.ReadConfig(path, config); err != nil {
			return nil, fmt.Errorf("unable to load config file: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
		if err = cleanenv.ReadEnv(config); err != nil {
			return nil, fmt.Errorf("unable to load config from env: %w", err)
		}
	default:
		return nil, fmt.Errorf("unable to stat config file: %w", err)
	}

	return config, nil
}

// MustLoad - same as Load, panics on error.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
