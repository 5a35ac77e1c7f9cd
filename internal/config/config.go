package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string `yaml:"log-level" env-default:"info"`
	HTTPPort   string `yaml:"http-port" env-default:"9090"`
	SocketPort string `yaml:"socket-port" env-default:"8080"`
	Redis      Redis  `yaml:"redis"`
	Game       Game   `yaml:"game"`
}

type Redis struct {
	Host string `yaml:"host" env-default:"localhost"`
	Port string `yaml:"port" env-default:"6379"`
}

// Game - the session timing knobs.
type Game struct {
	TurnTimeout    time.Duration `yaml:"turn-timeout" env-default:"20s"`
	QueryTimeout   time.Duration `yaml:"query-timeout" env-default:"10s"`
	ReconnectGrace time.Duration `yaml:"reconnect-grace" env-default:"30s"`
	IdleTimeout    time.Duration `yaml:"idle-timeout" env-default:"5m"`
	SweepInterval  time.Duration `yaml:"sweep-interval" env-default:"1m"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
