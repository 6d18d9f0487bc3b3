package config

import (
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string `yaml:"env" env-default:"local"`
	Tokens     `yaml:"tokens"`
	UCP        `yaml:"ucp"`
	RabbitMQ   `yaml:"rabbitmq"`
	Postgres   `yaml:"postgres"`
	Redis      `yaml:"redis"`
	GameServer `yaml:"game_server"`
	HTTPServer `yaml:"http_server"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env-default:"localhost:8080"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

type Postgres struct {
	Host     string `yaml:"host" env-default:"postgres"`
	Port     int    `yaml:"port" env-default:"5432"`
	User     string `yaml:"user" env-required:"true"`
	Password string `yaml:"password" env-required:"true"`
	DBName   string `yaml:"dbname" env-required:"true"`
	SSLMode  string `yaml:"sslmode" env-default:"disabled"`
}

type Redis struct {
	Address  string `yaml:"address" env-default:"redis:6379"`
	Password string `yaml:"password" env-default:""`
	DB       int    `yaml:"db" env-default:"0"`
}

type Tokens struct {
	SessionTokenTTL    time.Duration `yaml:"session_token_ttl" env-default:"24h"`
	SessionTokenSecret string        `yaml:"session_token_secret" env-required:"true"`

	// CodeTTL bounds the lifetime of one-time codes. Zero keeps codes
	// valid until consumed, matching the live UCP behavior.
	CodeTTL time.Duration `yaml:"code_ttl" env-default:"0"`
}

type UCP struct {
	// BaseURL is the public UCP frontend address used in emailed links.
	BaseURL  string `yaml:"base_url" env-required:"true"`
	MailFrom string `yaml:"mail_from" env-default:"UCP <no-reply@localhost>"`
}

type RabbitMQ struct {
	URL       string `yaml:"url" env-required:"true"`
	QueueName string `yaml:"queue_name" env-required:"true"`
}

type GameServer struct {
	// StatusURL is the open.mp query API endpoint for this server.
	StatusURL      string        `yaml:"status_url" env-required:"true"`
	StatusCacheTTL time.Duration `yaml:"status_cache_ttl" env-default:"30s"`
}

func MustLoad(configPath string) *Config {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("Config file does not exist" + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("Failed to read config" + err.Error())
	}

	return &cfg
}
