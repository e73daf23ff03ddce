package config

import (
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env         string     `yaml:"env" env:"ENV" env-default:"local"`
	ProjectsDir string     `yaml:"projects_dir" env:"PROJECTS_DIR" env-default:"./projects"`
	HTTPServer  HTTPServer `yaml:"http_server"`
	Auth        Auth       `yaml:"auth"`
	Uploads     Uploads    `yaml:"uploads"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	Timeout     time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"5s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

type Auth struct {
	BcryptCost  int           `yaml:"bcrypt_cost" env:"AUTH_BCRYPT_COST" env-default:"10"`
	TokenTTL    time.Duration `yaml:"token_ttl" env:"AUTH_TOKEN_TTL" env-default:"1h"`
	RememberTTL time.Duration `yaml:"remember_ttl" env:"AUTH_REMEMBER_TTL" env-default:"720h"`
}

type Uploads struct {
	MaxFiles int   `yaml:"max_files" env:"UPLOADS_MAX_FILES" env-default:"12"`
	MaxBytes int64 `yaml:"max_bytes" env:"UPLOADS_MAX_BYTES" env-default:"33554432"`
}

// MustLoad reads the config file named by CONFIG_PATH, falling back to
// environment variables alone when no file is configured. Panics on a
// malformed file so a bad deploy fails at startup.
func MustLoad() *Config {
	var cfg Config

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			panic("failed to read config from env: " + err.Error())
		}
		return &cfg
	}

	if _, err := os.Stat(path); err != nil {
		panic("config file does not exist: " + path)
	}

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		panic("failed to read config: " + err.Error())
	}

	return &cfg
}
