package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Site     SiteConfig     `mapstructure:"site"`
	Wiki     WikiConfig     `mapstructure:"wiki"`
	Database DatabaseConfig `mapstructure:"database"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

// SiteConfig describes the wiki this service runs next to. Language-code
// projects are expanded against Host's parent domain.
type SiteConfig struct {
	Host        string `mapstructure:"host"`
	ScriptPath  string `mapstructure:"script_path"`
	ArticlePath string `mapstructure:"article_path"`
	DevMode     bool   `mapstructure:"dev_mode"`
}

type WikiConfig struct {
	UserAgent     string        `mapstructure:"user_agent"`
	ThumbnailSize int           `mapstructure:"thumbnail_size"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // sqlite or postgres
	Path            string        `mapstructure:"path"`
	URL             string        `mapstructure:"url"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN returns the connection string for the configured driver.
func (c DatabaseConfig) DSN() string {
	if c.Driver == "postgres" {
		return c.URL
	}
	return c.Path
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})
	v.SetDefault("site.host", "en.wikipedia.org")
	v.SetDefault("site.script_path", "/w")
	v.SetDefault("site.article_path", "/wiki/$1")
	v.SetDefault("site.dev_mode", false)
	v.SetDefault("wiki.user_agent", "ReadingListsAggregator/1.0")
	v.SetDefault("wiki.thumbnail_size", 200)
	v.SetDefault("wiki.timeout", 30*time.Second)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/readinglists.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.auto_migrate", true)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.BindEnv("site.host", "SITE_HOST")
	v.BindEnv("site.script_path", "SITE_SCRIPT_PATH")
	v.BindEnv("site.dev_mode", "SITE_DEV_MODE")
	v.BindEnv("wiki.user_agent", "WIKI_USER_AGENT")
	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.url", "DATABASE_URL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
