package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// Config holds the relay configuration.
type Config struct {
	Log     LogConfig
	Server  ServerConfig
	Browser BrowserConfig
	Model   ModelConfig
	History HistoryConfig
	Cron    CronConfig
}

// LogConfig controls the root logger.
type LogConfig struct {
	Level string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port      int
	StaticDir string
	// ChatRate caps chat requests per second across all users; 0 disables.
	ChatRate  float64
	ChatBurst int
}

// BrowserConfig describes the shared browser session.
type BrowserConfig struct {
	StartURL       string
	Mode           string
	ViewportWidth  int
	ViewportHeight int
	BlockPattern   string
	Args           []string
	LaunchTimeout  time.Duration
	ScreenshotType string
	// Serialize runs session operations one at a time.
	Serialize bool
}

// ModelConfig configures the multimodal model.
type ModelConfig struct {
	APIKey     string
	Name       string
	Timeout    time.Duration
	MaxRetries int
}

// HistoryConfig configures the chat history store. An empty DSN selects the
// in-memory store.
type HistoryConfig struct {
	DSN       string
	Table     string
	Retention time.Duration
}

// CronConfig holds schedules for background jobs.
type CronConfig struct {
	Watchdog string
	Prune    string
}

var (
	instance *Config
	once     sync.Once
)

// GetInstance returns the process configuration, loading it on first call.
// A malformed config file is fatal.
func GetInstance() *Config {
	once.Do(func() {
		cfg, err := Load(viper.New())
		if err != nil {
			panic(fmt.Sprintf("Fatal error reading config file: %s", err))
		}
		instance = cfg
	})
	return instance
}

// Load reads configuration into v and decodes it. It is exported so tests and
// the migrate command can build a config without touching the singleton.
func Load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.static_dir", "STATIC_DIR")
	v.BindEnv("browser.start_url", "START_URL")
	v.BindEnv("browser.mode", "BROWSER_MODE")
	v.BindEnv("browser.serialize", "BROWSER_SERIALIZE")
	v.BindEnv("model.api_key", "GEMINI_API_KEY")
	v.BindEnv("model.name", "GEMINI_MODEL")
	v.BindEnv("history.dsn", "DATABASE_URL")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, path := range []string{".", "$HOME/.relay", "/etc/relay"} {
		v.AddConfigPath(os.ExpandEnv(path))
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	return decode(v), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.static_dir", "public")
	v.SetDefault("server.chat_rate", 0)
	v.SetDefault("server.chat_burst", 1)
	v.SetDefault("browser.start_url", "https://www.youtube.com")
	v.SetDefault("browser.mode", "headless")
	v.SetDefault("browser.viewport_width", 1280)
	v.SetDefault("browser.viewport_height", 800)
	v.SetDefault("browser.block_pattern", "generate_204")
	v.SetDefault("browser.args", []string{"--no-sandbox", "--disable-setuid-sandbox", "--disable-gpu"})
	v.SetDefault("browser.launch_timeout", 60*time.Second)
	v.SetDefault("browser.screenshot_type", "jpeg")
	v.SetDefault("browser.serialize", true)
	v.SetDefault("model.name", "gemini-1.5-flash-001")
	v.SetDefault("model.timeout", 60*time.Second)
	v.SetDefault("model.max_retries", 2)
	v.SetDefault("history.table", "historyagents")
	v.SetDefault("history.retention", 30*24*time.Hour)
	v.SetDefault("cron.watchdog", "@every 1m")
	v.SetDefault("cron.prune", "0 3 * * *")
}

func decode(v *viper.Viper) *Config {
	return &Config{
		Log: LogConfig{
			Level: v.GetString("log.level"),
		},
		Server: ServerConfig{
			Port:      v.GetInt("server.port"),
			StaticDir: v.GetString("server.static_dir"),
			ChatRate:  v.GetFloat64("server.chat_rate"),
			ChatBurst: v.GetInt("server.chat_burst"),
		},
		Browser: BrowserConfig{
			StartURL:       v.GetString("browser.start_url"),
			Mode:           v.GetString("browser.mode"),
			ViewportWidth:  v.GetInt("browser.viewport_width"),
			ViewportHeight: v.GetInt("browser.viewport_height"),
			BlockPattern:   v.GetString("browser.block_pattern"),
			Args:           v.GetStringSlice("browser.args"),
			LaunchTimeout:  v.GetDuration("browser.launch_timeout"),
			ScreenshotType: v.GetString("browser.screenshot_type"),
			Serialize:      v.GetBool("browser.serialize"),
		},
		Model: ModelConfig{
			APIKey:     v.GetString("model.api_key"),
			Name:       v.GetString("model.name"),
			Timeout:    v.GetDuration("model.timeout"),
			MaxRetries: v.GetInt("model.max_retries"),
		},
		History: HistoryConfig{
			DSN:       v.GetString("history.dsn"),
			Table:     v.GetString("history.table"),
			Retention: v.GetDuration("history.retention"),
		},
		Cron: CronConfig{
			Watchdog: v.GetString("cron.watchdog"),
			Prune:    v.GetString("cron.prune"),
		},
	}
}
