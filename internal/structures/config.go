package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type FiveMConfig struct {
	BaseURL string        `mapstructure:"baseUrl" yaml:"baseUrl" validate:"required|fullUrl"`
	Timeout time.Duration `yaml:"timeout" validate:"required|min:1"`
}

type MonitorConfig struct {
	PollInterval       time.Duration `mapstructure:"pollInterval" yaml:"pollInterval" validate:"required|min:1"`
	ReaperInterval     time.Duration `mapstructure:"reaperInterval" yaml:"reaperInterval" validate:"required|min:1"`
	StaleThreshold     time.Duration `mapstructure:"staleThreshold" yaml:"staleThreshold" validate:"required|min:1"`
	CleanupHour        int           `mapstructure:"cleanupHour" yaml:"cleanupHour" validate:"min:0|max:23"`
	PingRetentionDays  int           `mapstructure:"pingRetentionDays" yaml:"pingRetentionDays" validate:"required|min:1"`
	EventRetentionDays int           `mapstructure:"eventRetentionDays" yaml:"eventRetentionDays" validate:"required|min:1"`
	InactiveAfterDays  int           `mapstructure:"inactiveAfterDays" yaml:"inactiveAfterDays" validate:"required|min:1"`
}

type DatabaseConfig struct {
	Path string `yaml:"path" validate:"required|unixPath"`
}

type Persistence struct {
	FilePath     string        `mapstructure:"filePath" yaml:"filePath" validate:"required|unixPath"`
	SaveInterval time.Duration `mapstructure:"saveInterval" yaml:"saveInterval" validate:"required|min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type NotificationsConfig struct {
	WebhookURL string        `mapstructure:"webhookUrl" yaml:"webhookUrl"`
	Timeout    time.Duration `yaml:"timeout"`
}

type Config struct {
	AppName       string
	Debug         bool
	Path          string
	FiveM         FiveMConfig         `yaml:"fivem"`
	Monitor       MonitorConfig       `yaml:"monitor"`
	Database      DatabaseConfig      `yaml:"database"`
	Persistence   Persistence         `yaml:"persistence"`
	WebServer     Server              `mapstructure:"webServer" yaml:"webServer"`
	Logger        LoggerConfig        `yaml:"logger"`
	Cache         CacheConfig         `yaml:"cache"`
	Metrics       MetricsConfig       `yaml:"metrics"`
	Notifications NotificationsConfig `yaml:"notifications"`
}
