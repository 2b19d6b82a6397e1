package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type StorageConfig struct {
	Primary       string `yaml:"primary" validate:"required|in:pebble,sqlite"`
	Dir           string `yaml:"dir" validate:"required|unixPath"`
	FallbackFile  string `yaml:"fallbackFile" validate:"required"`
	MaxValueBytes int    `yaml:"maxValueBytes" validate:"required|min:1"`
	QuotaBytes    int64  `yaml:"quotaBytes" validate:"min:0"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type ExportConfig struct {
	Timezone  string `yaml:"timezone"`
	Generator string `yaml:"generator"`
}

type ResolverConfig struct {
	Timeout time.Duration `yaml:"timeout" validate:"required|min:1"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName   string
	Debug     bool
	Path      string
	WebServer Server         `yaml:"webServer"`
	Storage   StorageConfig  `yaml:"storage"`
	Export    ExportConfig   `yaml:"export"`
	Resolver  ResolverConfig `yaml:"resolver"`
	Logger    LoggerConfig   `yaml:"logger"`
	Cache     CacheConfig    `yaml:"cache"`
	Metrics   MetricsConfig  `yaml:"metrics"`
}
