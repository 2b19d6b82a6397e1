package providers

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"livenotes/internal/structures"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	v := viper.New()
	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")

	v.SetDefault("storage.primary", "pebble")
	v.SetDefault("storage.fallbackFile", "fallback.kv.zst")
	v.SetDefault("storage.maxValueBytes", 5*1024*1024)
	v.SetDefault("resolver.timeout", 5*time.Second)
	v.SetDefault("export.generator", "livenotes")
	v.SetDefault("cache.ttl", time.Minute)

	v.BindEnv("logger.level", "LIVENOTES_LOG_LEVEL")
	v.BindEnv("storage.primary", "LIVENOTES_STORAGE_PRIMARY")
	v.BindEnv("storage.dir", "LIVENOTES_STORAGE_DIR")
	v.BindEnv("resolver.timeout", "LIVENOTES_RESOLVER_TIMEOUT")
	v.BindEnv("cache.enabled", "LIVENOTES_CACHE_ENABLED")
	v.BindEnv("cache.size", "LIVENOTES_CACHE_SIZE")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "LiveNotes"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
