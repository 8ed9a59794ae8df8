package providers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"fivemon/internal/structures"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.BindEnv("logger.level", "FIVEMON_LOG_LEVEL")
	viper.BindEnv("fivem.baseUrl", "FIVEMON_BASE_URL")
	viper.BindEnv("monitor.pollInterval", "FIVEMON_POLL_INTERVAL")
	viper.BindEnv("database.path", "FIVEMON_DB_PATH")
	viper.BindEnv("notifications.webhookUrl", "FIVEMON_WEBHOOK_URL")
	viper.BindEnv("cache.enabled", "FIVEMON_CACHE_ENABLED")
	viper.BindEnv("cache.size", "FIVEMON_CACHE_SIZE")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "FiveMServerMonitor"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
