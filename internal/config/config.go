package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type AppConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`

	// 断线重连宽限期，毫秒
	ReconnectionTimeoutMs int `mapstructure:"reconnection_timeout_ms"`
	// 单个回合时长，毫秒
	TimeForRoundMs int `mapstructure:"time_for_round_ms"`
}

var cfg *AppConfig

func GetConfig() *AppConfig {
	if cfg == nil {
		cfg = InitConfig()
	}

	return cfg
}

func InitConfig() *AppConfig {
	v := viper.New()

	v.SetConfigFile("app_config")
	v.SetConfigType("json")
	v.AddConfigPath(".")

	v.SetDefault("reconnection_timeout_ms", 15000)
	v.SetDefault("time_for_round_ms", 120000)

	if err := v.ReadInConfig(); err != nil {
		panic(fmt.Errorf("加载配置失败: %w", err))
	}

	var config AppConfig

	if err := v.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("解析配置失败: %w", err))
	}

	cfg = &config

	return cfg
}
