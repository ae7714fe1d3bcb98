package config

import (
	"os"

	"github.com/griptape-ai/griptape-nodes-library-decart/model"
	"gopkg.in/yaml.v3"
)

// LoadConfig 从 YAML 文件加载配置，缺省项填默认值

func LoadConfig(path string) (*model.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var config model.Config

	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	ApplyDefaults(&config)
	return &config, nil
}

// ApplyDefaults 为未设置的配置项填默认值
func ApplyDefaults(config *model.Config) {
	if config.Decart.BaseURL == "" {
		config.Decart.BaseURL = DefaultBaseURL
	}
	if config.Decart.APIKeyEnv == "" {
		config.Decart.APIKeyEnv = DefaultAPIKeyEnv
	}
	if config.Decart.Timeout <= 0 {
		config.Decart.Timeout = DefaultTimeout
	}
	if config.Server.Port <= 0 {
		config.Server.Port = DefaultPort
	}
	if config.HotReload.Interval <= 0 {
		config.HotReload.Interval = 10
	}
	if config.S3.OutputPrefix == "" {
		config.S3.OutputPrefix = "outputs"
	}
}

// DefaultConfig 返回一份全默认配置（配置文件缺失时使用）
func DefaultConfig() *model.Config {
	var config model.Config
	ApplyDefaults(&config)
	return &config
}
