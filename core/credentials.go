package core

import (
	"os"

	"github.com/griptape-ai/griptape-nodes-library-decart/config"
	"github.com/griptape-ai/griptape-nodes-library-decart/model"
)

// ResolveAPIKey 解析凭证：配置显式指定 > 环境变量。
// 缺失只导致本次调用失败，不影响其它节点调用。
func ResolveAPIKey(cfg model.DecartConfig) (string, error) {
	if cfg.APIKey != "" {
		return cfg.APIKey, nil
	}
	env := cfg.APIKeyEnv
	if env == "" {
		env = config.DefaultAPIKeyEnv
	}
	if key := os.Getenv(env); key != "" {
		return key, nil
	}
	return "", &MissingCredentialError{EnvVar: env}
}
