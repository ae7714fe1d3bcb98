package config

const (
	DefaultBaseURL   = "https://api.decart.ai/v1/generate/" // Decart 生成接口基础地址
	DefaultAPIKeyEnv = "DECART_API_KEY"                     // 默认的 API Key 环境变量名
	DefaultTimeout   = 300                                  // 默认请求超时（秒），视频生成较慢
	DefaultPort      = 8080                                 // 默认监听端口

	DefaultResourceDir = "./resource/nodes" // 节点定义文件目录

	WarningInterval = 10 // 同种报警的报警间隔（秒）
)
