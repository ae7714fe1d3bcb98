package model

// DecartConfig 定义 Decart 上游 API 配置
type DecartConfig struct {
	BaseURL   string `yaml:"base_url"`    // 生成接口基础地址
	APIKey    string `yaml:"api_key"`     // 显式指定的 API Key（优先于环境变量）
	APIKeyEnv string `yaml:"api_key_env"` // 存放 API Key 的环境变量名
	Timeout   int    `yaml:"timeout"`     // 单次请求超时（秒）
}

// S3Config 定义 MinIO/S3 存储配置
type S3Config struct {
	Endpoint     string `yaml:"endpoint"`      // MinIO 服务地址
	Bucket       string `yaml:"bucket"`        // 桶名
	Region       string `yaml:"region"`        // 区域
	AccessKey    string `yaml:"access_key"`    // 访问密钥
	SecretKey    string `yaml:"secret_key"`    // 密钥
	UseSSL       bool   `yaml:"use_ssl"`       // 是否使用 SSL
	OutputPrefix string `yaml:"output_prefix"` // 输出文件前缀
}

// ServerConfig 定义服务配置
type ServerConfig struct {
	Port int `yaml:"port"` // 服务监听端口
}

// HotReloadConfig 定义节点配置热重载
type HotReloadConfig struct {
	Enabled  bool `yaml:"enabled"`  // 是否启用热重载
	Interval int  `yaml:"interval"` // 检查间隔（秒）
}

// FeishuConfig 定义飞书配置
type FeishuConfig struct {
	WebHook string `yaml:"webhook"` // 飞书 WebHook 地址
}

// Config 整体配置
type Config struct {
	Decart    DecartConfig    `yaml:"decart"`
	S3        S3Config        `yaml:"s3"`
	Server    ServerConfig    `yaml:"server"`
	HotReload HotReloadConfig `yaml:"hot_reload"`
	Feishu    FeishuConfig    `yaml:"feishu"`
}
