package model

import "fmt"

// OutputKind 节点输出产物类型
type OutputKind string

const (
	OutputImage OutputKind = "image" // 输出图片
	OutputVideo OutputKind = "video" // 输出视频
)

// NodeConfig 描述一个 Lucy 生成节点，对应 Decart 的一个模型端点。
// SupportsImageInput / SupportsVideoInput 同时也是必填声明：
// 声明支持的引用类型在请求中必须出现，未声明的出现即校验失败。
type NodeConfig struct {
	Name               string     `yaml:"name" json:"name"`                                         // 节点名称（路由用）
	Description        string     `yaml:"description" json:"description"`                           // 节点描述
	ModelEndpoint      string     `yaml:"model_endpoint" json:"model_endpoint"`                     // 模型端点，拼在 base_url 之后
	SupportsImageInput bool       `yaml:"supports_image_input" json:"supports_image_input"`         // 是否需要图片引用
	SupportsVideoInput bool       `yaml:"supports_video_input" json:"supports_video_input"`         // 是否需要视频引用
	OutputKind         OutputKind `yaml:"output_kind" json:"output_kind"`                           // 输出产物类型
	Resolutions        []string   `yaml:"resolutions,omitempty" json:"resolutions,omitempty"`       // 可选分辨率列表
	Orientations       []string   `yaml:"orientations,omitempty" json:"orientations,omitempty"`     // 可选画面方向列表
}

// Validate 校验节点配置本身是否完整
func (c *NodeConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("节点配置缺少 name")
	}
	if c.ModelEndpoint == "" {
		return fmt.Errorf("节点 %s 缺少 model_endpoint", c.Name)
	}
	if c.OutputKind != OutputImage && c.OutputKind != OutputVideo {
		return fmt.Errorf("节点 %s 的 output_kind 非法: %q", c.Name, c.OutputKind)
	}
	if c.SupportsImageInput && c.SupportsVideoInput {
		return fmt.Errorf("节点 %s 不能同时声明图片和视频引用", c.Name)
	}
	return nil
}

// DefaultNodes 内置的 Lucy 节点配置表。
// 每个节点只是这张表里的一行，请求流程全部走同一个适配器。
func DefaultNodes() []NodeConfig {
	return []NodeConfig{
		{
			Name:          "lucy-pro-t2i",
			Description:   "文生图（Lucy Pro T2I）",
			ModelEndpoint: "lucy-pro-t2i",
			OutputKind:    OutputImage,
			Orientations:  []string{"landscape", "portrait"},
		},
		{
			Name:          "lucy-pro-t2v",
			Description:   "文生视频（Lucy Pro T2V）",
			ModelEndpoint: "lucy-pro-t2v",
			OutputKind:    OutputVideo,
			Resolutions:   []string{"720p", "480p"},
			Orientations:  []string{"landscape", "portrait"},
		},
		{
			Name:          "lucy-dev-t2v",
			Description:   "文生视频（Lucy Dev T2V，仅 720p）",
			ModelEndpoint: "lucy-dev-t2v",
			OutputKind:    OutputVideo,
			Resolutions:   []string{"720p"},
		},
		{
			Name:               "lucy-pro-i2v",
			Description:        "图生视频（Lucy Pro I2V）",
			ModelEndpoint:      "lucy-pro-i2v",
			SupportsImageInput: true,
			OutputKind:         OutputVideo,
			Resolutions:        []string{"720p", "480p"},
		},
		{
			Name:               "lucy-dev-i2v",
			Description:        "图生视频（Lucy Dev I2V，仅 720p）",
			ModelEndpoint:      "lucy-dev-i2v",
			SupportsImageInput: true,
			OutputKind:         OutputVideo,
			Resolutions:        []string{"720p"},
		},
		{
			Name:               "lucy-pro-v2v",
			Description:        "视频编辑（Lucy Pro V2V）",
			ModelEndpoint:      "lucy-pro-v2v",
			SupportsVideoInput: true,
			OutputKind:         OutputVideo,
		},
		{
			Name:               "lucy-dev-v2v",
			Description:        "视频编辑（Lucy Dev V2V，仅 720p）",
			ModelEndpoint:      "lucy-dev-v2v",
			SupportsVideoInput: true,
			OutputKind:         OutputVideo,
			Resolutions:        []string{"720p"},
		},
	}
}
