package model

// Reference 规范化后的媒体引用。URL 与内联字节二选一，URL 优先。
type Reference struct {
	URL         string `json:"url,omitempty"`          // 媒体的可访问 URL
	Data        []byte `json:"-"`                      // 内联原始字节
	Filename    string `json:"filename,omitempty"`     // 内联数据的文件名
	ContentType string `json:"content_type,omitempty"` // 内联数据的 MIME 类型
}

// Inline 是否为内联字节引用
func (r *Reference) Inline() bool {
	return r != nil && r.URL == "" && len(r.Data) > 0
}

// IsZero 是否为空引用
func (r *Reference) IsZero() bool {
	return r == nil || (r.URL == "" && len(r.Data) == 0)
}

// GenerationRequest 一次生成调用的请求参数，每次调用新建，不做持久化。
// Seed/Resolution/Orientation 未设置时不进入请求体，由服务端取默认值。
type GenerationRequest struct {
	Prompt      string     `json:"prompt"`
	Seed        *int64     `json:"seed,omitempty"`
	Resolution  string     `json:"resolution,omitempty"`
	Orientation string     `json:"orientation,omitempty"`
	ImageRef    *Reference `json:"image_ref,omitempty"`
	VideoRef    *Reference `json:"video_ref,omitempty"`
}

// GenerationResult 一次生成调用的结果
type GenerationResult struct {
	OutputURL string `json:"output_url"`
}

// 宿主工作流引擎的产物类型名
const (
	ArtifactImageURL = "ImageUrlArtifact"
	ArtifactVideoURL = "VideoUrlArtifact"
)

// Artifact 宿主工作流引擎消费的产物包装，只含类型名和 URL
type Artifact struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// NewArtifact 按输出类型包装结果 URL
func NewArtifact(kind OutputKind, url string) Artifact {
	if kind == OutputVideo {
		return Artifact{Type: ArtifactVideoURL, Value: url}
	}
	return Artifact{Type: ArtifactImageURL, Value: url}
}
