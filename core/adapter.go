package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/griptape-ai/griptape-nodes-library-decart/model"
)

/*

请求适配器

所有 Lucy 节点共用这一个适配器：
校验请求 -> 构造请求体 -> 一次同步 POST -> 解析结果 URL

三种终态：成功 / 校验失败 / 请求失败，内部不做重试。
*/

type RequestAdapter struct {
	BaseURL string
	Client  *http.Client
	Store   OutputSaver // 可为 nil：此时上游必须返回 JSON result_url
}

// NewRequestAdapter 创建请求适配器
func NewRequestAdapter(baseURL string, timeout time.Duration, store OutputSaver) *RequestAdapter {
	return &RequestAdapter{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: timeout},
		Store:   store,
	}
}

// generatePayload JSON 请求体。未设置的可选字段直接省略，由服务端取默认值。
type generatePayload struct {
	Prompt      string `json:"prompt"`
	Seed        *int64 `json:"seed,omitempty"`
	Resolution  string `json:"resolution,omitempty"`
	Orientation string `json:"orientation,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	VideoURL    string `json:"video_url,omitempty"`
}

// generateResponse JSON 响应体
type generateResponse struct {
	ResultURL string `json:"result_url"`
}

// Execute 对指定节点发起一次同步生成调用
func (a *RequestAdapter) Execute(ctx context.Context, cfg model.NodeConfig, req model.GenerationRequest, apiKey string) (*model.GenerationResult, error) {
	// 1️⃣ 凭证检查，缺失则不发起任何网络请求
	if apiKey == "" {
		return nil, &MissingCredentialError{EnvVar: "DECART_API_KEY"}
	}

	// 2️⃣ 请求与节点配置的匹配校验
	if err := validateRequest(cfg, req); err != nil {
		return nil, err
	}

	// 3️⃣ 目标 URL = 固定 base + 模型端点
	apiURL := strings.TrimSuffix(a.BaseURL, "/") + "/" + cfg.ModelEndpoint

	body, contentType, err := buildRequestBody(cfg, req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, body)
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	// 日志只记参数，凭证不落日志
	LogAdapter("🚀 发起生成请求: %s (seed=%s, resolution=%q, orientation=%q, 引用=%s)",
		apiURL, seedString(req.Seed), req.Resolution, req.Orientation, describeRef(req))

	resp, err := a.Client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("发送请求失败: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}

	LogAdapter("📥 收到响应: status=%d, size=%d 字节", resp.StatusCode, len(respBody))

	// 4️⃣ 非 2xx 直接上抛，不重试
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIRequestError{
			URL:        apiURL,
			StatusCode: resp.StatusCode,
			Body:       truncate(string(respBody), 512),
		}
	}

	// 5️⃣ 解析结果
	return a.parseResponse(ctx, cfg, resp.Header.Get("Content-Type"), respBody)
}

// validateRequest 请求必须且只能携带节点声明支持的引用类型
func validateRequest(cfg model.NodeConfig, req model.GenerationRequest) error {
	if strings.TrimSpace(req.Prompt) == "" {
		return &ValidationError{Reason: "prompt 不能为空"}
	}
	if cfg.SupportsImageInput && req.ImageRef.IsZero() {
		return &ValidationError{Reason: fmt.Sprintf("节点 %s 需要图片引用", cfg.Name)}
	}
	if !cfg.SupportsImageInput && !req.ImageRef.IsZero() {
		return &ValidationError{Reason: fmt.Sprintf("节点 %s 不接受图片引用", cfg.Name)}
	}
	if cfg.SupportsVideoInput && req.VideoRef.IsZero() {
		return &ValidationError{Reason: fmt.Sprintf("节点 %s 需要视频引用", cfg.Name)}
	}
	if !cfg.SupportsVideoInput && !req.VideoRef.IsZero() {
		return &ValidationError{Reason: fmt.Sprintf("节点 %s 不接受视频引用", cfg.Name)}
	}
	return nil
}

// buildRequestBody 构造请求体：内联字节走 multipart，其余走 JSON
func buildRequestBody(cfg model.NodeConfig, req model.GenerationRequest) (io.Reader, string, error) {
	ref := req.ImageRef
	if cfg.SupportsVideoInput {
		ref = req.VideoRef
	}

	if ref.Inline() {
		return buildMultipartBody(req, ref)
	}

	payload := generatePayload{
		Prompt:      req.Prompt,
		Seed:        req.Seed,
		Resolution:  req.Resolution,
		Orientation: req.Orientation,
	}
	if !ref.IsZero() {
		if cfg.SupportsVideoInput {
			payload.VideoURL = ref.URL
		} else {
			payload.ImageURL = ref.URL
		}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, "", fmt.Errorf("序列化请求体失败: %w", err)
	}
	return bytes.NewReader(data), "application/json", nil
}

// buildMultipartBody 内联字节上传：文本字段 + data 文件部分
func buildMultipartBody(req model.GenerationRequest, ref *model.Reference) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	_ = mw.WriteField("prompt", req.Prompt)
	if req.Seed != nil {
		_ = mw.WriteField("seed", strconv.FormatInt(*req.Seed, 10))
	}
	if req.Resolution != "" {
		_ = mw.WriteField("resolution", req.Resolution)
	}
	if req.Orientation != "" {
		_ = mw.WriteField("orientation", req.Orientation)
	}

	filename := ref.Filename
	if filename == "" {
		filename = "input.bin"
	}
	fw, err := mw.CreateFormFile("data", filename)
	if err != nil {
		return nil, "", fmt.Errorf("构造文件字段失败: %w", err)
	}
	if _, err := fw.Write(ref.Data); err != nil {
		return nil, "", fmt.Errorf("写入文件字段失败: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("关闭 multipart 失败: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}

// parseResponse 解析 2xx 响应：JSON 里取 result_url，二进制存入产物存储换 URL
func (a *RequestAdapter) parseResponse(ctx context.Context, cfg model.NodeConfig, contentType string, body []byte) (*model.GenerationResult, error) {
	if len(body) == 0 {
		return nil, &MalformedResponseError{Reason: "响应体为空"}
	}

	if strings.Contains(contentType, "application/json") {
		var parsed generateResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			return nil, &MalformedResponseError{Reason: "JSON 解析失败: " + err.Error()}
		}
		if parsed.ResultURL == "" {
			return nil, &MalformedResponseError{Reason: "响应缺少 result_url 字段"}
		}
		return &model.GenerationResult{OutputURL: parsed.ResultURL}, nil
	}

	// 上游直接返回媒体字节（与宿主引擎里存静态文件再取 URL 的流程对应）
	if strings.HasPrefix(contentType, "image/") || strings.HasPrefix(contentType, "video/") ||
		strings.HasPrefix(contentType, "application/octet-stream") || contentType == "" {
		if a.Store == nil {
			return nil, fmt.Errorf("上游返回二进制产物但未配置产物存储")
		}
		filename := outputFilename(cfg, contentType, body)
		url, err := a.Store.SaveOutput(ctx, filename, body, contentType)
		if err != nil {
			return nil, fmt.Errorf("保存产物失败: %w", err)
		}
		return &model.GenerationResult{OutputURL: url}, nil
	}

	return nil, &MalformedResponseError{Reason: "未知的响应 Content-Type: " + contentType}
}

// outputFilename 产物文件名: decart_<端点>_output_<uuid>.<ext>
func outputFilename(cfg model.NodeConfig, contentType string, body []byte) string {
	if contentType == "" || strings.HasPrefix(contentType, "application/octet-stream") {
		contentType = http.DetectContentType(body)
	}
	ext := extensionFor(contentType)
	if ext == ".bin" && cfg.OutputKind == model.OutputVideo {
		ext = ".mp4"
	} else if ext == ".bin" {
		ext = ".png"
	}
	return fmt.Sprintf("decart_%s_output_%s%s", cfg.ModelEndpoint, uuid.NewString(), ext)
}

// 辅助函数

func seedString(seed *int64) string {
	if seed == nil {
		return "<nil>"
	}
	return strconv.FormatInt(*seed, 10)
}

func describeRef(req model.GenerationRequest) string {
	switch {
	case req.ImageRef.Inline():
		return fmt.Sprintf("图片内联 %d 字节", len(req.ImageRef.Data))
	case !req.ImageRef.IsZero():
		return "图片 URL"
	case req.VideoRef.Inline():
		return fmt.Sprintf("视频内联 %d 字节", len(req.VideoRef.Data))
	case !req.VideoRef.IsZero():
		return "视频 URL"
	default:
		return "无"
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
