package core

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/griptape-ai/griptape-nodes-library-decart/model"
)

// NormalizeReference 把任意形状的引用输入规范化成统一的 Reference。
// 支持的形状：
//   - URL 字符串（http/https）
//   - base64 data URI 字符串
//   - 原始字节 []byte
//   - map{value, type}，value 为 URL 或 data URI（宿主引擎传下来的 dict 形式）
//   - 已经规范化的 Reference / *Reference
//   - 宿主产物 Artifact（取其 URL）
//
// 其余形状一律返回 UnsupportedInputTypeError。URL 优先于内联字节。
func NormalizeReference(input interface{}) (*model.Reference, error) {
	switch v := input.(type) {
	case nil:
		return nil, nil
	case string:
		return normalizeString(v, "")
	case []byte:
		if len(v) == 0 {
			return nil, nil
		}
		contentType := http.DetectContentType(v)
		return &model.Reference{
			Data:        v,
			Filename:    "input" + extensionFor(contentType),
			ContentType: contentType,
		}, nil
	case map[string]interface{}:
		value, _ := v["value"].(string)
		if value == "" {
			return nil, &UnsupportedInputTypeError{Got: "map 缺少字符串 value 字段"}
		}
		contentType, _ := v["type"].(string)
		return normalizeString(value, contentType)
	case model.Reference:
		return NormalizeReference(&v)
	case *model.Reference:
		if v.IsZero() {
			return nil, nil
		}
		return v, nil
	case model.Artifact:
		if v.Value == "" {
			return nil, &UnsupportedInputTypeError{Got: "Artifact 缺少 value"}
		}
		return &model.Reference{URL: v.Value}, nil
	default:
		return nil, &UnsupportedInputTypeError{Got: fmt.Sprintf("%T", input)}
	}
}

// normalizeString 处理字符串形式的引用：URL 或 data URI
func normalizeString(value, typeHint string) (*model.Reference, error) {
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		return &model.Reference{URL: value, Filename: filenameFromURL(value, typeHint)}, nil
	}
	if idx := strings.Index(value, "base64,"); idx >= 0 {
		raw, err := base64.StdEncoding.DecodeString(value[idx+len("base64,"):])
		if err != nil {
			return nil, &UnsupportedInputTypeError{Got: "base64 数据解码失败"}
		}
		contentType := typeHint
		// data URI 自带类型时以它为准，例如 data:image/png;base64,...
		if strings.HasPrefix(value, "data:") {
			if end := strings.IndexAny(value, ";,"); end > len("data:") {
				contentType = value[len("data:"):end]
			}
		}
		if contentType == "" {
			contentType = http.DetectContentType(raw)
		}
		return &model.Reference{
			Data:        raw,
			Filename:    "input" + extensionFor(contentType),
			ContentType: contentType,
		}, nil
	}
	return nil, &UnsupportedInputTypeError{Got: fmt.Sprintf("字符串既不是 URL 也不是 base64 数据: %.50s", value)}
}

// filenameFromURL 从 URL 提取文件名，扩展名不合理时按类型回退
func filenameFromURL(rawURL, typeHint string) string {
	base := path.Base(strings.SplitN(rawURL, "?", 2)[0])
	if ext := path.Ext(base); ext != "" && len(ext) <= 5 {
		return base
	}
	return "input" + extensionFor(typeHint)
}

// extensionFor 按 MIME 类型给出文件扩展名
func extensionFor(contentType string) string {
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	case "video/mp4":
		return ".mp4"
	case "video/webm":
		return ".webm"
	case "video/quicktime":
		return ".mov"
	}
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return ".png"
	case strings.HasPrefix(contentType, "video/"):
		return ".mp4"
	default:
		return ".bin"
	}
}
