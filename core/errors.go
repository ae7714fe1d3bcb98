package core

import "fmt"

// 错误分类：凭证缺失 / 参数校验失败 / 输入类型不支持 / 上游请求失败 / 响应格式错误。
// 全部直接上抛给调用方，内部不做重试。

// MissingCredentialError API Key 未配置
type MissingCredentialError struct {
	EnvVar string // 期望的环境变量名
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("缺少 Decart API Key，请在环境变量 %s 或配置文件中设置", e.EnvVar)
}

// ValidationError 请求与节点配置不匹配（prompt 为空、引用缺失或多余）
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "请求校验失败: " + e.Reason
}

// UnsupportedInputTypeError 引用输入的形状无法规范化
type UnsupportedInputTypeError struct {
	Got string // 实际收到的形状描述
}

func (e *UnsupportedInputTypeError) Error() string {
	return "不支持的引用输入类型: " + e.Got
}

// APIRequestError 上游返回非 2xx
type APIRequestError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *APIRequestError) Error() string {
	return fmt.Sprintf("Decart API 请求失败: %s 返回 %d: %s", e.URL, e.StatusCode, e.Body)
}

// MalformedResponseError 上游 2xx 但响应里找不到结果
type MalformedResponseError struct {
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return "Decart API 响应格式错误: " + e.Reason
}
