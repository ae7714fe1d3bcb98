package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/griptape-ai/griptape-nodes-library-decart/core"
	"github.com/griptape-ai/griptape-nodes-library-decart/model"
)

// =======================
// 📦 通用响应结构
// =======================
type Response struct {
	Code int         `json:"code"` // 0 成功，-1 失败
	Msg  string      `json:"msg"`
	Data interface{} `json:"data,omitempty"`
}

func Success(data interface{}) Response {
	return Response{
		Code: 0,
		Msg:  "success",
		Data: data,
	}
}

func Fail(msg string) Response {
	return Response{
		Code: -1,
		Msg:  msg,
	}
}

// =======================
// 💡 NodeHandler 主体
// =======================
type NodeHandler struct {
	Manager *core.NodeManager
	Hub     *core.EventHub
}

// 创建实例
func NewNodeHandler(manager *core.NodeManager, hub *core.EventHub) *NodeHandler {
	return &NodeHandler{
		Manager: manager,
		Hub:     hub,
	}
}

// GenerateRequest 同步生成接口的 JSON 请求体。
// image/video 接受 URL 字符串、data URI 或 {value, type} 形式。
type GenerateRequest struct {
	Node        string      `json:"node" binding:"required"`
	Prompt      string      `json:"prompt" binding:"required"`
	Seed        *int64      `json:"seed"`
	Resolution  string      `json:"resolution"`
	Orientation string      `json:"orientation"`
	Image       interface{} `json:"image"`
	Video       interface{} `json:"video"`
}

// =======================
// 🚀 生成任务接口
// =======================
func (h *NodeHandler) GenerateSyncHandler(c *gin.Context) {
	var genReq model.GenerationRequest
	var nodeName string
	var err error

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		nodeName, genReq, err = h.bindMultipart(c)
	} else {
		nodeName, genReq, err = bindJSON(c)
	}
	if err != nil {
		h.JSON(c, http.StatusBadRequest, Fail(err.Error()))
		return
	}

	artifact, err := h.Manager.Generate(c.Request.Context(), nodeName, genReq)
	if err != nil {
		h.JSON(c, statusFor(err), Fail(err.Error()))
		return
	}

	// 成功响应：宿主引擎直接消费这个产物包装
	h.JSON(c, http.StatusOK, Success(artifact))
}

// bindJSON 解析 JSON 请求体并规范化引用
func bindJSON(c *gin.Context) (string, model.GenerationRequest, error) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// 校验类错误给出字段级提示，其余按请求体非法处理
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return "", model.GenerationRequest{}, errors.New("缺少必填字段: " + verrs[0].Field())
		}
		return "", model.GenerationRequest{}, errors.New("invalid request body")
	}

	imageRef, err := core.NormalizeReference(req.Image)
	if err != nil {
		return "", model.GenerationRequest{}, err
	}
	videoRef, err := core.NormalizeReference(req.Video)
	if err != nil {
		return "", model.GenerationRequest{}, err
	}

	return req.Node, model.GenerationRequest{
		Prompt:      req.Prompt,
		Seed:        req.Seed,
		Resolution:  req.Resolution,
		Orientation: req.Orientation,
		ImageRef:    imageRef,
		VideoRef:    videoRef,
	}, nil
}

// bindMultipart 解析 multipart 表单：文本字段 + data 文件部分作为引用
func (h *NodeHandler) bindMultipart(c *gin.Context) (string, model.GenerationRequest, error) {
	nodeName := c.PostForm("node")
	if nodeName == "" {
		return "", model.GenerationRequest{}, errors.New("缺少必填字段: node")
	}

	req := model.GenerationRequest{
		Prompt:      c.PostForm("prompt"),
		Resolution:  c.PostForm("resolution"),
		Orientation: c.PostForm("orientation"),
	}
	if s := c.PostForm("seed"); s != "" {
		seed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return "", model.GenerationRequest{}, errors.New("seed 必须是整数")
		}
		req.Seed = &seed
	}

	fileHeader, err := c.FormFile("data")
	if err != nil {
		// 没有文件部分也允许：t2i/t2v 节点走纯文本
		return nodeName, req, nil
	}
	f, err := fileHeader.Open()
	if err != nil {
		return "", model.GenerationRequest{}, errors.New("读取上传文件失败")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return "", model.GenerationRequest{}, errors.New("读取上传文件失败")
	}

	ref, err := core.NormalizeReference(data)
	if err != nil {
		return "", model.GenerationRequest{}, err
	}
	if ref != nil && fileHeader.Filename != "" {
		ref.Filename = fileHeader.Filename
	}

	// 按节点声明决定这份字节算图片还是视频引用
	if node, ok := h.Manager.GetNode(nodeName); ok && node.SupportsVideoInput {
		req.VideoRef = ref
	} else {
		req.ImageRef = ref
	}
	return nodeName, req, nil
}

// statusFor 错误分类到 HTTP 状态码
func statusFor(err error) int {
	var (
		validation  *core.ValidationError
		unsupported *core.UnsupportedInputTypeError
		credential  *core.MissingCredentialError
		apiErr      *core.APIRequestError
		malformed   *core.MalformedResponseError
	)
	switch {
	case errors.As(err, &validation), errors.As(err, &unsupported):
		return http.StatusBadRequest
	case errors.As(err, &credential):
		return http.StatusInternalServerError
	case errors.As(err, &apiErr), errors.As(err, &malformed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ====================
// 📋 列出节点接口
// ======================
func (h *NodeHandler) ListNodesHandler(c *gin.Context) {
	list := h.Manager.ListNodes()
	c.JSON(http.StatusOK, Success(list))
}

// =========================
// ▶️ 启用指定节点
// ========================

func (h *NodeHandler) EnableNodeHandler(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, Fail("missing node name"))
		return
	}
	if err := h.Manager.EnableNode(name); err != nil {
		c.JSON(http.StatusBadRequest, Fail(err.Error()))
		return
	}
	c.JSON(http.StatusOK, Success("节点 ["+name+"] 已启用"))
}

// =================
// ⏹️ 停用指定节点
// ==================
func (h *NodeHandler) DisableNodeHandler(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, Fail("missing node name"))
		return
	}
	if err := h.Manager.DisableNode(name); err != nil {
		c.JSON(http.StatusBadRequest, Fail(err.Error()))
		return
	}
	c.JSON(http.StatusOK, Success("节点 ["+name+"] 已停用"))
}

// =================
// 📡 事件订阅
// ==================
func (h *NodeHandler) EventsHandler(c *gin.Context) {
	h.Hub.ServeWS(c.Writer, c.Request)
}

// =======================
// 🧩 封装统一响应输出
// =======================
func (h *NodeHandler) JSON(c *gin.Context, status int, resp Response) {
	c.JSON(status, resp)
}
