package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/griptape-ai/griptape-nodes-library-decart/handler"
)

func RegisterAPIRoutes(r *gin.Engine, h *handler.NodeHandler) {
	api := r.Group("/api")
	{
		api.POST("/generate_sync", h.GenerateSyncHandler)

		// ✅ 管理接口
		api.GET("/nodes", h.ListNodesHandler)
		api.POST("/nodes/:name/enable", h.EnableNodeHandler)
		api.POST("/nodes/:name/disable", h.DisableNodeHandler)
	}

	// 📡 生成事件订阅
	r.GET("/ws", h.EventsHandler)
}
