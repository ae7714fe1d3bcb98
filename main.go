package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/griptape-ai/griptape-nodes-library-decart/config"
	"github.com/griptape-ai/griptape-nodes-library-decart/core"
	"github.com/griptape-ai/griptape-nodes-library-decart/handler"
	"github.com/griptape-ai/griptape-nodes-library-decart/routes"
	"github.com/griptape-ai/griptape-nodes-library-decart/utils"
	"github.com/joho/godotenv"
)

func main() {
	// 1️⃣ 加载 .env（DECART_API_KEY 等凭证）
	if err := godotenv.Load(); err != nil {
		log.Println("未找到 .env 文件，使用系统环境变量")
	}

	// 2️⃣ 加载配置
	configPath := "./config.yaml"
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Printf("⚠️ 配置文件加载失败(%v)，使用默认配置", err)
		cfg = config.DefaultConfig()
	}

	// 初始化 feishu webhook
	if cfg.Feishu.WebHook != "" {
		utils.InitFeishuClient(cfg.Feishu.WebHook)
	}

	// 3️⃣ 产物存储（未配置 S3 时跳过，上游需返回 result_url）
	var store core.OutputSaver
	if cfg.S3.Endpoint != "" {
		s3store, err := core.NewArtifactStore(cfg.S3)
		if err != nil {
			panic(err)
		}
		store = s3store
	} else {
		log.Println("⚠️ 未配置 S3，二进制产物将无法保存")
	}

	// 4️⃣ 适配器 + 事件中心 + 节点管理器
	adapter := core.NewRequestAdapter(cfg.Decart.BaseURL, time.Duration(cfg.Decart.Timeout)*time.Second, store)
	hub := core.NewEventHub()

	checkInterval := time.Duration(cfg.HotReload.Interval) * time.Second
	manager := core.NewNodeManager(config.DefaultResourceDir, cfg.Decart, adapter, hub, checkInterval, cfg.HotReload.Enabled)

	// 设置路由
	h := handler.NewNodeHandler(manager, hub)
	r := gin.Default()
	routes.RegisterAPIRoutes(r, h)

	// 启动 HTTP 服务
	r.Run(fmt.Sprintf(":%d", cfg.Server.Port))
}
