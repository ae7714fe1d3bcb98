package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/griptape-ai/griptape-nodes-library-decart/model"
	"github.com/griptape-ai/griptape-nodes-library-decart/utils"
	"gopkg.in/yaml.v3"
)

// NodeManager 管理所有 Lucy 节点配置：内置配置表打底，资源目录里的 YAML
// 定义覆盖或新增，支持热重载和启停，并把生成调用路由到统一适配器。
type NodeManager struct {
	nodes        map[string]*model.NodeConfig // 节点名 -> 配置
	disabled     map[string]bool              // 节点名 -> 是否停用
	configFiles  map[string]string            // 节点名 -> 定义文件路径（内置节点无此项）
	fileModTimes map[string]time.Time         // 文件路径 -> 最后修改时间

	adapter *RequestAdapter
	hub     *EventHub
	decart  model.DecartConfig

	resourceDir   string
	mu            sync.RWMutex
	stopCh        chan struct{}
	wg            sync.WaitGroup
	checkInterval time.Duration
}

// NewNodeManager 创建节点管理器并加载配置表
func NewNodeManager(resourceDir string, decart model.DecartConfig, adapter *RequestAdapter, hub *EventHub, checkInterval time.Duration, hotReload bool) *NodeManager {
	manager := &NodeManager{
		nodes:         make(map[string]*model.NodeConfig),
		disabled:      make(map[string]bool),
		configFiles:   make(map[string]string),
		fileModTimes:  make(map[string]time.Time),
		adapter:       adapter,
		hub:           hub,
		decart:        decart,
		resourceDir:   resourceDir,
		stopCh:        make(chan struct{}),
		checkInterval: checkInterval,
	}

	// 1️⃣ 内置节点配置表
	for _, node := range model.DefaultNodes() {
		n := node
		manager.nodes[n.Name] = &n
	}
	// 2️⃣ 资源目录里的 YAML 定义覆盖/新增
	manager.loadNodeFiles()

	LogNodeManager("✅ 加载 %d 个节点配置", len(manager.nodes))
	for name, node := range manager.nodes {
		LogNodeManager("节点: %s -> %s (输出 %s)", name, node.ModelEndpoint, node.OutputKind)
	}

	// 🚀 按配置启动热重载监控
	if hotReload {
		manager.StartHotReload()
	}
	return manager
}

// loadNodeFiles 加载资源目录下的所有节点定义文件
func (m *NodeManager) loadNodeFiles() {
	files, err := os.ReadDir(m.resourceDir)
	if err != nil {
		// 目录不存在时只用内置配置表
		LogNodeManager("⚠️ 节点定义目录不可读(%s)，仅使用内置配置表", m.resourceDir)
		return
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".yaml") {
			continue
		}
		configPath := filepath.Join(m.resourceDir, file.Name())
		m.addNodeFile(configPath)
	}
}

// addNodeFile 解析并注册一个节点定义文件
func (m *NodeManager) addNodeFile(configPath string) {
	node, err := parseNodeFile(configPath)
	if err != nil {
		LogNodeManager(ColorRed+"❌ 节点定义文件无效: %s, 错误: %s", configPath, err)
		return
	}

	if _, exists := m.nodes[node.Name]; exists {
		LogNodeManager("🔄 覆盖节点配置: %s (%s)", node.Name, configPath)
	} else {
		LogNodeManager("🆕 新增节点配置: %s (%s)", node.Name, configPath)
	}
	m.nodes[node.Name] = node
	m.configFiles[node.Name] = configPath

	if fileInfo, err := os.Stat(configPath); err == nil {
		m.fileModTimes[configPath] = fileInfo.ModTime()
	}
}

// parseNodeFile 读取并校验一个 YAML 节点定义
func parseNodeFile(configPath string) (*model.NodeConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("读取文件失败: %w", err)
	}
	var node model.NodeConfig
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("解析 YAML 失败: %w", err)
	}
	if err := node.Validate(); err != nil {
		return nil, err
	}
	return &node, nil
}

// ---------------------------------- 控制逻辑 --------------------------------

// EnableNode 启用节点
func (m *NodeManager) EnableNode(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.nodes[name]; !ok {
		return fmt.Errorf("节点 %s 不存在", name)
	}
	delete(m.disabled, name)
	LogNodeManager("▶️ 节点已启用: %s", name)
	return nil
}

// DisableNode 停用节点，停用后的生成请求直接拒绝
func (m *NodeManager) DisableNode(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.nodes[name]; !ok {
		return fmt.Errorf("节点 %s 不存在", name)
	}
	m.disabled[name] = true
	LogNodeManager("⏹️ 节点已停用: %s", name)
	return nil
}

// GetNode 按名称取节点配置
func (m *NodeManager) GetNode(name string) (model.NodeConfig, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	node, ok := m.nodes[name]
	if !ok {
		return model.NodeConfig{}, false
	}
	return *node, true
}

// ListNodes 获取节点状态列表
func (m *NodeManager) ListNodes() []map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := []map[string]string{}
	for name, node := range m.nodes {
		status := "online"
		if m.disabled[name] {
			status = "offline"
		}
		list = append(list, map[string]string{
			"name":        name,
			"description": node.Description,
			"endpoint":    node.ModelEndpoint,
			"output_kind": string(node.OutputKind),
			"status":      status,
		})
	}
	return list
}

// ---------------------------------- 热重载功能 --------------------------------

// StartHotReload 启动热重载监控
func (m *NodeManager) StartHotReload() {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.hotReloadLoop()
	}()
	LogNodeManager("🔥 热重载监控已启动，检查间隔: %v", m.checkInterval)
}

// StopHotReload 停止热重载监控
func (m *NodeManager) StopHotReload() {
	close(m.stopCh)
	m.wg.Wait()
	LogNodeManager("🛑 热重载监控已停止")
}

// hotReloadLoop 热重载循环
func (m *NodeManager) hotReloadLoop() {
	ticker := time.NewTicker(m.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.checkConfigChanges()
		}
	}
}

// checkConfigChanges 对比资源目录，处理新增/删除/修改的定义文件
func (m *NodeManager) checkConfigChanges() {
	m.mu.Lock()
	defer m.mu.Unlock()

	files, err := os.ReadDir(m.resourceDir)
	if err != nil {
		LogNodeManager("❌ 读取目录失败: %s, 错误: %s", m.resourceDir, err)
		return
	}

	currentFiles := make(map[string]bool)
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".yaml") {
			continue
		}
		currentFiles[filepath.Join(m.resourceDir, file.Name())] = true
	}

	// 新增的文件
	for configPath := range currentFiles {
		if _, exists := m.fileModTimes[configPath]; !exists {
			LogNodeManager("🆕 检测到新增定义文件: %s", configPath)
			m.addNodeFile(configPath)
		}
	}

	// 删除的文件
	for configPath := range m.fileModTimes {
		if !currentFiles[configPath] {
			LogNodeManager("🗑️ 检测到删除定义文件: %s", configPath)
			m.removeNodeFile(configPath)
		}
	}

	// 修改的文件
	for name, configPath := range m.configFiles {
		fileInfo, err := os.Stat(configPath)
		if err != nil {
			continue
		}
		modTime := fileInfo.ModTime()
		if lastModTime, exists := m.fileModTimes[configPath]; exists && modTime.After(lastModTime) {
			LogNodeManager("🔄 检测到定义文件变化: %s", configPath)
			m.reloadNodeFile(name, configPath)
			m.fileModTimes[configPath] = modTime
		}
	}
}

// removeNodeFile 移除一个已删除文件对应的节点；被覆盖的内置节点恢复为内置定义
func (m *NodeManager) removeNodeFile(configPath string) {
	var targetName string
	for name, path := range m.configFiles {
		if path == configPath {
			targetName = name
			break
		}
	}
	if targetName == "" {
		delete(m.fileModTimes, configPath)
		return
	}

	delete(m.configFiles, targetName)
	delete(m.fileModTimes, configPath)
	delete(m.nodes, targetName)

	for _, builtin := range model.DefaultNodes() {
		if builtin.Name == targetName {
			b := builtin
			m.nodes[targetName] = &b
			LogNodeManager("↩️ 节点 %s 恢复为内置定义", targetName)
			return
		}
	}
	LogNodeManager("🗑️ 移除节点配置: %s", targetName)
}

// reloadNodeFile 重新加载一个定义文件
func (m *NodeManager) reloadNodeFile(name string, configPath string) {
	node, err := parseNodeFile(configPath)
	if err != nil {
		LogNodeManager(ColorRed+"❌ 重新加载失败，保留旧配置: %s, 错误: %s", configPath, err)
		return
	}
	// 文件里改了节点名时同步迁移
	if node.Name != name {
		delete(m.nodes, name)
		delete(m.configFiles, name)
	}
	m.nodes[node.Name] = node
	m.configFiles[node.Name] = configPath
	LogNodeManager("✅ 重新加载节点配置成功: %s", node.Name)
}

// --------------------------------- 生成逻辑 ------------------------------------------

// taskEvent 推送给事件订阅方的载荷
type taskEvent struct {
	TaskID string `json:"task_id"`
	Node   string `json:"node"`
	URL    string `json:"url,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Generate 执行一次同步生成：解析凭证 -> 适配器调用 -> 包装宿主产物
func (m *NodeManager) Generate(ctx context.Context, nodeName string, req model.GenerationRequest) (*model.Artifact, error) {
	m.mu.RLock()
	node, ok := m.nodes[nodeName]
	off := m.disabled[nodeName]
	m.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("节点 %s 不存在", nodeName)
	}
	if off {
		return nil, fmt.Errorf("节点 %s 已停用", nodeName)
	}

	apiKey, err := ResolveAPIKey(m.decart)
	if err != nil {
		return nil, err
	}

	taskID := uuid.NewString()
	m.hub.Publish(EventTaskSubmitted, taskEvent{TaskID: taskID, Node: nodeName})

	result, err := m.adapter.Execute(ctx, *node, req, apiKey)
	if err != nil {
		m.hub.Publish(EventTaskFailed, taskEvent{TaskID: taskID, Node: nodeName, Error: err.Error()})
		if apiErr, ok := err.(*APIRequestError); ok && utils.Feishu != nil {
			utils.Feishu.InternalFeishuWarning("api_request_failed", nodeName,
				fmt.Sprintf("节点 %s 上游调用失败: status=%d", nodeName, apiErr.StatusCode))
		}
		return nil, err
	}

	m.hub.Publish(EventTaskCompleted, taskEvent{TaskID: taskID, Node: nodeName, URL: result.OutputURL})

	artifact := model.NewArtifact(node.OutputKind, result.OutputURL)
	return &artifact, nil
}
