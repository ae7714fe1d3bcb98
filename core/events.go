package core

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// NodeEvent 推送给客户端的生成生命周期事件
type NodeEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	EventTaskSubmitted = "task_submitted"
	EventTaskCompleted = "task_completed"
	EventTaskFailed    = "task_failed"

	clientBufferSize = 64 // 单客户端事件缓冲，写满即丢弃
)

// EventHub 维护所有 WebSocket 客户端，把生成事件广播出去。
// 慢客户端只丢消息，不阻塞生成流程。
type EventHub struct {
	clients  map[*hubClient]struct{}
	mu       sync.Mutex
	upgrader websocket.Upgrader
}

type hubClient struct {
	conn   *websocket.Conn
	sendCh chan NodeEvent
}

// NewEventHub 创建事件中心
func NewEventHub() *EventHub {
	return &EventHub{
		clients: make(map[*hubClient]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeWS 把一个 HTTP 连接升级为事件订阅客户端
func (h *EventHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		LogEventHub("❌ WebSocket 升级失败: %v", err)
		return
	}

	client := &hubClient{
		conn:   conn,
		sendCh: make(chan NodeEvent, clientBufferSize),
	}

	h.mu.Lock()
	h.clients[client] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()
	LogEventHub("✅ 客户端已连接，当前 %d 个", total)

	go h.writeLoop(client)
	go h.readLoop(client)
}

// Publish 广播一条事件，data 会被序列化为 JSON
func (h *EventHub) Publish(eventType string, data interface{}) {
	if h == nil {
		return
	}
	event := NodeEvent{Type: eventType, Data: mustMarshal(data)}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		select {
		case client.sendCh <- event:
		default:
			LogEventHub("⚠️ 客户端缓冲已满，丢弃事件 type=%s", eventType)
		}
	}
}

// writeLoop 按序把事件写给单个客户端
func (h *EventHub) writeLoop(client *hubClient) {
	for event := range client.sendCh {
		if err := client.conn.WriteJSON(event); err != nil {
			LogEventHub("⚠️ 写入客户端失败: %v", err)
			h.drop(client)
			return
		}
	}
}

// readLoop 只为感知客户端断开，收到的消息一律忽略
func (h *EventHub) readLoop(client *hubClient) {
	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			h.drop(client)
			return
		}
	}
}

// drop 移除并关闭客户端
func (h *EventHub) drop(client *hubClient) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	total := len(h.clients)
	h.mu.Unlock()

	close(client.sendCh)
	_ = client.conn.Close()
	LogEventHub("👋 客户端断开，剩余 %d 个", total)
}

func mustMarshal(v interface{}) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}
