package web

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"marketpulse/storage"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许所有来源（生产环境应该限制）
	},
}

// Hub WebSocket 中心，回测完成事件与实时日志经此广播
type Hub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	mu         sync.RWMutex
}

func newHub() *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
	}
}

// run 运行 WebSocket 中心
func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.clients[conn] = true
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					delete(h.clients, conn)
					conn.Close()
				}
			}
			h.mu.Unlock()
		}
	}
}

// broadcastJSON 序列化后广播，channel 满了直接丢弃
func (h *Hub) broadcastJSON(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	select {
	case h.broadcast <- data:
	default:
	}
}

// clientCount 当前连接数
func (h *Hub) clientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// handleWebSocket 升级连接并注册到 Hub，
// subscribe_logs=true 时额外订阅日志流逐条推送
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	s.hub.register <- conn
	s.pm.SetWebSocketClients(s.hub.clientCount())

	var logCh chan *storage.LogEntry
	if c.Query("subscribe_logs") == "true" && s.logStore != nil {
		logCh = s.logStore.Subscribe()
	}

	if logCh != nil {
		go func() {
			defer s.logStore.Unsubscribe(logCh)
			for entry := range logCh {
				message := map[string]interface{}{
					"type": "log",
					"data": map[string]interface{}{
						"id":        entry.ID,
						"timestamp": entry.Timestamp,
						"level":     entry.Level,
						"message":   entry.Message,
					},
				}
				data, err := json.Marshal(message)
				if err != nil {
					continue
				}
				if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
					return
				}
			}
		}()
	}

	// 保持连接
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			s.hub.unregister <- conn
			s.pm.SetWebSocketClients(s.hub.clientCount())
			break
		}
	}
}
