package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"legal-nav-go/internal/service"
	"legal-nav-go/pkg/log"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许所有来源
	},
}

// ChatHandler 负责处理 WebSocket 聊天连接。
type ChatHandler struct {
	chatService service.ChatService
}

// NewChatHandler 创建一个新的 ChatHandler 实例。
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Handle 处理一个传入的 WebSocket 连接。
// 每收到一条文本消息视为一次提问，回答以分块方式推送，
// 推送结束后追加一条 completion 事件。
func (h *ChatHandler) Handle(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket 升级失败", err)
		return
	}
	defer conn.Close()

	log.Infof("WebSocket 连接已建立, client: %s", c.ClientIP())

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			log.Warnf("从 WebSocket 读取消息失败: %v", err)
			break
		}

		question := strings.TrimSpace(string(message))
		if question == "" {
			continue
		}

		if err := h.chatService.StreamAnswer(c.Request.Context(), question, conn); err != nil {
			log.Errorf("处理流式响应失败: %v", err)
			errResp, _ := json.Marshal(map[string]string{"error": "service temporarily unavailable, please retry later"})
			_ = conn.WriteMessage(websocket.TextMessage, errResp)
		}

		completion, _ := json.Marshal(map[string]interface{}{
			"type":      "completion",
			"status":    "finished",
			"timestamp": time.Now().UnixMilli(),
		})
		if err := conn.WriteMessage(websocket.TextMessage, completion); err != nil {
			log.Warnf("写入 completion 事件失败: %v", err)
			break
		}
	}
}
