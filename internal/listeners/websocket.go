package listeners

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ROOM_INFORMES es la única room: todos los navegadores ven el mismo informe vigente
const ROOM_INFORMES = "informes"

// Tipos de mensaje enviados por el hub
const (
	MSG_INFORME_ACTUALIZADO = "informe_actualizado"
	MSG_REFRESCO_ESTADO     = "refresco_estado"
)

// WebSocketMessage representa un mensaje enviado a través del WebSocket
type WebSocketMessage struct {
	Type      string      `json:"type"`
	Timestamp string      `json:"timestamp"` // ISO 8601
	Data      interface{} `json:"data"`
}

// InformeActualizadoData resume el resultado de un refresco
type InformeActualizadoData struct {
	Informe    string `json:"informe"`
	Filas      int    `json:"filas"`
	Grafico    string `json:"grafico,omitempty"`
	GeneradoEn string `json:"generado_en,omitempty"`
	Mensaje    string `json:"mensaje,omitempty"`
}

// Client representa un cliente WebSocket conectado
type Client struct {
	ID       string
	Conn     *websocket.Conn
	RoomName string
	Send     chan []byte
	Hub      *WebSocketHub
}

// WebSocketHub maneja todas las conexiones WebSocket y las rooms
type WebSocketHub struct {
	Rooms map[string]map[*Client]bool

	Register   chan *Client
	Unregister chan *Client
	Broadcast  chan *BroadcastMessage

	mu sync.RWMutex
}

// BroadcastMessage contiene el mensaje y el nombre de la room objetivo
type BroadcastMessage struct {
	RoomName string
	Message  []byte
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// NewWebSocketHub crea un nuevo hub con la room de informes ya creada
func NewWebSocketHub() *WebSocketHub {
	return &WebSocketHub{
		Rooms:      map[string]map[*Client]bool{ROOM_INFORMES: {}},
		Register:   make(chan *Client, 10),
		Unregister: make(chan *Client, 10),
		Broadcast:  make(chan *BroadcastMessage, 100),
	}
}

// Run inicia el hub de WebSocket (debe ejecutarse en goroutine)
func (h *WebSocketHub) Run() {
	log.Println("🔌 WebSocket Hub iniciado")

	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if h.Rooms[client.RoomName] == nil {
				h.Rooms[client.RoomName] = make(map[*Client]bool)
			}
			h.Rooms[client.RoomName][client] = true
			total := len(h.Rooms[client.RoomName])
			h.mu.Unlock()
			log.Printf("✅ Cliente %s conectado a room %s (Total: %d)", client.ID, client.RoomName, total)

		case client := <-h.Unregister:
			h.mu.Lock()
			if clients, ok := h.Rooms[client.RoomName]; ok {
				if _, exists := clients[client]; exists {
					delete(clients, client)
					close(client.Send)
					log.Printf("❌ Cliente %s desconectado de room %s (Restantes: %d)",
						client.ID, client.RoomName, len(clients))
				}
			}
			h.mu.Unlock()

		case message := <-h.Broadcast:
			h.mu.RLock()
			clients := make([]*Client, 0, len(h.Rooms[message.RoomName]))
			for client := range h.Rooms[message.RoomName] {
				clients = append(clients, client)
			}
			h.mu.RUnlock()

			sentCount := 0
			for _, client := range clients {
				select {
				case client.Send <- message.Message:
					sentCount++
				default:
					log.Printf("⚠️  Canal lleno para cliente %s, desconectando", client.ID)
					go func(c *Client) { h.Unregister <- c }(client)
				}
			}

			if sentCount > 0 {
				log.Printf("📤 Mensaje enviado a %d cliente(s) en room %s", sentCount, message.RoomName)
			}
		}
	}
}

// NotifyInformeActualizado avisa a los navegadores que el informe vigente cambió
func (h *WebSocketHub) NotifyInformeActualizado(data InformeActualizadoData) {
	h.sendMessageToRoom(ROOM_INFORMES, WebSocketMessage{
		Type:      MSG_INFORME_ACTUALIZADO,
		Timestamp: time.Now().Format(time.RFC3339),
		Data:      data,
	})
}

// NotifyRefrescoEstado avisa el cambio de estado de la actualización automática
func (h *WebSocketHub) NotifyRefrescoEstado(activo bool, grafico string) {
	h.sendMessageToRoom(ROOM_INFORMES, WebSocketMessage{
		Type:      MSG_REFRESCO_ESTADO,
		Timestamp: time.Now().Format(time.RFC3339),
		Data:      gin.H{"activo": activo, "grafico": grafico},
	})
}

func (h *WebSocketHub) sendMessageToRoom(roomName string, message WebSocketMessage) {
	jsonData, err := json.Marshal(message)
	if err != nil {
		log.Printf("❌ Error al serializar mensaje WebSocket: %v", err)
		return
	}

	select {
	case h.Broadcast <- &BroadcastMessage{RoomName: roomName, Message: jsonData}:
		log.Printf("📡 [WS] %s → room %s", message.Type, roomName)
	default:
		log.Printf("⚠️  [WS] Cola de broadcast llena, mensaje %s descartado", message.Type)
	}
}

// GetRoomStats retorna estadísticas de las rooms
func (h *WebSocketHub) GetRoomStats() map[string]int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	stats := make(map[string]int)
	for roomName, clients := range h.Rooms {
		stats[roomName] = len(clients)
	}
	return stats
}

// readPump lee mensajes del cliente WebSocket
func (c *Client) readPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("⚠️  Error de lectura WebSocket: %v", err)
			}
			break
		}
	}
}

// writePump escribe mensajes al cliente WebSocket
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// HandleWebSocketConnection maneja una nueva conexión WebSocket
func HandleWebSocketConnection(hub *WebSocketHub) gin.HandlerFunc {
	return func(c *gin.Context) {
		roomName := c.Param("room")
		if roomName != ROOM_INFORMES {
			ValidationError(c, "room", "room inválida, se esperaba: "+ROOM_INFORMES)
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("❌ Error al hacer upgrade WebSocket: %v", err)
			return
		}

		client := &Client{
			ID:       uuid.NewString(),
			Conn:     conn,
			RoomName: roomName,
			Send:     make(chan []byte, 256),
			Hub:      hub,
		}
		client.Hub.Register <- client

		go client.writePump()
		go client.readPump()

		log.Printf("🔌 Cliente WebSocket conectado: %s (%s) → %s", client.ID, c.ClientIP(), roomName)
	}
}

// SetupWebSocketRoutes configura las rutas de WebSocket en el router
func SetupWebSocketRoutes(router *gin.Engine, hub *WebSocketHub) {
	// ws://host/ws/informes
	router.GET("/ws/:room", func(c *gin.Context) {
		if c.Param("room") == "stats" {
			stats := hub.GetRoomStats()
			total := 0
			for _, count := range stats {
				total += count
			}
			c.JSON(http.StatusOK, gin.H{
				"rooms":         stats,
				"total_rooms":   len(stats),
				"total_clients": total,
			})
			return
		}
		HandleWebSocketConnection(hub)(c)
	})
}
