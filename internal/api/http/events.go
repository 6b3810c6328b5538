package http

import (
	"log"
	"net/http"

	"notehub/internal/converter"
	"notehub/internal/service/notes"

	"github.com/gorilla/websocket"
)

// EventHandler отдает поток событий изменения хранилища по websocket
type EventHandler struct {
	events   *notes.EventService
	upgrader websocket.Upgrader
}

// NewEventHandler создает новый экземпляр websocket хэндлера событий
func NewEventHandler(events *notes.EventService) *EventHandler {
	return &EventHandler{
		events: events,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Проверка Origin выполняется CORS middleware уровнем выше
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Register регистрирует websocket маршрут на переданном mux
func (h *EventHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/events", h.serveEvents)
}

// eventDTO - JSON представление события для websocket клиентов
type eventDTO struct {
	Type     string             `json:"type"`
	Note     *converter.NoteDTO `json:"note,omitempty"`
	Category string             `json:"category,omitempty"`
}

// serveEvents апгрейдит соединение до websocket, подписывается на события
// хранилища и транслирует их клиенту до закрытия соединения
func (h *EventHandler) serveEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] Upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ch := h.events.Subscribe()
	defer h.events.Unsubscribe(ch)

	// Горутина чтения: клиент ничего не присылает, но только чтение
	// замечает закрытие соединения с его стороны
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	log.Printf("[WS] Event subscriber connected: %s", r.RemoteAddr)

	for {
		select {
		case <-done:
			log.Printf("[WS] Event subscriber disconnected: %s", r.RemoteAddr)
			return
		case <-r.Context().Done():
			return
		case event := <-ch:
			dto := eventDTO{Type: string(event.Type), Category: event.Category}
			if event.Note.ID != "" {
				note := converter.ModelToDTO(event.Note)
				dto.Note = &note
			}
			if err := conn.WriteJSON(dto); err != nil {
				log.Printf("[WS] Write to %s failed: %v", r.RemoteAddr, err)
				return
			}
		}
	}
}
