package main

import (
	"log"
	"net/url"
	"os"
	"os/signal"

	"github.com/gorilla/websocket"
)

// eventDTO - JSON представление события изменения хранилища
type eventDTO struct {
	Type     string   `json:"type"`
	Note     *noteDTO `json:"note,omitempty"`
	Category string   `json:"category,omitempty"`
}

// subscribeToEvents подключается к websocket потоку событий
// и печатает события до прерывания (Ctrl+C)
func subscribeToEvents(address string) {
	u := url.URL{Scheme: "ws", Host: address, Path: "/v1/events"}
	log.Printf("Connecting to event stream at %s...", u.String())

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close()

	log.Println("Connected. Waiting for events (Ctrl+C to stop)...")

	// Канал прерывания для корректного закрытия соединения
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var event eventDTO
			if err := conn.ReadJSON(&event); err != nil {
				log.Printf("Read error: %v", err)
				return
			}
			switch {
			case event.Note != nil:
				log.Printf("Event: %s - %s %q [%s]", event.Type, event.Note.Emoji, event.Note.Title, event.Note.Category)
			case event.Category != "":
				log.Printf("Event: %s - active filter is now %q", event.Type, event.Category)
			default:
				log.Printf("Event: %s", event.Type)
			}
		}
	}()

	select {
	case <-done:
	case <-interrupt:
		log.Println("Interrupted, closing connection...")
		// Отправляем close frame, чтобы сервер отписал нас корректно
		err := conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		if err != nil {
			log.Printf("Close error: %v", err)
			return
		}
		<-done
	}
}
