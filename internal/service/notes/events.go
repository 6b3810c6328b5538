package notes

import (
	"sync"

	"notehub/internal/model"
)

// EventType тип события изменения состояния хранилища
type EventType string

const (
	EventNoteCreated   EventType = "note_created"
	EventNoteUpdated   EventType = "note_updated"
	EventNoteDeleted   EventType = "note_deleted"
	EventFilterChanged EventType = "filter_changed"
	EventNotesImported EventType = "notes_imported"
)

// ChangeEvent описывает одно изменение состояния хранилища.
// Уведомление отправляется синхронно внутри мутирующей операции:
// к моменту получения события состояние уже консистентно,
// подписчик перечитывает его через аксессоры хранилища.
type ChangeEvent struct {
	Type     EventType  // Тип изменения
	Note     model.Note // Затронутая заметка (для событий заметок)
	Category string     // Новый активный фильтр (для filter_changed)
}

// EventService управляет подписчиками на события изменения хранилища
type EventService struct {
	subscribers map[chan ChangeEvent]bool
	mu          sync.RWMutex
}

// NewEventService создает новый экземпляр EventService
func NewEventService() *EventService {
	return &EventService{
		subscribers: make(map[chan ChangeEvent]bool),
	}
}

// Subscribe добавляет нового подписчика и возвращает канал для получения событий
func (s *EventService) Subscribe() chan ChangeEvent {
	ch := make(chan ChangeEvent, 10) // Буферизованный канал для защиты от backpressure
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers[ch] = true
	return ch
}

// Unsubscribe удаляет подписчика и закрывает его канал
func (s *EventService) Unsubscribe(ch chan ChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subscribers[ch]; ok {
		close(ch)
		delete(s.subscribers, ch)
	}
}

// Publish отправляет событие всем подписчикам.
// Если канал подписчика переполнен, событие пропускается (защита от backpressure).
func (s *EventService) Publish(event ChangeEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for ch := range s.subscribers {
		select {
		case ch <- event:
			// Событие успешно отправлено
		default:
			// Канал переполнен, пропускаем
		}
	}
}
