package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"notehub/internal/model"
	"notehub/internal/repository"

	"github.com/google/uuid"
)

// ErrNoteNotFound возвращается, когда заметка не найдена
var ErrNoteNotFound = errors.New("note not found")

var _ repository.NoteRepository = (*repo)(nil)

// repo хранит заметки в map по ID плюс отдельный слайс ID,
// задающий порядок вставки (новые заметки - в начале слайса).
type repo struct {
	mu    sync.RWMutex
	order []string
	notes map[string]model.Note
}

// NewRepository создает новый экземпляр in-memory репозитория
func NewRepository() repository.NoteRepository {
	return &repo{
		notes: make(map[string]model.Note),
	}
}

// Insert вставляет новую заметку в начало коллекции
func (r *repo) Insert(ctx context.Context, note model.Note) (model.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Генерируем UUID если не передан
	if note.ID == "" {
		note.ID = uuid.New().String()
	}

	// Устанавливаем временную метку создания (после этого она не меняется)
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now()
	}

	// Новая заметка встает в начало порядка
	r.notes[note.ID] = note
	r.order = append([]string{note.ID}, r.order...)

	return note, nil
}

// GetByID возвращает заметку по её ID
func (r *repo) GetByID(ctx context.Context, id string) (model.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	note, exists := r.notes[id]
	if !exists {
		return model.Note{}, ErrNoteNotFound
	}

	return note, nil
}

// List возвращает снимок всех заметок в порядке вставки (новые - первыми)
func (r *repo) List(ctx context.Context) ([]model.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	notes := make([]model.Note, 0, len(r.order))
	for _, id := range r.order {
		notes = append(notes, r.notes[id])
	}

	return notes, nil
}

// Update заменяет существующую заметку, позиция в порядке вставки не меняется
func (r *repo) Update(ctx context.Context, note model.Note) (model.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.notes[note.ID]
	if !exists {
		return model.Note{}, ErrNoteNotFound
	}

	// CreatedAt неизменяем: переносим из существующей записи
	note.CreatedAt = existing.CreatedAt
	r.notes[note.ID] = note

	return note, nil
}

// Delete удаляет заметку по ID
func (r *repo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.notes[id]; !exists {
		return ErrNoteNotFound
	}

	delete(r.notes, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	return nil
}

// Replace заменяет всю коллекцию переданным списком.
// Заметкам без ID или CreatedAt значения присваиваются здесь.
func (r *repo) Replace(ctx context.Context, notes []model.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order := make([]string, 0, len(notes))
	byID := make(map[string]model.Note, len(notes))
	for _, note := range notes {
		if note.ID == "" {
			note.ID = uuid.New().String()
		}
		if note.CreatedAt.IsZero() {
			note.CreatedAt = time.Now()
		}
		if _, dup := byID[note.ID]; dup {
			continue // Дубликаты ID пропускаем, первая запись выигрывает
		}
		order = append(order, note.ID)
		byID[note.ID] = note
	}

	r.order = order
	r.notes = byID

	return nil
}
