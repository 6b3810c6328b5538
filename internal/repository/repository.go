package repository

import (
	"context"

	"notehub/internal/model"
)

// NoteRepository интерфейс для работы с упорядоченной коллекцией заметок.
// Коллекция хранит заметки в порядке вставки, новые - в начале.
type NoteRepository interface {
	// Insert вставляет новую заметку в начало коллекции.
	// Генерирует ID и CreatedAt, если они не заданы.
	Insert(ctx context.Context, note model.Note) (model.Note, error)

	// GetByID возвращает заметку по её ID
	GetByID(ctx context.Context, id string) (model.Note, error)

	// List возвращает снимок всех заметок, новые - первыми
	List(ctx context.Context) ([]model.Note, error)

	// Update заменяет существующую заметку, сохраняя её позицию в коллекции
	Update(ctx context.Context, note model.Note) (model.Note, error)

	// Delete удаляет заметку по ID
	Delete(ctx context.Context, id string) error

	// Replace заменяет всю коллекцию переданным списком (порядок сохраняется)
	Replace(ctx context.Context, notes []model.Note) error
}
