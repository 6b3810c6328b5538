package service

import (
	"context"

	"notehub/internal/model"
)

// UpdateParams задает изменяемые поля заметки.
// nil-поле означает "оставить прежнее значение".
type UpdateParams struct {
	Title    *string
	Body     *string
	Category *string
	Emoji    *string
}

// NoteStore интерфейс для бизнес-логики работы с заметками:
// единственный владелец коллекции, активного фильтра категории
// и кэшированного отфильтрованного представления.
type NoteStore interface {
	// Create создает новую заметку и вставляет её в начало коллекции
	Create(ctx context.Context, title, body, category, emoji string) (model.Note, error)

	// Get возвращает заметку по её ID
	Get(ctx context.Context, id string) (model.Note, error)

	// Update заменяет заданные поля заметки, сохраняя ID, CreatedAt и позицию
	Update(ctx context.Context, id string, params UpdateParams) (model.Note, error)

	// Delete удаляет заметку по ID
	Delete(ctx context.Context, id string) error

	// Duplicate создает копию заметки с заголовком "<title> (Copy)"
	Duplicate(ctx context.Context, id string) (model.Note, error)

	// SelectCategory устанавливает активный фильтр категории.
	// Повторный выбор текущей категории - no-op без уведомления.
	SelectCategory(ctx context.Context, category string) error

	// ActiveCategory возвращает текущий активный фильтр
	ActiveCategory() string

	// FilteredNotes возвращает заметки активной категории, новые - первыми
	FilteredNotes(ctx context.Context) ([]model.Note, error)

	// Search ищет подстроку (без учета регистра) в title, body и category
	// среди отфильтрованных заметок. Пустой запрос возвращает FilteredNotes.
	Search(ctx context.Context, query string) ([]model.Note, error)

	// AllNotes возвращает все заметки независимо от фильтра
	AllNotes(ctx context.Context) ([]model.Note, error)

	// Categories возвращает закрытый набор категорий
	Categories() []model.Category

	// CategoryStats возвращает количество заметок по категориям,
	// включая "All" = общее число заметок
	CategoryStats(ctx context.Context) (map[string]int, error)

	// ExportAll возвращает все заметки для внешнего сохранения
	ExportAll(ctx context.Context) ([]model.Note, error)

	// ImportAll добавляет заметки к коллекции и пересортировывает
	// её по CreatedAt (новые - первыми)
	ImportAll(ctx context.Context, notes []model.Note) error
}
