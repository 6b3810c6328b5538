package notes

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"notehub/internal/model"
	"notehub/internal/repository"
	svc "notehub/internal/service"
)

var _ svc.NoteStore = (*store)(nil)

// store - единственный владелец коллекции заметок, активного фильтра
// и кэша отфильтрованного представления. Мьютекс store сериализует
// мутации вместе с инвалидацией кэша: ни одна операция не наблюдает
// частично примененное состояние.
type store struct {
	mu             sync.Mutex
	noteRepository repository.NoteRepository
	catalog        *model.Catalog
	events         *EventService

	active     string       // Активный фильтр: model.CategoryAll или категория из каталога
	cache      []model.Note // Кэш отфильтрованного представления
	cacheValid bool         // false после любой мутации или смены фильтра
}

// NewNoteStore создает новый экземпляр хранилища заметок.
// events может быть nil, тогда уведомления никому не отправляются.
func NewNoteStore(noteRepository repository.NoteRepository, catalog *model.Catalog, events *EventService) svc.NoteStore {
	if catalog == nil {
		catalog = model.DefaultCatalog()
	}
	if events == nil {
		events = NewEventService()
	}
	return &store{
		noteRepository: noteRepository,
		catalog:        catalog,
		events:         events,
		active:         model.CategoryAll,
	}
}

// Create создает новую заметку и вставляет её в начало коллекции
func (s *store) Create(ctx context.Context, title, body, category, emoji string) (model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.createLocked(ctx, title, body, category, emoji)
}

// createLocked - общий путь создания для Create и Duplicate.
// Вызывается только под s.mu.
func (s *store) createLocked(ctx context.Context, title, body, category, emoji string) (model.Note, error) {
	// Валидация: trim, затем проверка ограничений длины
	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)
	category = strings.TrimSpace(category)

	if err := model.ValidateTitle(title); err != nil {
		return model.Note{}, err
	}
	if err := model.ValidateBody(body); err != nil {
		return model.Note{}, err
	}
	if !s.catalog.Contains(category) {
		return model.Note{}, &model.ValidationError{Field: "category", Reason: "unknown category: " + category}
	}
	// Пустой emoji заменяем глифом категории по умолчанию
	if emoji == "" {
		emoji = s.catalog.DefaultEmoji(category)
	}

	note := model.Note{
		Title:    title,
		Body:     body,
		Category: category,
		Emoji:    emoji,
	}

	// Репозиторий генерирует ID и CreatedAt и вставляет заметку в начало
	created, err := s.noteRepository.Insert(ctx, note)
	if err != nil {
		return model.Note{}, err
	}

	// Политика UX: если активен фильтр другой категории, переключаем его
	// на категорию новой заметки, чтобы она была сразу видна
	if s.active != model.CategoryAll && s.active != created.Category {
		s.active = created.Category
	}

	s.cacheValid = false
	s.events.Publish(ChangeEvent{Type: EventNoteCreated, Note: created})

	return created, nil
}

// Get возвращает заметку по её ID
func (s *store) Get(ctx context.Context, id string) (model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.noteRepository.GetByID(ctx, id)
}

// Update заменяет заданные поля заметки. Непереданные поля сохраняют
// прежние значения; ID, CreatedAt и позиция в коллекции не меняются.
func (s *store) Update(ctx context.Context, id string, params svc.UpdateParams) (model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Получаем существующую заметку
	existing, err := s.noteRepository.GetByID(ctx, id)
	if err != nil {
		return model.Note{}, err
	}

	// Каждое переданное поле валидируется теми же правилами, что и в Create.
	// Ошибка валидации оставляет коллекцию нетронутой: репозиторий
	// не вызывается, пока все поля не проверены.
	if params.Title != nil {
		title := strings.TrimSpace(*params.Title)
		if err := model.ValidateTitle(title); err != nil {
			return model.Note{}, err
		}
		existing.Title = title
	}
	if params.Body != nil {
		body := strings.TrimSpace(*params.Body)
		if err := model.ValidateBody(body); err != nil {
			return model.Note{}, err
		}
		existing.Body = body
	}
	if params.Category != nil {
		category := strings.TrimSpace(*params.Category)
		if !s.catalog.Contains(category) {
			return model.Note{}, &model.ValidationError{Field: "category", Reason: "unknown category: " + category}
		}
		existing.Category = category
	}
	if params.Emoji != nil {
		if *params.Emoji == "" {
			return model.Note{}, &model.ValidationError{Field: "emoji", Reason: "emoji cannot be empty"}
		}
		existing.Emoji = *params.Emoji
	}

	// Заменяем заметку целиком, позиция в порядке вставки сохраняется
	updated, err := s.noteRepository.Update(ctx, existing)
	if err != nil {
		return model.Note{}, err
	}

	s.cacheValid = false
	s.events.Publish(ChangeEvent{Type: EventNoteUpdated, Note: updated})

	return updated, nil
}

// Delete удаляет заметку по ID
func (s *store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Читаем заметку заранее, чтобы отдать её подписчикам в событии
	note, err := s.noteRepository.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.noteRepository.Delete(ctx, id); err != nil {
		return err
	}

	s.cacheValid = false
	s.events.Publish(ChangeEvent{Type: EventNoteDeleted, Note: note})

	return nil
}

// Duplicate создает копию заметки с заголовком "<title> (Copy)".
// Проходит через общий путь создания, включая политику переключения фильтра.
func (s *store) Duplicate(ctx context.Context, id string) (model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	source, err := s.noteRepository.GetByID(ctx, id)
	if err != nil {
		return model.Note{}, err
	}

	return s.createLocked(ctx, source.Title+" (Copy)", source.Body, source.Category, source.Emoji)
}

// SelectCategory устанавливает активный фильтр категории.
// Повторный выбор текущей категории - no-op: кэш не сбрасывается,
// уведомление не отправляется.
func (s *store) SelectCategory(ctx context.Context, category string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	category = strings.TrimSpace(category)
	if category == s.active {
		return nil
	}
	if category != model.CategoryAll && !s.catalog.Contains(category) {
		return &model.ValidationError{Field: "category", Reason: "unknown category: " + category}
	}

	s.active = category
	s.cacheValid = false
	s.events.Publish(ChangeEvent{Type: EventFilterChanged, Category: category})

	return nil
}

// ActiveCategory возвращает текущий активный фильтр
func (s *store) ActiveCategory() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.active
}

// FilteredNotes возвращает заметки активной категории, новые - первыми
func (s *store) FilteredNotes(ctx context.Context) ([]model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.filteredLocked(ctx)
}

// filteredLocked отдает кэш, если он валиден, иначе пересчитывает
// представление из репозитория. Вызывается только под s.mu.
func (s *store) filteredLocked(ctx context.Context) ([]model.Note, error) {
	if s.cacheValid {
		return s.cache, nil
	}

	all, err := s.noteRepository.List(ctx)
	if err != nil {
		return nil, err
	}

	if s.active == model.CategoryAll {
		s.cache = all
	} else {
		filtered := make([]model.Note, 0, len(all))
		for _, note := range all {
			if note.Category == s.active {
				filtered = append(filtered, note)
			}
		}
		s.cache = filtered
	}
	s.cacheValid = true

	return s.cache, nil
}

// Search ищет подстроку без учета регистра в title, body и category
// среди отфильтрованных заметок. Поиск ничего не мутирует: кэш и фильтр
// остаются нетронутыми, повторный вызов дешев и возвращает тот же результат.
func (s *store) Search(ctx context.Context, query string) ([]model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	base, err := s.filteredLocked(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return base, nil
	}

	matched := make([]model.Note, 0, len(base))
	for _, note := range base {
		if strings.Contains(strings.ToLower(note.Title), q) ||
			strings.Contains(strings.ToLower(note.Body), q) ||
			strings.Contains(strings.ToLower(note.Category), q) {
			matched = append(matched, note)
		}
	}

	return matched, nil
}

// AllNotes возвращает все заметки независимо от активного фильтра
func (s *store) AllNotes(ctx context.Context) ([]model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.noteRepository.List(ctx)
}

// Categories возвращает закрытый набор категорий в порядке объявления
func (s *store) Categories() []model.Category {
	return s.catalog.Categories()
}

// CategoryStats возвращает количество заметок по категориям.
// Ключ "All" содержит общее число заметок; категории без заметок
// присутствуют в ответе с нулевым счетчиком.
func (s *store) CategoryStats(ctx context.Context) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.noteRepository.List(ctx)
	if err != nil {
		return nil, err
	}

	stats := make(map[string]int, len(s.catalog.Categories())+1)
	stats[model.CategoryAll] = len(all)
	for _, c := range s.catalog.Categories() {
		stats[c.Name] = 0
	}
	for _, note := range all {
		stats[note.Category]++
	}

	return stats, nil
}

// ExportAll возвращает все заметки для внешнего сохранения
func (s *store) ExportAll(ctx context.Context) ([]model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.noteRepository.List(ctx)
}

// ImportAll добавляет заметки к коллекции и пересортировывает её
// по CreatedAt (новые - первыми). Каждая входящая заметка проходит
// ту же валидацию, что и при создании; первая невалидная заметка
// прерывает импорт до каких-либо изменений коллекции.
func (s *store) ImportAll(ctx context.Context, incoming []model.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range incoming {
		note := &incoming[i]
		note.Title = strings.TrimSpace(note.Title)
		note.Body = strings.TrimSpace(note.Body)
		note.Category = strings.TrimSpace(note.Category)
		if !s.catalog.Contains(note.Category) {
			return &model.ValidationError{Field: "category", Reason: "unknown category: " + note.Category}
		}
		if note.Emoji == "" {
			note.Emoji = s.catalog.DefaultEmoji(note.Category)
		}
		if err := note.Validate(); err != nil {
			return err
		}
		// Метку времени присваиваем до сортировки, иначе заметка
		// без CreatedAt осела бы в конце списка
		if note.CreatedAt.IsZero() {
			note.CreatedAt = time.Now()
		}
	}

	existing, err := s.noteRepository.List(ctx)
	if err != nil {
		return err
	}

	merged := make([]model.Note, 0, len(existing)+len(incoming))
	merged = append(merged, existing...)
	merged = append(merged, incoming...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})

	if err := s.noteRepository.Replace(ctx, merged); err != nil {
		return err
	}

	s.cacheValid = false
	s.events.Publish(ChangeEvent{Type: EventNotesImported})

	return nil
}
