package notes

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"notehub/internal/model"
	"notehub/internal/repository/memory"
	svc "notehub/internal/service"
)

// newTestStore создает хранилище на реальном in-memory репозитории
// со стандартным каталогом категорий
func newTestStore() (svc.NoteStore, *EventService) {
	events := NewEventService()
	store := NewNoteStore(memory.NewRepository(), model.DefaultCatalog(), events)
	return store, events
}

// drainEvents снимает все накопившиеся события с канала подписчика
func drainEvents(ch chan ChangeEvent) []ChangeEvent {
	var events []ChangeEvent
	for {
		select {
		case e := <-ch:
			events = append(events, e)
		default:
			return events
		}
	}
}

func mustCreate(t *testing.T, store svc.NoteStore, title, body, category string) model.Note {
	t.Helper()
	note, err := store.Create(context.Background(), title, body, category, "")
	if err != nil {
		t.Fatalf("Create(%q) failed: %v", title, err)
	}
	return note
}

func TestStore_Create_Success(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	note, err := store.Create(ctx, "  Trip Plan  ", "  Visit Kyoto and Osaka next spring  ", "Travel", "✈️")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	// Поля триммируются, ID и CreatedAt проставлены
	if note.Title != "Trip Plan" {
		t.Errorf("Expected trimmed title, got %q", note.Title)
	}
	if note.Body != "Visit Kyoto and Osaka next spring" {
		t.Errorf("Expected trimmed body, got %q", note.Body)
	}
	if note.ID == "" {
		t.Error("Expected note to have ID")
	}
	if note.CreatedAt.IsZero() {
		t.Error("Expected note to have CreatedAt")
	}
	if note.Emoji != "✈️" {
		t.Errorf("Expected emoji to be kept, got %q", note.Emoji)
	}
}

func TestStore_Create_DefaultEmoji(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	// Пустой emoji заменяется глифом категории
	note, err := store.Create(ctx, "Standup", "Discuss release schedule", "Work", "")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if note.Emoji != "💼" {
		t.Errorf("Expected default Work emoji, got %q", note.Emoji)
	}
}

func TestStore_Create_ValidationBoundaries(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	validBody := strings.Repeat("b", 10)

	tests := []struct {
		name      string
		title     string
		body      string
		wantErr   bool
		wantField string
	}{
		{"title length 2", "ab", validBody, true, "title"},
		{"title length 3", "abc", validBody, false, ""},
		{"title length 100", strings.Repeat("t", 100), validBody, false, ""},
		{"title length 101", strings.Repeat("t", 101), validBody, true, "title"},
		{"body length 9", "Valid Title", strings.Repeat("b", 9), true, "body"},
		{"body length 10", "Valid Title", validBody, false, ""},
		{"empty title", "", validBody, true, "title"},
		{"empty body", "Valid Title", "", true, "body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Create(ctx, tt.title, tt.body, "Work", "")
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("Expected no error, got: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Expected validation error")
			}
			var validationErr *model.ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("Expected *model.ValidationError, got: %T", err)
			}
			if validationErr.Field != tt.wantField {
				t.Errorf("Expected field %q, got %q", tt.wantField, validationErr.Field)
			}
		})
	}
}

func TestStore_Create_UnknownCategory(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	_, err := store.Create(ctx, "Valid Title", "Valid body text here", "Cooking", "")
	var validationErr *model.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("Expected *model.ValidationError, got: %v", err)
	}
	if validationErr.Field != "category" {
		t.Errorf("Expected field 'category', got %q", validationErr.Field)
	}
}

func TestStore_Create_FailureLeavesCollectionUntouched(t *testing.T) {
	ctx := context.Background()
	store, events := newTestStore()
	ch := events.Subscribe()
	defer events.Unsubscribe(ch)

	mustCreate(t, store, "Existing", "Existing note body", "Work")
	drainEvents(ch)

	// Невалидное создание не меняет коллекцию и не шлет уведомлений
	if _, err := store.Create(ctx, "ab", "too short", "Work", ""); err == nil {
		t.Fatal("Expected validation error")
	}

	notes, _ := store.AllNotes(ctx)
	if len(notes) != 1 {
		t.Errorf("Expected collection unchanged, got %d notes", len(notes))
	}
	if got := drainEvents(ch); len(got) != 0 {
		t.Errorf("Expected no events after failed create, got %d", len(got))
	}
}

func TestStore_NewestFirstOrdering(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	// Создаем A, затем B, затем C - представление должно быть [C, B, A]
	a := mustCreate(t, store, "Note A", "body of note A", "Work")
	b := mustCreate(t, store, "Note B", "body of note B", "Work")
	c := mustCreate(t, store, "Note C", "body of note C", "Work")

	notes, err := store.FilteredNotes(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(notes) != 3 {
		t.Fatalf("Expected 3 notes, got %d", len(notes))
	}
	for i, want := range []string{c.ID, b.ID, a.ID} {
		if notes[i].ID != want {
			t.Errorf("Position %d: expected %s, got %s", i, want, notes[i].ID)
		}
	}
}

func TestStore_FilterCorrectness(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	// Заметки с категориями {Work, Personal, Work}
	w1 := mustCreate(t, store, "Work One", "first work note", "Work")
	mustCreate(t, store, "Personal One", "personal note body", "Personal")
	w2 := mustCreate(t, store, "Work Two", "second work note", "Work")

	if err := store.SelectCategory(ctx, "Work"); err != nil {
		t.Fatalf("SelectCategory failed: %v", err)
	}

	notes, _ := store.FilteredNotes(ctx)
	if len(notes) != 2 {
		t.Fatalf("Expected 2 Work notes, got %d", len(notes))
	}
	if notes[0].ID != w2.ID || notes[1].ID != w1.ID {
		t.Errorf("Expected [Work Two, Work One], got [%s, %s]", notes[0].Title, notes[1].Title)
	}

	if err := store.SelectCategory(ctx, model.CategoryAll); err != nil {
		t.Fatalf("SelectCategory failed: %v", err)
	}
	notes, _ = store.FilteredNotes(ctx)
	if len(notes) != 3 {
		t.Errorf("Expected all 3 notes under All, got %d", len(notes))
	}
}

func TestStore_CacheInvalidation(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	mustCreate(t, store, "First Note", "body of first note", "Work")

	// Прогреваем кэш
	before, _ := store.FilteredNotes(ctx)
	if len(before) != 1 {
		t.Fatalf("Expected 1 note, got %d", len(before))
	}

	// Мутация под активный фильтр обязана попасть в следующее чтение
	created := mustCreate(t, store, "Second Note", "body of second note", "Work")

	after, _ := store.FilteredNotes(ctx)
	if len(after) != 2 {
		t.Fatalf("Expected 2 notes after create, got %d (stale cache)", len(after))
	}
	if after[0].ID != created.ID {
		t.Errorf("Expected new note first, got %s", after[0].Title)
	}

	// Удаление тоже инвалидирует кэш
	if err := store.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	final, _ := store.FilteredNotes(ctx)
	if len(final) != 1 {
		t.Errorf("Expected 1 note after delete, got %d (stale cache)", len(final))
	}
}

func TestStore_SelectCategory_NoOpReselection(t *testing.T) {
	ctx := context.Background()
	store, events := newTestStore()
	ch := events.Subscribe()
	defer events.Unsubscribe(ch)

	if err := store.SelectCategory(ctx, "Work"); err != nil {
		t.Fatalf("SelectCategory failed: %v", err)
	}
	if got := drainEvents(ch); len(got) != 1 {
		t.Fatalf("Expected 1 filter_changed event, got %d", len(got))
	}

	// Повторный выбор той же категории - no-op без уведомления
	if err := store.SelectCategory(ctx, "Work"); err != nil {
		t.Fatalf("Reselection failed: %v", err)
	}
	if got := drainEvents(ch); len(got) != 0 {
		t.Errorf("Expected no events on no-op reselection, got %d", len(got))
	}
}

func TestStore_SelectCategory_Unknown(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	err := store.SelectCategory(ctx, "Cooking")
	var validationErr *model.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("Expected *model.ValidationError, got: %v", err)
	}
}

func TestStore_AutoSwitchFilterOnCreate(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	mustCreate(t, store, "Work Note", "body of work note", "Work")
	if err := store.SelectCategory(ctx, "Work"); err != nil {
		t.Fatalf("SelectCategory failed: %v", err)
	}

	// Создание заметки другой категории при активном фильтре Work
	// переключает фильтр на категорию новой заметки
	created := mustCreate(t, store, "Trip Plan", "Visit Kyoto and Osaka", "Travel")

	if got := store.ActiveCategory(); got != "Travel" {
		t.Errorf("Expected active filter Travel, got %q", got)
	}
	notes, _ := store.FilteredNotes(ctx)
	if len(notes) != 1 || notes[0].ID != created.ID {
		t.Errorf("Expected just-created note to be visible, got %+v", notes)
	}

	// При фильтре All переключения не происходит
	if err := store.SelectCategory(ctx, model.CategoryAll); err != nil {
		t.Fatalf("SelectCategory failed: %v", err)
	}
	mustCreate(t, store, "Health Note", "body of health note", "Health")
	if got := store.ActiveCategory(); got != model.CategoryAll {
		t.Errorf("Expected filter to stay All, got %q", got)
	}
}

func TestStore_Update_PreservesIdentityAndPosition(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	a := mustCreate(t, store, "Note A", "body of note A", "Work")
	b := mustCreate(t, store, "Note B", "body of note B", "Work")
	mustCreate(t, store, "Note C", "body of note C", "Work")

	// Обновляем только body у заметки в середине порядка
	newBody := "completely new body text"
	updated, err := store.Update(ctx, b.ID, svc.UpdateParams{Body: &newBody})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if updated.ID != b.ID {
		t.Errorf("Expected ID unchanged, got %s", updated.ID)
	}
	if updated.Title != b.Title {
		t.Errorf("Expected title unchanged, got %q", updated.Title)
	}
	if updated.Category != b.Category {
		t.Errorf("Expected category unchanged, got %q", updated.Category)
	}
	if !updated.CreatedAt.Equal(b.CreatedAt) {
		t.Error("Expected CreatedAt unchanged")
	}
	if updated.Body != newBody {
		t.Errorf("Expected new body, got %q", updated.Body)
	}

	// Позиция в порядке вставки не меняется
	notes, _ := store.AllNotes(ctx)
	if notes[1].ID != b.ID {
		t.Errorf("Expected updated note to stay at position 1, got %s", notes[1].Title)
	}
	if notes[2].ID != a.ID {
		t.Errorf("Expected A to stay last, got %s", notes[2].Title)
	}
}

func TestStore_Update_ValidatesProvidedFields(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	note := mustCreate(t, store, "Note A", "body of note A", "Work")

	shortTitle := "ab"
	_, err := store.Update(ctx, note.ID, svc.UpdateParams{Title: &shortTitle})
	var validationErr *model.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("Expected *model.ValidationError, got: %v", err)
	}

	// Неудачное обновление не меняет заметку
	got, _ := store.Get(ctx, note.ID)
	if got.Title != "Note A" {
		t.Errorf("Expected title unchanged after failed update, got %q", got.Title)
	}
}

func TestStore_Update_NotFound(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	title := "New Title"
	_, err := store.Update(ctx, "missing-id", svc.UpdateParams{Title: &title})
	if !errors.Is(err, memory.ErrNoteNotFound) {
		t.Errorf("Expected ErrNoteNotFound, got: %v", err)
	}
}

func TestStore_DeleteThenLookup(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	note := mustCreate(t, store, "Doomed Note", "body of doomed note", "Work")

	if err := store.Delete(ctx, note.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	// Последующие Get/Update/Delete по тому же ID - not found
	if _, err := store.Get(ctx, note.ID); !errors.Is(err, memory.ErrNoteNotFound) {
		t.Errorf("Expected ErrNoteNotFound on Get, got: %v", err)
	}
	title := "Updated Title"
	if _, err := store.Update(ctx, note.ID, svc.UpdateParams{Title: &title}); !errors.Is(err, memory.ErrNoteNotFound) {
		t.Errorf("Expected ErrNoteNotFound on Update, got: %v", err)
	}
	if err := store.Delete(ctx, note.ID); !errors.Is(err, memory.ErrNoteNotFound) {
		t.Errorf("Expected ErrNoteNotFound on second Delete, got: %v", err)
	}
}

func TestStore_Search(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	kyoto := mustCreate(t, store, "Trip Plan", "Visit Kyoto and Osaka next spring", "Travel")
	mustCreate(t, store, "Groceries", "Buy milk, bread and eggs", "Personal")

	if err := store.SelectCategory(ctx, model.CategoryAll); err != nil {
		t.Fatalf("SelectCategory failed: %v", err)
	}

	// Пустой запрос возвращает отфильтрованное представление как есть
	filtered, _ := store.FilteredNotes(ctx)
	empty, err := store.Search(ctx, "")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(empty) != len(filtered) {
		t.Errorf("Expected empty query to equal filtered view, got %d vs %d", len(empty), len(filtered))
	}

	// Поиск без учета регистра по title/body/category
	for _, q := range []string{"KYOTO", "kyoto", "trip", "travel"} {
		found, err := store.Search(ctx, q)
		if err != nil {
			t.Fatalf("Search(%q) failed: %v", q, err)
		}
		if len(found) != 1 || found[0].ID != kyoto.ID {
			t.Errorf("Search(%q): expected exactly the Kyoto note, got %d results", q, len(found))
		}
	}

	// Идемпотентность: повторный вызов без мутаций дает тот же результат
	first, _ := store.Search(ctx, "kyoto")
	second, _ := store.Search(ctx, "kyoto")
	if len(first) != len(second) || first[0].ID != second[0].ID {
		t.Error("Expected repeated search to return identical results")
	}

	// Поиск уважает активный фильтр
	if err := store.SelectCategory(ctx, "Personal"); err != nil {
		t.Fatalf("SelectCategory failed: %v", err)
	}
	none, _ := store.Search(ctx, "kyoto")
	if len(none) != 0 {
		t.Errorf("Expected no Kyoto matches under Personal filter, got %d", len(none))
	}
}

func TestStore_Duplicate(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	src := mustCreate(t, store, "Trip Plan", "Visit Kyoto and Osaka next spring", "Travel")

	dup, err := store.Duplicate(ctx, src.ID)
	if err != nil {
		t.Fatalf("Duplicate failed: %v", err)
	}

	if dup.Title != "Trip Plan (Copy)" {
		t.Errorf("Expected title with (Copy) suffix, got %q", dup.Title)
	}
	if dup.Body != src.Body || dup.Category != src.Category || dup.Emoji != src.Emoji {
		t.Error("Expected body/category/emoji to match the source")
	}
	if dup.ID == src.ID {
		t.Error("Expected duplicate to get its own ID")
	}

	// Копия - новая заметка, встает в начало
	notes, _ := store.AllNotes(ctx)
	if len(notes) != 2 || notes[0].ID != dup.ID {
		t.Errorf("Expected duplicate first, got %+v", notes)
	}
}

func TestStore_Duplicate_NotFound(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	if _, err := store.Duplicate(ctx, "missing-id"); !errors.Is(err, memory.ErrNoteNotFound) {
		t.Errorf("Expected ErrNoteNotFound, got: %v", err)
	}
}

func TestStore_CategoryStats(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	mustCreate(t, store, "Work One", "first work note", "Work")
	mustCreate(t, store, "Work Two", "second work note", "Work")
	mustCreate(t, store, "Personal One", "personal note body", "Personal")

	stats, err := store.CategoryStats(ctx)
	if err != nil {
		t.Fatalf("CategoryStats failed: %v", err)
	}

	if stats[model.CategoryAll] != 3 {
		t.Errorf("Expected All=3, got %d", stats[model.CategoryAll])
	}
	if stats["Work"] != 2 {
		t.Errorf("Expected Work=2, got %d", stats["Work"])
	}
	if stats["Personal"] != 1 {
		t.Errorf("Expected Personal=1, got %d", stats["Personal"])
	}
	// Пустые категории присутствуют с нулем
	if count, ok := stats["Health"]; !ok || count != 0 {
		t.Errorf("Expected Health=0 to be present, got %d (present=%v)", count, ok)
	}
}

func TestStore_ExportImport(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	mustCreate(t, store, "Existing", "existing note body", "Work")

	// Импортируем заметку со старой датой - после пересортировки она в конце
	older := model.Note{
		Title:     "Imported Old",
		Body:      "imported note body",
		Category:  "Personal",
		CreatedAt: time.Now().Add(-time.Hour),
	}
	if err := store.ImportAll(ctx, []model.Note{older}); err != nil {
		t.Fatalf("ImportAll failed: %v", err)
	}

	notes, _ := store.AllNotes(ctx)
	if len(notes) != 2 {
		t.Fatalf("Expected 2 notes after import, got %d", len(notes))
	}
	if notes[0].Title != "Existing" || notes[1].Title != "Imported Old" {
		t.Errorf("Expected newest-first after re-sort, got [%s, %s]", notes[0].Title, notes[1].Title)
	}
	// Импортированной заметке присвоены ID и emoji по умолчанию
	if notes[1].ID == "" || notes[1].Emoji == "" {
		t.Errorf("Expected ID and emoji to be assigned, got %+v", notes[1])
	}

	// Экспорт возвращает всю коллекцию
	exported, err := store.ExportAll(ctx)
	if err != nil {
		t.Fatalf("ExportAll failed: %v", err)
	}
	if len(exported) != 2 {
		t.Errorf("Expected 2 exported notes, got %d", len(exported))
	}
}

func TestStore_ImportAll_RejectsInvalidNote(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	mustCreate(t, store, "Existing", "existing note body", "Work")

	invalid := model.Note{Title: "ok", Body: "short", Category: "Work"}
	if err := store.ImportAll(ctx, []model.Note{invalid}); err == nil {
		t.Fatal("Expected validation error on import")
	}

	// Невалидный импорт не меняет коллекцию
	notes, _ := store.AllNotes(ctx)
	if len(notes) != 1 {
		t.Errorf("Expected collection unchanged, got %d notes", len(notes))
	}
}

func TestStore_MutationsNotify(t *testing.T) {
	ctx := context.Background()
	store, events := newTestStore()
	ch := events.Subscribe()
	defer events.Unsubscribe(ch)

	note := mustCreate(t, store, "Note A", "body of note A", "Work")
	title := "Note A v2"
	if _, err := store.Update(ctx, note.ID, svc.UpdateParams{Title: &title}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if err := store.Delete(ctx, note.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	got := drainEvents(ch)
	want := []EventType{EventNoteCreated, EventNoteUpdated, EventNoteDeleted}
	if len(got) != len(want) {
		t.Fatalf("Expected %d events, got %d", len(want), len(got))
	}
	for i, e := range got {
		if e.Type != want[i] {
			t.Errorf("Event %d: expected %s, got %s", i, want[i], e.Type)
		}
		if e.Note.ID != note.ID {
			t.Errorf("Event %d: expected note %s, got %s", i, note.ID, e.Note.ID)
		}
	}
}

func TestStore_EndToEndScenario(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	// Пустое хранилище: создаем заметку о поездке
	trip, err := store.Create(ctx, "Trip Plan", "Visit Kyoto and Osaka next spring", "Personal", "✈️")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	notes, _ := store.FilteredNotes(ctx)
	if len(notes) != 1 || notes[0].ID != trip.ID {
		t.Fatalf("Expected exactly the created note, got %+v", notes)
	}

	// Под фильтром Work представление пусто
	if err := store.SelectCategory(ctx, "Work"); err != nil {
		t.Fatalf("SelectCategory failed: %v", err)
	}
	if notes, _ := store.FilteredNotes(ctx); len(notes) != 0 {
		t.Fatalf("Expected empty view under Work, got %d", len(notes))
	}

	// Возвращаемся к All и дублируем
	if err := store.SelectCategory(ctx, model.CategoryAll); err != nil {
		t.Fatalf("SelectCategory failed: %v", err)
	}
	dup, err := store.Duplicate(ctx, trip.ID)
	if err != nil {
		t.Fatalf("Duplicate failed: %v", err)
	}

	notes, _ = store.FilteredNotes(ctx)
	if len(notes) != 2 {
		t.Fatalf("Expected 2 notes, got %d", len(notes))
	}
	if notes[0].ID != dup.ID || notes[0].Title != "Trip Plan (Copy)" {
		t.Errorf("Expected the copy first, got %q", notes[0].Title)
	}
	if notes[0].Body != trip.Body || notes[0].Category != trip.Category {
		t.Error("Expected copy to share body and category with the source")
	}
}
