package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"notehub/internal/converter"
	"notehub/internal/model"
	"notehub/internal/repository/memory"
	svc "notehub/internal/service"
)

// Handler реализует REST JSON API поверх хранилища заметок
type Handler struct {
	noteStore svc.NoteStore
}

// NewHandler создает новый экземпляр HTTP хэндлера
func NewHandler(noteStore svc.NoteStore) *Handler {
	return &Handler{
		noteStore: noteStore,
	}
}

// Register регистрирует маршруты API на переданном mux
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/notes", h.createNote)
	mux.HandleFunc("GET /v1/notes", h.listNotes)
	mux.HandleFunc("GET /v1/notes/all", h.listAllNotes)
	mux.HandleFunc("GET /v1/notes/{id}", h.getNote)
	mux.HandleFunc("PATCH /v1/notes/{id}", h.updateNote)
	mux.HandleFunc("DELETE /v1/notes/{id}", h.deleteNote)
	mux.HandleFunc("POST /v1/notes/{id}/duplicate", h.duplicateNote)
	mux.HandleFunc("GET /v1/filter", h.getFilter)
	mux.HandleFunc("PUT /v1/filter", h.setFilter)
	mux.HandleFunc("GET /v1/categories", h.listCategories)
	mux.HandleFunc("GET /v1/categories/stats", h.categoryStats)
	mux.HandleFunc("GET /v1/export", h.exportNotes)
	mux.HandleFunc("POST /v1/import", h.importNotes)
}

type createNoteRequest struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	Category string `json:"category"`
	Emoji    string `json:"emoji"`
}

type updateNoteRequest struct {
	Title    *string `json:"title"`
	Body     *string `json:"body"`
	Category *string `json:"category"`
	Emoji    *string `json:"emoji"`
}

type setFilterRequest struct {
	Category string `json:"category"`
}

type noteResponse struct {
	Note converter.NoteDTO `json:"note"`
}

type notesResponse struct {
	Notes []converter.NoteDTO `json:"notes"`
}

type categoryDTO struct {
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
}

// errorResponse - унифицированный формат ошибок API
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
}

// createNote создает новую заметку
func (h *Handler) createNote(w http.ResponseWriter, r *http.Request) {
	var req createNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	note, err := h.noteStore.Create(r.Context(), req.Title, req.Body, req.Category, req.Emoji)
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, noteResponse{Note: converter.ModelToDTO(note)})
}

// listNotes возвращает отфильтрованное представление.
// Параметр q выполняет поиск по подстроке среди отфильтрованных заметок.
func (h *Handler) listNotes(w http.ResponseWriter, r *http.Request) {
	var (
		notes []model.Note
		err   error
	)
	if q := r.URL.Query().Get("q"); q != "" {
		notes, err = h.noteStore.Search(r.Context(), q)
	} else {
		notes, err = h.noteStore.FilteredNotes(r.Context())
	}
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, notesResponse{Notes: converter.ModelsToDTOs(notes)})
}

// listAllNotes возвращает все заметки независимо от фильтра
func (h *Handler) listAllNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.noteStore.AllNotes(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, notesResponse{Notes: converter.ModelsToDTOs(notes)})
}

// getNote возвращает заметку по её ID
func (h *Handler) getNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.noteStore.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, noteResponse{Note: converter.ModelToDTO(note)})
}

// updateNote обновляет переданные поля заметки
func (h *Handler) updateNote(w http.ResponseWriter, r *http.Request) {
	var req updateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	params := svc.UpdateParams{
		Title:    req.Title,
		Body:     req.Body,
		Category: req.Category,
		Emoji:    req.Emoji,
	}

	note, err := h.noteStore.Update(r.Context(), r.PathValue("id"), params)
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, noteResponse{Note: converter.ModelToDTO(note)})
}

// deleteNote удаляет заметку по ID
func (h *Handler) deleteNote(w http.ResponseWriter, r *http.Request) {
	if err := h.noteStore.Delete(r.Context(), r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// duplicateNote создает копию заметки
func (h *Handler) duplicateNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.noteStore.Duplicate(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, noteResponse{Note: converter.ModelToDTO(note)})
}

// getFilter возвращает активный фильтр категории
func (h *Handler) getFilter(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, setFilterRequest{Category: h.noteStore.ActiveCategory()})
}

// setFilter устанавливает активный фильтр категории
func (h *Handler) setFilter(w http.ResponseWriter, r *http.Request) {
	var req setFilterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if err := h.noteStore.SelectCategory(r.Context(), req.Category); err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, setFilterRequest{Category: h.noteStore.ActiveCategory()})
}

// listCategories возвращает закрытый набор категорий
func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories := h.noteStore.Categories()
	dtos := make([]categoryDTO, 0, len(categories))
	for _, c := range categories {
		dtos = append(dtos, categoryDTO{Name: c.Name, Emoji: c.Emoji})
	}

	writeJSON(w, http.StatusOK, map[string][]categoryDTO{"categories": dtos})
}

// categoryStats возвращает количество заметок по категориям
func (h *Handler) categoryStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.noteStore.CategoryStats(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]map[string]int{"stats": stats})
}

// exportNotes выгружает все заметки
func (h *Handler) exportNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.noteStore.ExportAll(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, notesResponse{Notes: converter.ModelsToDTOs(notes)})
}

// importNotes добавляет заметки к коллекции
func (h *Handler) importNotes(w http.ResponseWriter, r *http.Request) {
	var req notesResponse
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if err := h.noteStore.ImportAll(r.Context(), converter.DTOsToModels(req.Notes)); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleError конвертирует внутренние ошибки в HTTP статусы.
// ValidationError и "не найдено" различимы по коду и статусу,
// все остальное - 500 без деталей.
func handleError(w http.ResponseWriter, err error) {
	var validationErr *model.ValidationError
	if errors.As(err, &validationErr) {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: validationErr.Error(),
			Code:  "VALIDATION_ERROR",
			Field: validationErr.Field,
		})
		return
	}

	if errors.Is(err, memory.ErrNoteNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error: "note not found",
			Code:  "NOTE_NOT_FOUND",
		})
		return
	}

	log.Printf("[HTTP] Internal error: %v", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Error: "internal error",
		Code:  "INTERNAL_ERROR",
	})
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Error: msg,
		Code:  "BAD_REQUEST",
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("[HTTP] Failed to encode response: %v", err)
	}
}
