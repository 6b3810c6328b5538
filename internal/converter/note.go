package converter

import (
	"time"

	"notehub/internal/model"
)

// NoteDTO - JSON представление заметки для HTTP API
type NoteDTO struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Category  string    `json:"category"`
	Emoji     string    `json:"emoji"`
	CreatedAt time.Time `json:"created_at"`
}

// ModelToDTO конвертирует domain модель Note в JSON DTO
func ModelToDTO(note model.Note) NoteDTO {
	return NoteDTO{
		ID:        note.ID,
		Title:     note.Title,
		Body:      note.Body,
		Category:  note.Category,
		Emoji:     note.Emoji,
		CreatedAt: note.CreatedAt,
	}
}

// DTOToModel конвертирует JSON DTO в domain модель
func DTOToModel(dto NoteDTO) model.Note {
	return model.Note{
		ID:        dto.ID,
		Title:     dto.Title,
		Body:      dto.Body,
		Category:  dto.Category,
		Emoji:     dto.Emoji,
		CreatedAt: dto.CreatedAt,
	}
}

// ModelsToDTOs конвертирует слайс domain моделей в слайс DTO
func ModelsToDTOs(notes []model.Note) []NoteDTO {
	dtos := make([]NoteDTO, len(notes))
	for i, note := range notes {
		dtos[i] = ModelToDTO(note)
	}
	return dtos
}

// DTOsToModels конвертирует слайс DTO в слайс domain моделей
func DTOsToModels(dtos []NoteDTO) []model.Note {
	notes := make([]model.Note, len(dtos))
	for i, dto := range dtos {
		notes[i] = DTOToModel(dto)
	}
	return notes
}
