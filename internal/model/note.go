package model

import (
	"strings"
	"time"
)

// Ограничения на поля заметки после TrimSpace
const (
	TitleMinLen = 3   // Минимальная длина заголовка
	TitleMaxLen = 100 // Максимальная длина заголовка
	BodyMinLen  = 10  // Минимальная длина текста заметки
)

// Note представляет заметку (доменная модель).
// Заметка неизменяема после создания: обновление заменяет запись целиком,
// ID и CreatedAt при этом сохраняются.
type Note struct {
	ID        string    // UUID заметки
	Title     string    // Заголовок заметки (3-100 символов)
	Body      string    // Текст заметки (минимум 10 символов)
	Category  string    // Категория из закрытого набора
	Emoji     string    // Отображаемый глиф категории
	CreatedAt time.Time // Дата создания, не меняется при обновлении
}

// ValidateTitle проверяет заголовок после TrimSpace
func ValidateTitle(title string) error {
	title = strings.TrimSpace(title)
	switch {
	case title == "":
		return &ValidationError{Field: "title", Reason: "title cannot be empty"}
	case len([]rune(title)) < TitleMinLen:
		return &ValidationError{Field: "title", Reason: "title must be at least 3 characters"}
	case len([]rune(title)) > TitleMaxLen:
		return &ValidationError{Field: "title", Reason: "title must be at most 100 characters"}
	}
	return nil
}

// ValidateBody проверяет текст заметки после TrimSpace
func ValidateBody(body string) error {
	body = strings.TrimSpace(body)
	switch {
	case body == "":
		return &ValidationError{Field: "body", Reason: "body cannot be empty"}
	case len([]rune(body)) < BodyMinLen:
		return &ValidationError{Field: "body", Reason: "body must be at least 10 characters"}
	}
	return nil
}

// Validate проверяет валидность всех полей заметки
func (n *Note) Validate() error {
	if err := ValidateTitle(n.Title); err != nil {
		return err
	}
	if err := ValidateBody(n.Body); err != nil {
		return err
	}
	if strings.TrimSpace(n.Category) == "" {
		return &ValidationError{Field: "category", Reason: "category cannot be empty"}
	}
	if n.Emoji == "" {
		return &ValidationError{Field: "emoji", Reason: "emoji cannot be empty"}
	}
	return nil
}

// IsEmpty проверяет, пуста ли заметка
func (n *Note) IsEmpty() bool {
	return n.ID == "" && n.Title == "" && n.Body == ""
}
