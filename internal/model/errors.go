package model

import "fmt"

// ValidationError возвращается, когда поле заметки не проходит проверку.
// Field указывает, какое именно поле невалидно, чтобы вызывающая сторона
// могла отличить "слишком короткий title" от "слишком короткий body".
type ValidationError struct {
	Field  string // Имя невалидного поля (title, body, category, emoji)
	Reason string // Человекочитаемая причина
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
}
