package domain

import (
	"errors"
	"fmt"
)

// Доменные ошибки (без внешних зависимостей).
var (
	ErrNotFound      = errors.New("запись не найдена")
	ErrUserNotFound  = errors.New("пользователь не зарегистрирован")
	ErrUserExists    = errors.New("пользователь уже зарегистрирован")
	ErrInvalidInput  = errors.New("некорректный ввод")
	ErrForbidden     = errors.New("доступ запрещён")
	ErrConflict      = errors.New("конфликт с текущим состоянием")
	ErrStateMismatch = errors.New("состояние диалога не совпадает с ожидаемым")
	ErrRootAdmin     = errors.New("главного администратора нельзя изменить")
)

// ValidationError ошибка проверки пользовательского ввода. Message показывается пользователю как есть.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap позволяет errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NewValidationError конструктор для краткости в валидаторах.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// StoreError сбой хранилища с именем операции; повтор остаётся на вызывающей стороне.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// WrapStore оборачивает err в StoreError; nil и доменные ошибки возвращаются без изменений.
func WrapStore(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrUserExists) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrUserNotFound) {
		return err
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// UserMessage возвращает текст для пользователя, если ошибка предназначена для показа.
func UserMessage(err error) (string, bool) {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return ve.Message, true
	case errors.Is(err, ErrUserNotFound):
		return "❌ Вы не зарегистрированы. Нажмите /start", true
	case errors.Is(err, ErrUserExists):
		return "⚠️ Вы уже зарегистрированы", true
	case errors.Is(err, ErrForbidden):
		return "❌ Недостаточно прав для этого действия", true
	case errors.Is(err, ErrRootAdmin):
		return "⚠️ Главного администратора нельзя изменить", true
	}
	return "", false
}
