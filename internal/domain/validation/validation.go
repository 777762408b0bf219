// Package validation проверяет свободный ввод пользователя: ФИО и локации.
package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/tabel-bot/internal/domain"
)

const (
	MinLocationLength = 4
	MaxLocationLength = 64
	MaxNameLength     = 64
)

var (
	nameRe     = regexp.MustCompile(`^[А-ЯЁ][а-яё]+(-[А-ЯЁ][а-яё]+)?\s[А-ЯЁ]\.[А-ЯЁ]\.$`)
	locationRe = regexp.MustCompile(`^[А-Яа-яЁё]+([ \-][А-Яа-яЁё]+)*$`)
	spacesRe   = regexp.MustCompile(`\s+`)
)

// Normalize приводит строку к NFC, обрезает края и схлопывает пробелы.
func Normalize(s string) string {
	s = norm.NFC.String(s)
	return spacesRe.ReplaceAllString(strings.TrimSpace(s), " ")
}

// Name проверяет формат «Фамилия И.И.» и возвращает нормализованное значение.
func Name(raw string) (string, error) {
	s := Normalize(raw)
	if s == "" {
		return "", domain.NewValidationError("name", "ФИО не может быть пустым.")
	}
	if utf8.RuneCountInString(s) > MaxNameLength {
		return "", domain.NewValidationError("name", "Слишком длинное ФИО.")
	}
	if !nameRe.MatchString(s) {
		return "", domain.NewValidationError("name",
			"Неверный формат. Введите ФИО в формате: Фамилия И.О.\nПример: Иванов И.И.")
	}
	return s, nil
}

// Location проверяет локацию, введённую вручную: только кириллица, пробелы и дефисы.
func Location(raw string) (string, error) {
	s := Normalize(raw)
	n := utf8.RuneCountInString(s)
	if n < MinLocationLength {
		return "", domain.NewValidationError("location", "Название локации должно содержать минимум 4 символа.")
	}
	if n > MaxLocationLength {
		return "", domain.NewValidationError("location", "Слишком длинное название локации.")
	}
	if !locationRe.MatchString(s) {
		return "", domain.NewValidationError("location",
			"Локация может содержать только русские буквы, пробелы и дефисы.")
	}
	return s, nil
}
