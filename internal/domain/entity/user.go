package entity

import "time"

// Status положение бойца относительно части.
type Status string

const (
	StatusInUnit Status = "in_unit" // в части
	StatusAway   Status = "away"    // вне части
)

// Valid сообщает, является ли значение одним из известных статусов.
func (s Status) Valid() bool {
	return s == StatusInUnit || s == StatusAway
}

// Title человекочитаемое название статуса.
func (s Status) Title() string {
	switch s {
	case StatusInUnit:
		return "В части"
	case StatusAway:
		return "Вне части"
	default:
		return "Неизвестно"
	}
}

// Emoji значок статуса для списков.
func (s Status) Emoji() string {
	switch s {
	case StatusInUnit:
		return "🏠"
	case StatusAway:
		return "🚪"
	default:
		return "❓"
	}
}

// User боец или командир, зарегистрированный в боте. ID совпадает с Telegram ID.
// Инвариант: Location не пустая тогда и только тогда, когда Status == StatusAway.
type User struct {
	ID               int64
	Name             string
	Username         string // @handle без @, может быть пустым
	Status           Status
	Location         string
	LastStatusChange time.Time
	IsAdmin          bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Consistent проверяет инвариант статус/локация.
func (u *User) Consistent() bool {
	if u.Status == StatusAway {
		return u.Location != ""
	}
	return u.Location == ""
}

// StatusSummary сводка по личному составу (командиры не учитываются).
type StatusSummary struct {
	Total  int
	InUnit int
	Away   int
	// PresenceRate процент бойцов в части, округлён до десятых.
	PresenceRate Decimal
	// AwayByLocation бойцы вне части, сгруппированные по локации.
	AwayByLocation map[string][]string
}
