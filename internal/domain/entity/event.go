package entity

import "time"

// Теги событий журнала.
const (
	ActionUserAdded          = "user_added"
	ActionUserDeleted        = "user_deleted"
	ActionNameChanged        = "name_changed"
	ActionPermissionsUpdated = "permissions_updated"
	ActionAdminAdded         = "admin_added"
	ActionAdminRemoved       = "admin_removed"
	ActionJournalCleared     = "journal_cleared"
	ActionMarkAllArrived     = "mark_all_arrived"
	ActionClearAllData       = "clear_all_data"
	ActionResetSettings      = "reset_settings"
	ActionNotificationsSet   = "notifications_updated"
	ActionAPITokenIssued     = "api_token_issued"
)

var actionTitles = map[string]string{
	string(StatusInUnit):     "прибыл",
	string(StatusAway):       "убыл",
	ActionUserAdded:          "регистрация",
	ActionUserDeleted:        "удаление",
	ActionNameChanged:        "смена ФИО",
	ActionPermissionsUpdated: "права",
	ActionAdminAdded:         "назначен командир",
	ActionAdminRemoved:       "снят командир",
	ActionJournalCleared:     "очистка журнала",
	ActionMarkAllArrived:     "все прибыли",
	ActionClearAllData:       "очистка данных",
	ActionResetSettings:      "сброс настроек",
	ActionNotificationsSet:   "уведомления",
	ActionAPITokenIssued:     "токен API",
}

// ActionTitle подпись тега для людей; неизвестный тег возвращается как есть.
func ActionTitle(action string) string {
	if t, ok := actionTitles[action]; ok {
		return t
	}
	return action
}

// Event неизменяемая запись журнала. UserID == nil означает системное событие.
type Event struct {
	ID        int64
	UserID    *int64
	Action    string
	Details   string
	Timestamp time.Time

	// Заполняются при чтении (JOIN с users), не сохраняются.
	UserName string
	Username string
}

// Actor имя автора события для отображения.
func (e *Event) Actor() string {
	if e.UserID == nil || e.UserName == "" {
		return "Система"
	}
	return e.UserName
}

// NewEvent собирает событие пользователя.
func NewEvent(userID int64, action, details string, at time.Time) *Event {
	id := userID
	return &Event{UserID: &id, Action: action, Details: details, Timestamp: at}
}

// NewSystemEvent собирает событие без автора.
func NewSystemEvent(action, details string, at time.Time) *Event {
	return &Event{Action: action, Details: details, Timestamp: at}
}

// Period предопределённый интервал фильтра журнала.
type Period string

const (
	PeriodAll   Period = ""
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// EventFilter условия выборки журнала; пустые поля не применяются.
type EventFilter struct {
	StartDate    time.Time
	EndDate      time.Time
	UserNameLike string
	ActionLike   string
	Period       Period
}

// Bounds переводит Period в явный интервал относительно now (начало дня в часовом поясе now).
func (f EventFilter) Bounds(now time.Time) (from, to time.Time) {
	from, to = f.StartDate, f.EndDate
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch f.Period {
	case PeriodToday:
		from = dayStart
	case PeriodWeek:
		from = dayStart.AddDate(0, 0, -7)
	case PeriodMonth:
		from = dayStart.AddDate(0, 0, -30)
	}
	return from, to
}

// EventStats агрегаты журнала по тегам действий.
type EventStats struct {
	Total    int
	ByAction []ActionCount // по убыванию количества
}

// ActionCount количество событий одного тега.
type ActionCount struct {
	Action string
	Count  int
}
