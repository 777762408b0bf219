// Package conversation описывает многошаговые диалоги бота: конечный набор
// состояний, чистую функцию перехода Step и потокобезопасный Tracker.
package conversation

import "time"

// Tag состояние диалога пользователя.
type Tag string

const (
	Idle                   Tag = "idle"
	AwaitingName           Tag = "awaiting_name"
	AwaitingInitialStatus  Tag = "awaiting_initial_status"
	AwaitingLocationChoice Tag = "awaiting_location_choice"
	AwaitingCustomLocation Tag = "awaiting_custom_location"
	AwaitingDangerText     Tag = "awaiting_danger_text_confirm"
	AwaitingDangerButton   Tag = "awaiting_danger_button_confirm"
	AwaitingFilterInput    Tag = "awaiting_filter_input"
	AwaitingRenameInput    Tag = "awaiting_rename_input"
)

// Payload данные, накопленные за время диалога. Тип зависит от Tag.
type Payload interface{ payload() }

// RegistrationPayload регистрация до выбора статуса.
type RegistrationPayload struct {
	Name     string
	Username string
}

// LocationPayload выбор локации. IsRegistration отличает завершение регистрации от обычного убытия.
type LocationPayload struct {
	IsRegistration bool
	Name           string
	Username       string
}

// DangerPayload операция, ожидающая подтверждения.
type DangerPayload struct {
	Op string
}

// FilterPayload вид фильтра журнала, для которого ждём текст.
type FilterPayload struct {
	Kind string // FilterByName | FilterByAction
}

// RenamePayload чьё ФИО меняет администратор.
type RenamePayload struct {
	TargetID int64
}

func (RegistrationPayload) payload() {}
func (LocationPayload) payload()     {}
func (DangerPayload) payload()       {}
func (FilterPayload) payload()       {}
func (RenamePayload) payload()       {}

// Виды текстовых фильтров журнала.
const (
	FilterByName   = "by_name"
	FilterByAction = "by_action"
)

// State состояние диалога одного пользователя.
type State struct {
	Tag       Tag
	Payload   Payload
	UpdatedAt time.Time
}

// IdleState состояние без активного диалога.
func IdleState() State { return State{Tag: Idle} }

// IsIdle сообщает, нет ли активного диалога.
func (s State) IsIdle() bool { return s.Tag == Idle || s.Tag == "" }

// Registration начало регистрации.
func Registration(username string) State {
	return State{Tag: AwaitingName, Payload: RegistrationPayload{Username: username}}
}

// Departure начало убытия из части.
func Departure() State {
	return State{Tag: AwaitingLocationChoice, Payload: LocationPayload{}}
}

// Danger начало подтверждения опасной операции op.
func Danger(op string) State {
	return State{Tag: AwaitingDangerText, Payload: DangerPayload{Op: op}}
}

// Filter ожидание текста фильтра журнала.
func Filter(kind string) State {
	return State{Tag: AwaitingFilterInput, Payload: FilterPayload{Kind: kind}}
}

// Rename ожидание нового ФИО для targetID.
func Rename(targetID int64) State {
	return State{Tag: AwaitingRenameInput, Payload: RenamePayload{TargetID: targetID}}
}
