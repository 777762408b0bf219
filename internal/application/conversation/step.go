package conversation

import (
	"strings"

	"github.com/jhoicas/tabel-bot/internal/application/attendance"
	"github.com/jhoicas/tabel-bot/internal/domain"
	"github.com/jhoicas/tabel-bot/internal/domain/entity"
	"github.com/jhoicas/tabel-bot/internal/domain/validation"
)

// DangerToken слово подтверждения опасной операции (без учёта регистра).
const DangerToken = "да"

// Значения выбора (кнопок), которые понимает Step.
const (
	ChoiceInUnit = "in_unit"
	ChoiceAway   = "away"
	ChoiceCustom = "custom"
	ChoiceYes    = "yes"
	ChoiceNo     = "no"
)

// InputKind вид входа.
type InputKind int

const (
	InputText   InputKind = iota // свободный текст
	InputChoice                  // нажатие кнопки
	InputCancel                  // отмена
)

// Input вход конечного автомата.
type Input struct {
	Kind  InputKind
	Value string
}

func Text(s string) Input   { return Input{Kind: InputText, Value: s} }
func Choose(s string) Input { return Input{Kind: InputChoice, Value: s} }
func Cancel() Input         { return Input{Kind: InputCancel} }

// Effect действие, которое вызывающий выполняет после перехода.
type Effect interface{ effect() }

// RegisterEffect создать пользователя и начальный статус одной транзакцией.
type RegisterEffect struct {
	Name     string
	Username string
	Status   entity.Status
	Location string
}

// DepartEffect отметить убытие в Location.
type DepartEffect struct {
	Location string
}

// DangerEffect выполнить опасную операцию.
type DangerEffect struct {
	Op string
}

// FilterEffect показать журнал с текстовым фильтром.
type FilterEffect struct {
	Kind string
	Text string
}

// RenameEffect сменить ФИО пользователя TargetID.
type RenameEffect struct {
	TargetID int64
	Name     string
}

func (RegisterEffect) effect() {}
func (DepartEffect) effect()   {}
func (DangerEffect) effect()   {}
func (FilterEffect) effect()   {}
func (RenameEffect) effect()   {}

// Transition результат Step.
type Transition struct {
	Next    State
	Message string
	Effect  Effect
	// Invalid вход отклонён, диалог остаётся в том же состоянии.
	Invalid bool
	// Mismatch вход не относится к текущему состоянию; диалог сброшен в Idle.
	Mismatch bool
	// Cancelled диалог отменён пользователем.
	Cancelled bool
}

// Тексты подсказок.
const (
	MsgAskName          = "👋 Добро пожаловать!\n\nДля регистрации введите ваше ФИО в формате: Фамилия И.О.\nПример: Иванов И.И."
	MsgAskInitialStatus = "Где вы сейчас находитесь?"
	MsgAskLocation      = "📍 Куда убываете? Выберите локацию:"
	MsgAskCustom        = "✍️ Введите название локации:"
	MsgDangerText       = "⚠️ Опасная операция!\n\nДля подтверждения введите «Да»."
	MsgDangerButton     = "⚠️ Последнее подтверждение. Выполнить операцию?"
	MsgDangerCancelled  = "❌ Операция отменена."
	MsgAskFilterName    = "🔎 Введите ФИО или его часть:"
	MsgAskFilterAction  = "🔎 Введите действие или его часть:"
	MsgAskRename        = "✏️ Введите новое ФИО в формате: Фамилия И.О."
	MsgCancelled        = "❌ Действие отменено."
	MsgMismatch         = "⚠️ Это действие устарело. Начните заново из меню."
	MsgEmptyFilter      = "Текст фильтра не может быть пустым."
	MsgUseButtons       = "👆 Выберите вариант кнопкой ниже."
)

// Prompt подсказка для входа в состояние s.
func Prompt(s State) string {
	switch s.Tag {
	case AwaitingName:
		return MsgAskName
	case AwaitingInitialStatus:
		return MsgAskInitialStatus
	case AwaitingLocationChoice:
		return MsgAskLocation
	case AwaitingCustomLocation:
		return MsgAskCustom
	case AwaitingDangerText:
		return MsgDangerText
	case AwaitingDangerButton:
		return MsgDangerButton
	case AwaitingFilterInput:
		if p, ok := s.Payload.(FilterPayload); ok && p.Kind == FilterByAction {
			return MsgAskFilterAction
		}
		return MsgAskFilterName
	case AwaitingRenameInput:
		return MsgAskRename
	}
	return ""
}

// Step чистая функция перехода: не обращается к хранилищу и не меняет s.
func Step(s State, in Input) Transition {
	if in.Kind == InputCancel {
		return Transition{Next: IdleState(), Message: MsgCancelled, Cancelled: true}
	}

	switch s.Tag {
	case AwaitingName:
		return stepName(s, in)
	case AwaitingInitialStatus:
		return stepInitialStatus(s, in)
	case AwaitingLocationChoice:
		return stepLocationChoice(s, in)
	case AwaitingCustomLocation:
		return stepCustomLocation(s, in)
	case AwaitingDangerText:
		return stepDangerText(s, in)
	case AwaitingDangerButton:
		return stepDangerButton(s, in)
	case AwaitingFilterInput:
		return stepFilter(s, in)
	case AwaitingRenameInput:
		return stepRename(s, in)
	}
	return mismatch()
}

func mismatch() Transition {
	return Transition{Next: IdleState(), Message: MsgMismatch, Mismatch: true}
}

func invalid(s State, err error) Transition {
	return Transition{Next: s, Message: errorText(err), Invalid: true}
}

// buttonsOnly текст на шаге, где ожидается нажатие кнопки.
func buttonsOnly(s State) Transition {
	return Transition{Next: s, Message: MsgUseButtons + "\n\n" + Prompt(s), Invalid: true}
}

func errorText(err error) string {
	if msg, ok := domain.UserMessage(err); ok {
		return msg
	}
	return err.Error()
}

func stepName(s State, in Input) Transition {
	p, ok := s.Payload.(RegistrationPayload)
	if !ok || in.Kind != InputText {
		return mismatch()
	}
	name, err := validation.Name(in.Value)
	if err != nil {
		return invalid(s, err)
	}
	p.Name = name
	next := State{Tag: AwaitingInitialStatus, Payload: p}
	return Transition{Next: next, Message: Prompt(next)}
}

func stepInitialStatus(s State, in Input) Transition {
	p, ok := s.Payload.(RegistrationPayload)
	if !ok {
		return mismatch()
	}
	if in.Kind != InputChoice {
		return buttonsOnly(s)
	}
	switch in.Value {
	case ChoiceInUnit:
		return Transition{
			Next:   IdleState(),
			Effect: RegisterEffect{Name: p.Name, Username: p.Username, Status: entity.StatusInUnit},
		}
	case ChoiceAway:
		next := State{Tag: AwaitingLocationChoice, Payload: LocationPayload{
			IsRegistration: true, Name: p.Name, Username: p.Username,
		}}
		return Transition{Next: next, Message: Prompt(next)}
	}
	return buttonsOnly(s)
}

func stepLocationChoice(s State, in Input) Transition {
	p, ok := s.Payload.(LocationPayload)
	if !ok {
		return mismatch()
	}
	if in.Kind != InputChoice {
		return buttonsOnly(s)
	}
	if in.Value == ChoiceCustom {
		next := State{Tag: AwaitingCustomLocation, Payload: p}
		return Transition{Next: next, Message: Prompt(next)}
	}
	preset, found := entity.LookupPreset(in.Value)
	if !found {
		return buttonsOnly(s)
	}
	return Transition{Next: IdleState(), Effect: locationEffect(p, preset.Name)}
}

func stepCustomLocation(s State, in Input) Transition {
	p, ok := s.Payload.(LocationPayload)
	if !ok || in.Kind != InputText {
		return mismatch()
	}
	loc, err := attendance.CheckLocation(in.Value)
	if err != nil {
		return invalid(s, err)
	}
	return Transition{Next: IdleState(), Effect: locationEffect(p, loc)}
}

func locationEffect(p LocationPayload, location string) Effect {
	if p.IsRegistration {
		return RegisterEffect{Name: p.Name, Username: p.Username, Status: entity.StatusAway, Location: location}
	}
	return DepartEffect{Location: location}
}

func stepDangerText(s State, in Input) Transition {
	p, ok := s.Payload.(DangerPayload)
	if !ok || in.Kind != InputText {
		return mismatch()
	}
	if !strings.EqualFold(strings.TrimSpace(in.Value), DangerToken) {
		return Transition{Next: IdleState(), Message: MsgDangerCancelled, Cancelled: true}
	}
	next := State{Tag: AwaitingDangerButton, Payload: p}
	return Transition{Next: next, Message: Prompt(next)}
}

func stepDangerButton(s State, in Input) Transition {
	p, ok := s.Payload.(DangerPayload)
	if !ok {
		return mismatch()
	}
	if in.Kind != InputChoice {
		return buttonsOnly(s)
	}
	switch in.Value {
	case ChoiceYes:
		return Transition{Next: IdleState(), Effect: DangerEffect{Op: p.Op}}
	case ChoiceNo:
		return Transition{Next: IdleState(), Message: MsgDangerCancelled, Cancelled: true}
	}
	return buttonsOnly(s)
}

func stepFilter(s State, in Input) Transition {
	p, ok := s.Payload.(FilterPayload)
	if !ok || in.Kind != InputText {
		return mismatch()
	}
	text := validation.Normalize(in.Value)
	if text == "" {
		return Transition{Next: s, Message: MsgEmptyFilter, Invalid: true}
	}
	return Transition{Next: IdleState(), Effect: FilterEffect{Kind: p.Kind, Text: text}}
}

func stepRename(s State, in Input) Transition {
	p, ok := s.Payload.(RenamePayload)
	if !ok || in.Kind != InputText {
		return mismatch()
	}
	name, err := validation.Name(in.Value)
	if err != nil {
		return invalid(s, err)
	}
	return Transition{Next: IdleState(), Effect: RenameEffect{TargetID: p.TargetID, Name: name}}
}
