package bot

import (
	"fmt"
	"strconv"

	"github.com/jhoicas/tabel-bot/internal/application/conversation"
	"github.com/jhoicas/tabel-bot/internal/domain/entity"
)

// Опасные операции.
const (
	OpMarkAllArrived = "mark_all_arrived"
	OpClearAllData   = "clear_all_data"
	OpResetSettings  = "reset_settings"
	OpClearJournal   = "clear_journal"
)

var dangerTitles = map[string]string{
	OpMarkAllArrived: "Отметить всех прибывшими",
	OpClearAllData:   "Очистить все данные",
	OpResetSettings:  "Сбросить настройки уведомлений",
	OpClearJournal:   "Очистить журнал",
}

func btn(text, data string) Button { return Button{Text: text, Data: data} }

func backTo(data string) Button { return btn("⬅️ Назад", data) }

func mainMenuButton() Button { return btn("🏠 Главное меню", cb(NSUser, "back_to_main")) }

func cancelButton() Button { return btn("❌ Отмена", cb(NSUser, "cancel")) }

func mainMenu(isAdmin bool) *Keyboard {
	k := &Keyboard{}
	k.Row(btn("✅ Прибыл", cb(NSUser, "arrived")), btn("🚪 Убыл", cb(NSUser, "departed")))
	k.Row(btn("📋 Мой статус", cb(NSUser, "my_status")), btn("❓ Помощь", cb(NSUser, "help")))
	if isAdmin {
		k.Row(btn("👑 Админ-панель", cb(NSAdmin, "panel")))
	}
	return k
}

func backKeyboard() *Keyboard {
	return (&Keyboard{}).Row(mainMenuButton())
}

func cancelKeyboard() *Keyboard {
	return (&Keyboard{}).Row(cancelButton())
}

func initialStatusKeyboard() *Keyboard {
	k := &Keyboard{}
	k.Row(
		btn("🏠 В части", cb(NSUser, "initial_status", conversation.ChoiceInUnit)),
		btn("🚪 Вне части", cb(NSUser, "initial_status", conversation.ChoiceAway)),
	)
	k.Row(cancelButton())
	return k
}

func locationKeyboard() *Keyboard {
	k := &Keyboard{}
	var row []Button
	for _, l := range entity.PresetLocations {
		row = append(row, btn(l.Title(), cb(NSUser, "location", l.Key)))
		if len(row) == 2 {
			k.Row(row...)
			row = nil
		}
	}
	k.Row(row...)
	k.Row(btn("✍️ Другое", cb(NSUser, "location", conversation.ChoiceCustom)))
	k.Row(cancelButton())
	return k
}

func dangerConfirmKeyboard(op string) *Keyboard {
	k := &Keyboard{}
	k.Row(
		btn("✅ Подтвердить", cb(NSAdmin, "confirm_text", conversation.ChoiceYes)),
		btn("❌ Отмена", cb(NSAdmin, "cancel_danger", op)),
	)
	return k
}

// keyboardFor клавиатура для ожидания ввода в состоянии s.
func keyboardFor(s conversation.State) *Keyboard {
	switch s.Tag {
	case conversation.AwaitingInitialStatus:
		return initialStatusKeyboard()
	case conversation.AwaitingLocationChoice:
		return locationKeyboard()
	case conversation.AwaitingDangerButton:
		op := ""
		if p, ok := s.Payload.(conversation.DangerPayload); ok {
			op = p.Op
		}
		return dangerConfirmKeyboard(op)
	case conversation.AwaitingDangerText:
		op := ""
		if p, ok := s.Payload.(conversation.DangerPayload); ok {
			op = p.Op
		}
		return (&Keyboard{}).Row(btn("❌ Отмена", cb(NSAdmin, "cancel_danger", op)))
	case conversation.AwaitingName:
		return nil
	}
	return cancelKeyboard()
}

func adminPanel() *Keyboard {
	k := &Keyboard{}
	k.Row(btn("📊 Сводка", cb(NSAdmin, "dashboard")), btn("👥 Личный состав", cb(NSAdmin, "personnel")))
	k.Row(btn("📖 Журнал", cb(NSAdmin, "journal")), btn("⚙️ Настройки", cb(NSAdmin, "settings")))
	k.Row(btn("🖥 Мониторинг", cb(NSAdmin, "monitoring")))
	k.Row(mainMenuButton())
	return k
}

func panelBack() *Keyboard { return (&Keyboard{}).Row(backTo(cb(NSAdmin, "panel"))) }

func personnelMenu() *Keyboard {
	k := &Keyboard{}
	k.Row(btn("📋 Список", cb(NSAdmin, "personnel", "list_users")))
	k.Row(btn("✏️ Изменить ФИО", cb(NSAdmin, "personnel", "change_name")), btn("🗑 Удалить", cb(NSAdmin, "personnel", "delete_user")))
	k.Row(backTo(cb(NSAdmin, "panel")))
	return k
}

// pagerRow навигация по страницам для sub-префикса prefix.
func pagerRow(prefix string, page, total int) []Button {
	var row []Button
	if page > 1 {
		row = append(row, btn("◀️", cb(NSAdmin, "personnel", fmt.Sprintf("%s_%d", prefix, page-1))))
	}
	row = append(row, btn(fmt.Sprintf("%d/%d", page, total), cb(NSAdmin, "personnel", fmt.Sprintf("%s_%d", prefix, page))))
	if page < total {
		row = append(row, btn("▶️", cb(NSAdmin, "personnel", fmt.Sprintf("%s_%d", prefix, page+1))))
	}
	return row
}

func rosterKeyboard(page, total int) *Keyboard {
	k := &Keyboard{}
	k.Row(pagerRow("list_users", page, total)...)
	k.Row(backTo(cb(NSAdmin, "personnel")))
	return k
}

// pickUserKeyboard выбор бойца для действия action (person_delete | person_rename).
func pickUserKeyboard(users []*entity.User, action, prefix string, page, total int) *Keyboard {
	k := &Keyboard{}
	for _, u := range users {
		k.Row(btn(u.Status.Emoji()+" "+u.Name, cb(NSAdmin, action, strconv.FormatInt(u.ID, 10))))
	}
	if total > 1 {
		k.Row(pagerRow(prefix, page, total)...)
	}
	k.Row(backTo(cb(NSAdmin, "personnel")))
	return k
}

func confirmDeleteKeyboard(id int64) *Keyboard {
	k := &Keyboard{}
	k.Row(
		btn("🗑 Да, удалить", cb(NSAdmin, "person_delete_ok", strconv.FormatInt(id, 10))),
		btn("❌ Нет", cb(NSAdmin, "personnel", "delete_user")),
	)
	return k
}

func journalMenu() *Keyboard {
	k := &Keyboard{}
	k.Row(btn("🕑 Последние", cb(NSAdmin, "journal", "recent")), btn("🔎 Фильтры", cb(NSAdmin, "journal", "filters")))
	k.Row(btn("📈 Статистика", cb(NSAdmin, "journal", "stats")), btn("📤 Экспорт", cb(NSAdmin, "journal", "export")))
	k.Row(btn("🧹 Очистить", cb(NSAdmin, "journal", "clear")))
	k.Row(backTo(cb(NSAdmin, "panel")))
	return k
}

func journalBack() *Keyboard { return (&Keyboard{}).Row(backTo(cb(NSAdmin, "journal"))) }

func filtersMenu() *Keyboard {
	k := &Keyboard{}
	k.Row(
		btn("Сегодня", cb(NSAdmin, "journal_filter", "today")),
		btn("Неделя", cb(NSAdmin, "journal_filter", "week")),
		btn("Месяц", cb(NSAdmin, "journal_filter", "month")),
		btn("Всё", cb(NSAdmin, "journal_filter", "all")),
	)
	k.Row(btn("👤 По ФИО", cb(NSAdmin, "journal_filter", conversation.FilterByName)),
		btn("🏷 По действию", cb(NSAdmin, "journal_filter", conversation.FilterByAction)))
	k.Row(btn("📈 Статистика", cb(NSAdmin, "journal_filter", "stats")))
	k.Row(backTo(cb(NSAdmin, "journal")))
	return k
}

func exportMenu() *Keyboard {
	k := &Keyboard{}
	for _, f := range []struct{ key, title string }{
		{"csv", "📄 CSV"}, {"xlsx", "📊 Excel"}, {"pdf", "📕 PDF"},
	} {
		k.Row(
			btn(f.title+" сегодня", cb(NSAdmin, "export_"+f.key, "today")),
			btn("неделя", cb(NSAdmin, "export_"+f.key, "week")),
			btn("месяц", cb(NSAdmin, "export_"+f.key, "month")),
			btn("всё", cb(NSAdmin, "export_"+f.key, "all")),
		)
	}
	k.Row(backTo(cb(NSAdmin, "journal")))
	return k
}

func settingsMenu() *Keyboard {
	k := &Keyboard{}
	k.Row(btn("🔔 Уведомления", cb(NSAdmin, "settings", "notifications")), btn("👑 Командиры", cb(NSAdmin, "settings", "admins")))
	k.Row(btn("🔑 Токен API", cb(NSAdmin, "settings", "api_token")), btn("☢️ Опасная зона", cb(NSAdmin, "settings", "danger_zone")))
	k.Row(backTo(cb(NSAdmin, "panel")))
	return k
}

func onOff(v bool) string {
	if v {
		return "✅"
	}
	return "❌"
}

func notificationsMenu(st *entity.NotificationSettings) *Keyboard {
	k := &Keyboard{}
	if st.Enabled {
		k.Row(btn("🔕 Выключить все", cb(NSAdmin, "notifications", "disable")))
	} else {
		k.Row(btn("🔔 Включить", cb(NSAdmin, "notifications", "enable")))
	}
	k.Row(btn(onOff(st.DailySummary)+" Ежедневная сводка", cb(NSAdmin, "notifications", "daily_summary")))
	k.Row(btn(onOff(st.Reminders)+" Напоминания", cb(NSAdmin, "notifications", "reminders")))
	k.Row(btn(onOff(st.SilentMode)+" Тихий режим", cb(NSAdmin, "notifications", "silent_mode")))
	k.Row(btn("📈 Статистика", cb(NSAdmin, "notifications", "stats")))
	k.Row(backTo(cb(NSAdmin, "settings")))
	return k
}

func settingsBack() *Keyboard { return (&Keyboard{}).Row(backTo(cb(NSAdmin, "settings"))) }

func adminsMenu() *Keyboard {
	k := &Keyboard{}
	k.Row(btn("📋 Список", cb(NSAdmin, "admins", "list")), btn("🔐 Права", cb(NSAdmin, "admins", "permissions")))
	k.Row(btn("➕ Назначить", cb(NSAdmin, "admins", "add")), btn("➖ Снять", cb(NSAdmin, "admins", "remove")))
	k.Row(backTo(cb(NSAdmin, "settings")))
	return k
}

func adminsBack() *Keyboard { return (&Keyboard{}).Row(backTo(cb(NSAdmin, "settings", "admins"))) }

func pickAdminKeyboard(users []*entity.User, action string) *Keyboard {
	k := &Keyboard{}
	for _, u := range users {
		k.Row(btn(u.Name, cb(NSAdmin, action, strconv.FormatInt(u.ID, 10))))
	}
	k.Row(backTo(cb(NSAdmin, "settings", "admins")))
	return k
}

func permissionsMenu(commanders []*entity.User) *Keyboard {
	k := &Keyboard{}
	for _, u := range commanders {
		k.Row(btn("🔐 "+u.Name, cb(NSAdmin, "perm_edit", strconv.FormatInt(u.ID, 10))))
	}
	k.Row(btn("📄 Отчёт по правам", cb(NSAdmin, "permissions", "report")))
	k.Row(backTo(cb(NSAdmin, "settings", "admins")))
	return k
}

func permEditKeyboard(userID int64, p *entity.Permissions) *Keyboard {
	k := &Keyboard{}
	id := strconv.FormatInt(userID, 10)
	for _, name := range entity.PermissionNames {
		k.Row(btn(onOff(p.Has(name))+" "+entity.PermissionTitles[name], cb(NSAdmin, "perm_toggle", id+"."+name)))
	}
	k.Row(backTo(cb(NSAdmin, "permissions", "list_commanders")))
	return k
}

func dangerMenu() *Keyboard {
	k := &Keyboard{}
	for _, op := range []string{OpMarkAllArrived, OpClearAllData, OpResetSettings} {
		k.Row(btn("⚠️ "+dangerTitles[op], cb(NSAdmin, "danger_zone", op)))
	}
	k.Row(backTo(cb(NSAdmin, "settings")))
	return k
}

func monitoringMenu() *Keyboard {
	k := &Keyboard{}
	k.Row(btn("🖥 Состояние системы", cb(NSAdmin, "monitoring", "system_stats")))
	k.Row(btn("🕑 История статусов", cb(NSAdmin, "monitoring", "status_history")))
	k.Row(backTo(cb(NSAdmin, "panel")))
	return k
}

func monitoringBack() *Keyboard { return (&Keyboard{}).Row(backTo(cb(NSAdmin, "monitoring"))) }
