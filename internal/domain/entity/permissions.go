package entity

import "time"

// Названия прав командира.
const (
	PermViewPersonnel       = "can_view_personnel"
	PermManagePersonnel     = "can_manage_personnel"
	PermExportData          = "can_export_data"
	PermViewJournal         = "can_view_journal"
	PermClearJournal        = "can_clear_journal"
	PermManageNotifications = "can_manage_notifications"
	PermViewStats           = "can_view_stats"
	PermForceOperations     = "can_force_operations"
)

// PermissionNames порядок прав для клавиатур и отчётов.
var PermissionNames = []string{
	PermViewPersonnel,
	PermManagePersonnel,
	PermExportData,
	PermViewJournal,
	PermClearJournal,
	PermManageNotifications,
	PermViewStats,
	PermForceOperations,
}

// PermissionTitles подписи прав на русском.
var PermissionTitles = map[string]string{
	PermViewPersonnel:       "Просмотр л/с",
	PermManagePersonnel:     "Управление л/с",
	PermExportData:          "Экспорт",
	PermViewJournal:         "Просмотр журнала",
	PermClearJournal:        "Очистка журнала",
	PermManageNotifications: "Уведомления",
	PermViewStats:           "Статистика",
	PermForceOperations:     "Опасные операции",
}

// Permissions права командира.
type Permissions struct {
	UserID    int64
	Flags     map[string]bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DefaultPermissions права, создаваемые при первом обращении.
func DefaultPermissions(userID int64, now time.Time) *Permissions {
	return &Permissions{
		UserID: userID,
		Flags: map[string]bool{
			PermViewPersonnel:       true,
			PermManagePersonnel:     false,
			PermExportData:          false,
			PermViewJournal:         true,
			PermClearJournal:        false,
			PermManageNotifications: false,
			PermViewStats:           true,
			PermForceOperations:     false,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsPermission сообщает, известно ли право с таким именем.
func IsPermission(name string) bool {
	_, ok := PermissionTitles[name]
	return ok
}

// Has значение права; неизвестное или отсутствующее право = false.
func (p *Permissions) Has(name string) bool {
	if p == nil || p.Flags == nil {
		return false
	}
	return p.Flags[name]
}

// Apply применяет только известные права и возвращает применённые.
func (p *Permissions) Apply(partial map[string]bool) map[string]bool {
	applied := make(map[string]bool)
	if p.Flags == nil {
		p.Flags = make(map[string]bool, len(PermissionNames))
	}
	for name, v := range partial {
		if !IsPermission(name) {
			continue
		}
		p.Flags[name] = v
		applied[name] = v
	}
	return applied
}

// Count количество включённых прав.
func (p *Permissions) Count() int {
	n := 0
	for _, name := range PermissionNames {
		if p.Has(name) {
			n++
		}
	}
	return n
}

// Clone копия, чтобы хранилище не делилось картой с вызывающим кодом.
func (p *Permissions) Clone() *Permissions {
	if p == nil {
		return nil
	}
	c := *p
	c.Flags = make(map[string]bool, len(p.Flags))
	for k, v := range p.Flags {
		c.Flags[k] = v
	}
	return &c
}
