package entity

// NotificationSettings личные настройки уведомлений.
type NotificationSettings struct {
	UserID       int64
	Enabled      bool
	DailySummary bool
	Reminders    bool
	SilentMode   bool
}

// DefaultNotificationSettings значения по умолчанию.
func DefaultNotificationSettings(userID int64) *NotificationSettings {
	return &NotificationSettings{
		UserID:       userID,
		Enabled:      true,
		DailySummary: true,
		Reminders:    true,
		SilentMode:   false,
	}
}

// NotificationStats агрегаты по всем пользователям.
type NotificationStats struct {
	TotalUsers int
	Enabled    int
	Disabled   int
	Silent     int
}
