package bot

import "strings"

// MaxCallbackLen предел Telegram для callback_data.
const MaxCallbackLen = 64

// Пространства имён callback-команд.
const (
	NSUser  = "user"
	NSAdmin = "admin"
)

// Command разобранная callback-команда namespace:action:subaction.
type Command struct {
	Namespace string
	Action    string
	Sub       string
}

// String обратная сборка команды.
func (c Command) String() string {
	s := c.Namespace + ":" + c.Action
	if c.Sub != "" {
		s += ":" + c.Sub
	}
	return s
}

// Parse разбирает raw не более чем на три части по ':'. Отсутствующая
// subaction = "". Пустые namespace/action, не-ASCII и слишком длинные
// строки не разбираются.
func Parse(raw string) (Command, bool) {
	if raw == "" || len(raw) > MaxCallbackLen {
		return Command{}, false
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < 0x20 || raw[i] > 0x7e {
			return Command{}, false
		}
	}
	parts := strings.SplitN(raw, ":", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return Command{}, false
	}
	cmd := Command{Namespace: parts[0], Action: parts[1]}
	if len(parts) == 3 {
		cmd.Sub = parts[2]
	}
	return cmd, true
}

// cb собирает callback-данные.
func cb(ns, action string, sub ...string) string {
	s := ns + ":" + action
	if len(sub) > 0 {
		s += ":" + strings.Join(sub, "")
	}
	return s
}
