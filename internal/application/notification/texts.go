package notification

import (
	_ "embed"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed texts.yaml
var defaultTexts []byte

// Texts фразы уведомлений и ответов бота.
type Texts struct {
	AlreadyInUnit []string          `yaml:"already_in_unit"`
	AlreadyAway   []string          `yaml:"already_away"`
	Reminders     []string          `yaml:"reminders"`
	DailySummary  []string          `yaml:"daily_summary"`
	AdminEvents   map[string]string `yaml:"admin_events"`
}

// DefaultTexts встроенный набор фраз.
func DefaultTexts() *Texts {
	t, err := parseTexts(defaultTexts)
	if err != nil {
		panic(fmt.Sprintf("встроенные тексты: %v", err))
	}
	return t
}

// ParseTexts разбирает YAML; отсутствующие разделы берутся из встроенного набора.
func ParseTexts(data []byte) (*Texts, error) {
	t, err := parseTexts(data)
	if err != nil {
		return nil, err
	}
	t.fillFrom(DefaultTexts())
	return t, nil
}

func parseTexts(data []byte) (*Texts, error) {
	var t Texts
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse texts: %w", err)
	}
	return &t, nil
}

// LoadTexts читает YAML из path; пустой path = встроенные тексты.
func LoadTexts(path string) (*Texts, error) {
	if path == "" {
		return DefaultTexts(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read texts: %w", err)
	}
	return ParseTexts(data)
}

func (t *Texts) fillFrom(d *Texts) {
	if len(t.AlreadyInUnit) == 0 {
		t.AlreadyInUnit = d.AlreadyInUnit
	}
	if len(t.AlreadyAway) == 0 {
		t.AlreadyAway = d.AlreadyAway
	}
	if len(t.Reminders) == 0 {
		t.Reminders = d.Reminders
	}
	if len(t.DailySummary) == 0 {
		t.DailySummary = d.DailySummary
	}
	if t.AdminEvents == nil {
		t.AdminEvents = make(map[string]string, len(d.AdminEvents))
	}
	for k, v := range d.AdminEvents {
		if _, ok := t.AdminEvents[k]; !ok {
			t.AdminEvents[k] = v
		}
	}
}

// Pick случайная фраза из списка или fallback.
func Pick(list []string, fallback string) string {
	if len(list) == 0 {
		return fallback
	}
	return list[rand.Intn(len(list))]
}

// AdminEvent текст административного уведомления о событии tag.
func (t *Texts) AdminEvent(tag, name, details string) string {
	tmpl, ok := t.AdminEvents[tag]
	if !ok {
		tmpl = t.AdminEvents["default"]
	}
	if tmpl == "" {
		tmpl = "{action}: {details}"
	}
	return strings.NewReplacer(
		"{name}", name,
		"{details}", details,
		"{action}", tag,
	).Replace(tmpl)
}
