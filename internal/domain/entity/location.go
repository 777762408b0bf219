package entity

// PresetLocation локация из меню убытия.
type PresetLocation struct {
	Key   string // часть callback-данных, ASCII
	Emoji string
	Name  string
}

// Title подпись для кнопки.
func (l PresetLocation) Title() string { return l.Emoji + " " + l.Name }

// PresetLocations фиксированный список локаций убытия.
var PresetLocations = []PresetLocation{
	{Key: "polyclinic", Emoji: "🏥", Name: "Поликлиника"},
	{Key: "obrmp", Emoji: "⚓", Name: "ОБРМП"},
	{Key: "kaliningrad", Emoji: "🌆", Name: "Калининград"},
	{Key: "shop", Emoji: "🛒", Name: "Магазин"},
	{Key: "canteen", Emoji: "🍲", Name: "Столовая"},
	{Key: "hospital", Emoji: "🏨", Name: "Госпиталь"},
	{Key: "workshop", Emoji: "⚙️", Name: "Рабочка"},
	{Key: "vvk", Emoji: "🩺", Name: "ВВК"},
	{Key: "mfc", Emoji: "🏛️", Name: "МФЦ"},
	{Key: "patrol", Emoji: "🚓", Name: "Патруль"},
}

// LookupPreset ищет локацию по ключу.
func LookupPreset(key string) (PresetLocation, bool) {
	for _, l := range PresetLocations {
		if l.Key == key {
			return l, true
		}
	}
	return PresetLocation{}, false
}

// IsPresetName сообщает, совпадает ли name с названием одной из предустановленных локаций.
func IsPresetName(name string) bool {
	for _, l := range PresetLocations {
		if l.Name == name {
			return true
		}
	}
	return false
}
