package tasbih

// DefaultDhikr is the phrase selected for a new session
const DefaultDhikr = "Astaghfirullah"

// Dhikr is a devotional phrase and its English translation
type Dhikr struct {
	Phrase      string `json:"phrase"`
	Translation string `json:"translation"`
}

// catalog keeps display order; do not sort
var catalog = []Dhikr{
	{Phrase: "Subhanallah", Translation: "Glory be to Allah"},
	{Phrase: "Alhamdulillah", Translation: "Praise be to Allah"},
	{Phrase: "Allahu Akbar", Translation: "Allah is the Greatest"},
	{Phrase: "La ilaha illallah", Translation: "There is no god but Allah"},
	{Phrase: "Astaghfirullah", Translation: "I seek forgiveness from Allah"},
}

// Catalog returns the dhikr phrases in display order
func Catalog() []Dhikr {
	out := make([]Dhikr, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup finds a dhikr by its phrase
func Lookup(phrase string) (Dhikr, bool) {
	for _, d := range catalog {
		if d.Phrase == phrase {
			return d, true
		}
	}
	return Dhikr{}, false
}
