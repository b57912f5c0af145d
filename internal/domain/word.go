package domain

// WordPair is a single vocabulary item: the K'iche' word, its Spanish gloss
// and an optional reference to an illustration.
type WordPair struct {
	Target   string
	Gloss    string
	MediaRef string
}

// Level is a content tier grouping lessons in the catalog.
type Level string

const (
	LevelBasic        Level = "basico"
	LevelIntermediate Level = "intermedio"
	LevelAdvanced     Level = "avanzado"
)

// Levels lists the known tiers in presentation order.
var Levels = []Level{LevelBasic, LevelIntermediate, LevelAdvanced}

// Valid reports whether l is one of the known tiers.
func (l Level) Valid() bool {
	for _, known := range Levels {
		if l == known {
			return true
		}
	}
	return false
}

// DisplayName returns the tier name shown to learners
func (l Level) DisplayName() string {
	switch l {
	case LevelBasic:
		return "Básico"
	case LevelIntermediate:
		return "Intermedio"
	case LevelAdvanced:
		return "Avanzado"
	}
	return string(l)
}

// Lesson is an immutable group of word pairs.
type Lesson struct {
	ID      int
	Title   string
	Kind    string
	Level   Level
	Content []WordPair
}

// DistinctTargets returns the number of different target strings in the lesson.
func (l *Lesson) DistinctTargets() int {
	seen := make(map[string]struct{}, len(l.Content))
	for _, w := range l.Content {
		seen[w.Target] = struct{}{}
	}
	return len(seen)
}
