package catalog

import (
	"fmt"
	"strings"

	"github.com/Chitopro2255V/kichewebapp/internal/domain"
)

// LevelLessons groups the lessons of one tier in document order
type LevelLessons struct {
	Level   domain.Level
	Lessons []*domain.Lesson
}

// Catalog is the immutable set of lessons available to learners.
// It is safe for concurrent reads.
type Catalog struct {
	levels []LevelLessons
	byID   map[int]*domain.Lesson
}

// FindLesson returns the lesson with the given id
func (c *Catalog) FindLesson(id int) (*domain.Lesson, error) {
	lesson, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("lesson %d: %w", id, domain.ErrNotFound)
	}
	return lesson, nil
}

// Levels returns the tiers with their lessons in the order of the content source.
func (c *Catalog) Levels() []LevelLessons {
	levels := make([]LevelLessons, len(c.levels))
	for i, l := range c.levels {
		lessons := make([]*domain.Lesson, len(l.Lessons))
		copy(lessons, l.Lessons)
		levels[i] = LevelLessons{Level: l.Level, Lessons: lessons}
	}
	return levels
}

// Lessons returns every lesson, level by level.
func (c *Catalog) Lessons() []*domain.Lesson {
	lessons := make([]*domain.Lesson, 0, len(c.byID))
	for _, l := range c.levels {
		lessons = append(lessons, l.Lessons...)
	}
	return lessons
}

// builder validates lessons as they are added. Both the JSON and the
// spreadsheet readers go through it.
type builder struct {
	cat      *Catalog
	levelIdx map[domain.Level]int
}

func newBuilder() *builder {
	return &builder{
		cat:      &Catalog{byID: make(map[int]*domain.Lesson)},
		levelIdx: make(map[domain.Level]int),
	}
}

func (b *builder) addLevel(level domain.Level) (int, error) {
	if !level.Valid() {
		return 0, fmt.Errorf("%w: unknown level %q", domain.ErrContent, level)
	}
	if idx, ok := b.levelIdx[level]; ok {
		return idx, nil
	}
	b.cat.levels = append(b.cat.levels, LevelLessons{Level: level})
	idx := len(b.cat.levels) - 1
	b.levelIdx[level] = idx
	return idx, nil
}

func (b *builder) addLesson(level domain.Level, raw lessonJSON) error {
	idx, err := b.addLevel(level)
	if err != nil {
		return err
	}

	raw.Title = strings.TrimSpace(raw.Title)
	raw.Kind = strings.TrimSpace(raw.Kind)

	if raw.ID <= 0 {
		return fmt.Errorf("%w: lesson in level %q has no positive id", domain.ErrContent, level)
	}
	if _, dup := b.cat.byID[raw.ID]; dup {
		return fmt.Errorf("%w: duplicate lesson id %d", domain.ErrContent, raw.ID)
	}
	if raw.Title == "" {
		return fmt.Errorf("%w: lesson %d has no title", domain.ErrContent, raw.ID)
	}
	if raw.Kind == "" {
		return fmt.Errorf("%w: lesson %d has no kind", domain.ErrContent, raw.ID)
	}
	if len(raw.Content) == 0 {
		return fmt.Errorf("%w: lesson %d has no content", domain.ErrContent, raw.ID)
	}

	lesson := &domain.Lesson{
		ID:      raw.ID,
		Title:   raw.Title,
		Kind:    raw.Kind,
		Level:   level,
		Content: make([]domain.WordPair, 0, len(raw.Content)),
	}

	glosses := make(map[string]struct{}, len(raw.Content))
	for i, w := range raw.Content {
		w.Target = strings.TrimSpace(w.Target)
		w.Gloss = strings.TrimSpace(w.Gloss)
		w.Media = strings.TrimSpace(w.Media)
		if w.Target == "" || w.Gloss == "" {
			return fmt.Errorf("%w: lesson %d word %d misses target or gloss", domain.ErrContent, raw.ID, i+1)
		}
		if _, dup := glosses[w.Gloss]; dup {
			return fmt.Errorf("%w: lesson %d repeats gloss %q", domain.ErrContent, raw.ID, w.Gloss)
		}
		glosses[w.Gloss] = struct{}{}

		lesson.Content = append(lesson.Content, domain.WordPair{
			Target:   w.Target,
			Gloss:    w.Gloss,
			MediaRef: w.Media,
		})
	}

	b.cat.levels[idx].Lessons = append(b.cat.levels[idx].Lessons, lesson)
	b.cat.byID[lesson.ID] = lesson
	return nil
}

func (b *builder) build() *Catalog {
	return b.cat
}
