package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/Chitopro2255V/kichewebapp/internal/domain"
)

type wordJSON struct {
	Target string `json:"maya"`
	Gloss  string `json:"espanol"`
	Media  string `json:"imagen,omitempty"`
}

type lessonJSON struct {
	ID      int        `json:"id"`
	Title   string     `json:"titulo"`
	Kind    string     `json:"tipo"`
	Content []wordJSON `json:"contenido"`
}

// Load parses a content document mapping level name to its lessons.
// Levels keep the order in which they appear in the document.
func Load(r io.Reader) (*Catalog, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrContent, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("%w: expected object of levels", domain.ErrContent)
	}

	b := newBuilder()
	seen := make(map[string]bool)

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrContent, err)
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: expected level name", domain.ErrContent)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: level %q appears twice", domain.ErrContent, name)
		}
		seen[name] = true

		var lessons []lessonJSON
		if err := dec.Decode(&lessons); err != nil {
			return nil, fmt.Errorf("%w: level %q: %v", domain.ErrContent, name, err)
		}

		level := domain.Level(name)
		if _, err := b.addLevel(level); err != nil {
			return nil, err
		}
		for _, l := range lessons {
			if err := b.addLesson(level, l); err != nil {
				return nil, err
			}
		}
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrContent, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after content", domain.ErrContent)
	}

	return b.build(), nil
}

// MarshalJSON encodes the catalog in the content document format with
// levels in catalog order.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	for i, l := range c.levels {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(string(l.Level)); err != nil {
			return nil, err
		}
		buf.WriteByte(':')

		lessons := make([]lessonJSON, 0, len(l.Lessons))
		for _, lesson := range l.Lessons {
			lessons = append(lessons, toJSON(lesson))
		}
		if err := enc.Encode(lessons); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// WriteJSON writes the catalog as an indented content document.
func (c *Catalog) WriteJSON(w io.Writer) error {
	raw, err := c.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}

	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return fmt.Errorf("failed to indent catalog: %w", err)
	}
	out.WriteByte('\n')

	_, err = out.WriteTo(w)
	return err
}

func toJSON(lesson *domain.Lesson) lessonJSON {
	words := make([]wordJSON, 0, len(lesson.Content))
	for _, w := range lesson.Content {
		words = append(words, wordJSON{Target: w.Target, Gloss: w.Gloss, Media: w.MediaRef})
	}
	return lessonJSON{
		ID:      lesson.ID,
		Title:   lesson.Title,
		Kind:    lesson.Kind,
		Content: words,
	}
}
