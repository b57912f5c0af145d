package catalog

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Chitopro2255V/kichewebapp/internal/domain"

	"github.com/xuri/excelize/v2"
)

const sheetName = "lecciones"

var sheetHeader = []string{"nivel", "id", "titulo", "tipo", "maya", "espanol", "imagen"}

const (
	colLevel = iota
	colID
	colTitle
	colKind
	colTarget
	colGloss
	colMedia
)

// ImportXLSX reads a catalog from a spreadsheet with one row per word.
// Rows of the same lesson must be contiguous; title and kind are taken
// from the first row of each lesson.
func ImportXLSX(r io.Reader) (*Catalog, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open spreadsheet: %v", domain.ErrContent, err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read sheet %q: %v", domain.ErrContent, sheetName, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %q is empty", domain.ErrContent, sheetName)
	}
	if !strings.EqualFold(strings.TrimSpace(cell(rows[0], colLevel)), sheetHeader[colLevel]) {
		return nil, fmt.Errorf("%w: sheet %q has no header row", domain.ErrContent, sheetName)
	}

	b := newBuilder()

	var (
		current      *lessonJSON
		currentLevel domain.Level
	)

	flush := func() error {
		if current == nil {
			return nil
		}
		err := b.addLesson(currentLevel, *current)
		current = nil
		return err
	}

	for i, row := range rows[1:] {
		rowNum := i + 2

		if blankRow(row) {
			continue
		}

		level := domain.Level(strings.TrimSpace(cell(row, colLevel)))
		id, err := strconv.Atoi(strings.TrimSpace(cell(row, colID)))
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: invalid lesson id %q", domain.ErrContent, rowNum, cell(row, colID))
		}

		if current == nil || current.ID != id || currentLevel != level {
			if err := flush(); err != nil {
				return nil, err
			}
			current = &lessonJSON{
				ID:    id,
				Title: strings.TrimSpace(cell(row, colTitle)),
				Kind:  strings.TrimSpace(cell(row, colKind)),
			}
			currentLevel = level
		}

		current.Content = append(current.Content, wordJSON{
			Target: strings.TrimSpace(cell(row, colTarget)),
			Gloss:  strings.TrimSpace(cell(row, colGloss)),
			Media:  strings.TrimSpace(cell(row, colMedia)),
		})
	}

	if err := flush(); err != nil {
		return nil, err
	}

	return b.build(), nil
}

// WriteXLSX writes the catalog in the spreadsheet layout read by ImportXLSX.
func (c *Catalog) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(sheetHeader))
	for i, h := range sheetHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	rowNum := 2
	for _, l := range c.levels {
		for _, lesson := range l.Lessons {
			for _, word := range lesson.Content {
				addr, err := excelize.CoordinatesToCellName(1, rowNum)
				if err != nil {
					return err
				}
				row := []interface{}{
					string(l.Level), lesson.ID, lesson.Title, lesson.Kind,
					word.Target, word.Gloss, word.MediaRef,
				}
				if err := f.SetSheetRow(sheetName, addr, &row); err != nil {
					return fmt.Errorf("failed to write row %d: %w", rowNum, err)
				}
				rowNum++
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write spreadsheet: %w", err)
	}
	return nil
}

func cell(row []string, col int) string {
	if col < len(row) {
		return row[col]
	}
	return ""
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
