package catalog

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

func isSpreadsheet(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xlsx")
}

// LoadFile reads the catalog from path, picking the format by extension.
// A missing file is seeded with the built-in lessons so later runs read
// the same content.
func LoadFile(path string, logger *zap.Logger) (*Catalog, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Info("Content file not found, seeding default lessons", zap.String("path", path))

		c := Default()
		if err := c.Save(path); err != nil {
			logger.Warn("Failed to write default lessons", zap.String("path", path), zap.Error(err))
		}
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open content file: %w", err)
	}
	defer f.Close()

	var c *Catalog
	if isSpreadsheet(path) {
		c, err = ImportXLSX(f)
	} else {
		c, err = Load(f)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	logger.Info("Lessons loaded",
		zap.String("path", path),
		zap.Int("levels", len(c.levels)),
		zap.Int("lessons", len(c.byID)),
	)
	return c, nil
}

// Save writes the catalog to path in the format implied by its extension.
func (c *Catalog) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create content directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create content file: %w", err)
	}

	var write func(io.Writer) error = c.WriteJSON
	if isSpreadsheet(path) {
		write = c.WriteXLSX
	}

	return errors.Join(write(f), f.Close())
}
