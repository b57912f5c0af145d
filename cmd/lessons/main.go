// Command lessons validates a lesson content file and converts it between
// the JSON and spreadsheet formats.
//
//	lessons -in lecciones_maya_kiche.json -out lecciones.xlsx
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Chitopro2255V/kichewebapp/internal/catalog"

	"go.uber.org/zap"
)

func main() {
	in := flag.String("in", "", "content file to read (.json or .xlsx)")
	out := flag.String("out", "", "file to write the converted content to (.json or .xlsx)")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *in == "" {
		flag.Usage()
		os.Exit(2)
	}
	// LoadFile would seed a missing file; here a missing file is a mistake
	if _, err := os.Stat(*in); err != nil {
		logger.Fatal("Content file not readable", zap.Error(err))
	}

	cat, err := catalog.LoadFile(*in, logger)
	if err != nil {
		logger.Fatal("Invalid content", zap.Error(err))
	}

	for _, lvl := range cat.Levels() {
		fmt.Printf("%s\n", lvl.Level.DisplayName())
		for _, l := range lvl.Lessons {
			fmt.Printf("  %3d  %-30s %-12s %d palabras\n", l.ID, l.Title, l.Kind, len(l.Content))
		}
	}

	if *out == "" {
		return
	}
	if err := cat.Save(*out); err != nil {
		logger.Fatal("Failed to write content", zap.String("path", *out), zap.Error(err))
	}
	logger.Info("Content written", zap.String("path", *out))
}
