package gen

import (
	"bufio"
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"path/filepath"
)

// Formatter formats generated QL files in place.
type Formatter interface {
	Format(ctx context.Context, files []string) error
}

// CodeQLFormatter formats files with the query formatter of the CodeQL CLI.
type CodeQLFormatter struct {
	// Binary is the CodeQL executable. Defaults to DefaultCodeQLBinary.
	Binary string
	Logger *slog.Logger
}

// Format runs the formatter once over the .ql and .qll files. Diagnostics
// of a failed run are logged at error level, those of a successful run at
// debug level.
func (f *CodeQLFormatter) Format(ctx context.Context, files []string) error {
	var ql []string
	for _, file := range files {
		if ext := filepath.Ext(file); ext == ".ql" || ext == ".qll" {
			ql = append(ql, file)
		}
	}
	if len(ql) == 0 {
		return nil
	}
	bin := f.Binary
	if bin == "" {
		bin = DefaultCodeQLBinary
	}
	logger := f.Logger
	if logger == nil {
		logger = slog.Default()
	}
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, append([]string{"query", "format", "--in-place", "--"}, ql...)...)
	cmd.Stderr = &stderr
	err := cmd.Run()
	level := slog.LevelDebug
	if err != nil {
		level = slog.LevelError
	}
	sc := bufio.NewScanner(&stderr)
	for sc.Scan() {
		if line := sc.Text(); line != "" {
			logger.Log(ctx, level, line, "formatter", bin)
		}
	}
	if err != nil {
		return &FormatError{Binary: bin, Cause: err}
	}
	logger.Debug("formatted files", "count", len(ql))
	return nil
}
