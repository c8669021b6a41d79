package delivery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang-news-briefer/internal/briefing"
	"golang-news-briefer/pkg/logger"
)

// Export formats.
const (
	FormatMarkdown = "md"
	FormatHTML     = "html"
)

// FileExporter writes the briefing to a timestamped file in the export
// directory.
type FileExporter struct {
	dir    string
	format string
	logger *logger.Logger
}

// NewFileExporter creates an exporter for the given format.
func NewFileExporter(dir, format string, log *logger.Logger) *FileExporter {
	if format != FormatHTML {
		format = FormatMarkdown
	}
	return &FileExporter{dir: dir, format: format, logger: log}
}

func (f *FileExporter) Name() string { return "export-" + f.format }

func (f *FileExporter) Deliver(_ context.Context, b *briefing.Briefing) error {
	if b.Failed {
		return nil
	}
	path, err := f.Write(b)
	if err != nil {
		return err
	}
	f.logger.Info("Briefing exported", logger.StringField("path", path))
	return nil
}

// Write stores the briefing and returns the file path.
func (f *FileExporter) Write(b *briefing.Briefing) (string, error) {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	name := fmt.Sprintf("briefing-%s-%s.%s", b.Style, b.GeneratedAt.Format("2006-01-02-1504"), f.format)
	path := filepath.Join(f.dir, name)

	content := b.PlainText
	if f.format == FormatHTML {
		content = b.HTML
	} else {
		content = fmt.Sprintf("# %s\n\n%s\n", b.Subject(), b.PlainText)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write briefing export: %w", err)
	}
	return path, nil
}
