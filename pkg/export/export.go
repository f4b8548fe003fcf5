// Package export writes one-way snapshots of a board: JSON, Markdown,
// SQLite, SVG and PNG. Nothing reads these files back into a board.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/laneboard/pkg/debug"
	"github.com/vanderheijden86/laneboard/pkg/metrics"
	"github.com/vanderheijden86/laneboard/pkg/model"
)

// Format is an output format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
	FormatSQLite   Format = "sqlite"
	FormatSVG      Format = "svg"
	FormatPNG      Format = "png"
)

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".md", ".markdown":
		return FormatMarkdown, nil
	case ".sqlite", ".sqlite3", ".db":
		return FormatSQLite, nil
	case ".svg":
		return FormatSVG, nil
	case ".png":
		return FormatPNG, nil
	case "":
		return "", fmt.Errorf("%s: no file extension to infer the format from", path)
	default:
		return "", fmt.Errorf("%s: unsupported format %q (want json, md, sqlite, svg or png)", path, filepath.Ext(path))
	}
}

// SplitPaths splits a comma separated --export value, dropping blanks.
func SplitPaths(list string) []string {
	var out []string
	for _, p := range strings.Split(list, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Write exports s to every path concurrently. All formats are validated
// before anything is written.
func Write(ctx context.Context, s model.BoardState, paths ...string) error {
	formats := make([]Format, len(paths))
	for i, p := range paths {
		f, err := FormatFromPath(p)
		if err != nil {
			return err
		}
		formats[i] = f
	}

	g, ctx := errgroup.WithContext(ctx)
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			defer metrics.Timer(metrics.SnapshotExport)()
			if err := WriteFile(ctx, s, p, formats[i]); err != nil {
				return fmt.Errorf("export %s: %w", p, err)
			}
			debug.Event("exported", debug.Fields{"path": p, "format": string(formats[i]), "cards": s.TotalCards()})
			return nil
		})
	}
	return g.Wait()
}

// WriteFile writes one export, creating parent directories as needed.
func WriteFile(ctx context.Context, s model.BoardState, path string, format Format) error {
	if path == "" {
		return fmt.Errorf("output path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create parent dir: %w", err)
		}
	}

	switch format {
	case FormatJSON:
		return writeJSON(s, path)
	case FormatMarkdown:
		return os.WriteFile(path, []byte(Markdown(s)), 0o644)
	case FormatSQLite:
		return NewSQLiteExporter(s).Export(ctx, path)
	case FormatSVG:
		return saveSVG(s, path)
	case FormatPNG:
		return savePNG(s, path)
	default:
		return fmt.Errorf("unhandled format %q", format)
	}
}
