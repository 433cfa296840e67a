package ops

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hpungsan/folio/internal/errors"
	"github.com/hpungsan/folio/internal/facade"
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Path    string // optional, default: <baseDir>/exports/<site>-<timestamp>.yaml
	BaseDir string // config base dir; snapshots must sit directly in its exports dir
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string `json:"path"`
	Count      int    `json:"count"`
	ExportedAt int64  `json:"exported_at"`
}

// Export writes every section of src to a YAML content file that the static
// backend and Import both read.
func Export(ctx context.Context, src facade.Source, input ExportInput) (*ExportOutput, error) {
	now := time.Now()
	doc := facade.Snapshot(ctx, src)

	exportPath := input.Path
	if exportPath == "" {
		exportPath = defaultExportPath(input.BaseDir, doc.SiteSettings.SiteTitle, now)
	}

	// Default paths are validated too; the site title is user content.
	if err := ValidatePath(exportPath, PathCheckWrite, []string{ExportsDir(input.BaseDir)}); err != nil {
		return nil, err
	}

	dir := filepath.Dir(exportPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	// Write to a temp file, then rename, so a failed export keeps the old file.
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := exportPath + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	enc := yaml.NewEncoder(file)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := enc.Close(); err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return nil, errors.NewInternal(err)
	}

	// Close before rename (required on Windows).
	if err := file.Close(); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlinked destination.
	if info, err := os.Lstat(exportPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return nil, errors.NewInternal(fmt.Errorf("export path is a symlink"))
	}

	if err := os.Rename(tempPath, exportPath); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(exportPath); statErr == nil {
				return nil, errors.NewInvalidRequest("export destination already exists; overwriting is not supported on Windows yet (choose a new path or delete the existing file)")
			}
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	return &ExportOutput{
		Path:       exportPath,
		Count:      documentCount(doc),
		ExportedAt: now.Unix(),
	}, nil
}

// defaultExportPath is <baseDir>/exports/<site>-<timestamp>.yaml.
func defaultExportPath(baseDir, siteTitle string, now time.Time) string {
	name := "folio"
	if strings.TrimSpace(siteTitle) != "" {
		name = SanitizeForFilename(strings.ToLower(strings.Join(strings.Fields(siteTitle), "-")))
	}
	filename := fmt.Sprintf("%s-%s.yaml", name, now.Format("2006-01-02T150405"))
	return filepath.Join(ExportsDir(baseDir), filename)
}

// documentCount is the number of list entries plus the three singletons.
func documentCount(d *facade.Document) int {
	return len(d.Projects) + len(d.Journal) + len(d.Skills) + len(d.Experience) + len(d.Education) + 3
}
