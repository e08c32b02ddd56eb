package gen

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/interopgen/errors"
	"github.com/teranos/interopgen/logger"
)

// DefaultGenerator names the tool in banners and manifests.
const DefaultGenerator = "interopgen"

// Permissions for generated output.
const (
	DirPermissions  = 0o755
	FilePermissions = 0o644
)

// WriteReport lists what Write did, by relative path.
type WriteReport struct {
	Written   []string
	Unchanged []string
	Removed   []string
}

// Target joins a relative output path onto dir and rejects paths that
// escape it.
func Target(dir, rel string) (string, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Wrapf(err, "failed to resolve output directory %s", dir)
	}
	full := filepath.Join(root, filepath.FromSlash(rel))
	inside, err := filepath.Rel(root, full)
	if err != nil || inside == ".." || strings.HasPrefix(inside, ".."+string(filepath.Separator)) || filepath.IsAbs(inside) {
		return "", errors.Newf("output path %s escapes the output directory %s", rel, dir)
	}
	return full, nil
}

// Write places every file under dir. Every destination is validated before
// anything touches disk; each file is written through a temp file and a
// rename. Files whose content is already current are left alone so their
// modification times survive. Files listed in the previous manifest but not
// produced by this run are removed.
func Write(dir string, files []File, previous *Manifest, log *zap.SugaredLogger) (*WriteReport, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	targets := make([]string, len(files))
	produced := make(map[string]bool, len(files))
	for i, f := range files {
		full, err := Target(dir, f.Path)
		if err != nil {
			return nil, err
		}
		targets[i] = full
		produced[f.Path] = true
	}

	report := &WriteReport{}
	for i, f := range files {
		current, err := os.ReadFile(targets[i])
		if err == nil && bytes.Equal(current, []byte(f.Content)) {
			report.Unchanged = append(report.Unchanged, f.Path)
			log.Debugw("Generated file unchanged", logger.FieldPath, f.Path)
			continue
		}
		if err := writeAtomic(targets[i], []byte(f.Content)); err != nil {
			return report, err
		}
		report.Written = append(report.Written, f.Path)
		log.Infow("Wrote generated file", logger.FieldPath, f.Path, logger.FieldSection, f.Section)
	}

	if previous != nil {
		for _, entry := range previous.Files {
			if produced[entry.Path] {
				continue
			}
			full, err := Target(dir, entry.Path)
			if err != nil {
				log.Warnw("Ignoring manifest entry outside the output directory", logger.FieldPath, entry.Path)
				continue
			}
			if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
				return report, errors.Wrapf(err, "failed to remove stale file %s", entry.Path)
			}
			report.Removed = append(report.Removed, entry.Path)
			log.Infow("Removed stale generated file", logger.FieldPath, entry.Path)
		}
	}
	return report, nil
}

// writeAtomic writes data next to path and renames it into place.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DirPermissions); err != nil {
		return errors.Wrapf(err, "failed to create directory %s", dir)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrapf(err, "failed to create temp file for %s", path)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "failed to write %s", path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "failed to close temp file for %s", path)
	}
	if err := os.Chmod(tmpName, FilePermissions); err != nil {
		return errors.Wrapf(err, "failed to set permissions on %s", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errors.Wrapf(err, "failed to move %s into place", path)
	}
	return nil
}

// Emit runs the pipeline, writes the files into dir and records them in the
// manifest at manifestPath. Nothing is written when generation fails. An
// empty manifestPath disables the manifest and stale-file removal.
func Emit(opts Options, dir, manifestPath string) (*Result, *WriteReport, error) {
	result, err := Run(opts)
	if err != nil {
		return nil, nil, err
	}

	var previous *Manifest
	if manifestPath != "" {
		if previous, err = ReadManifest(manifestPath); err != nil {
			return result, nil, err
		}
	}
	report, err := Write(dir, result.Files, previous, opts.Log)
	if err != nil {
		return result, report, err
	}
	if manifestPath != "" {
		generator := opts.Header.Generator
		if generator == "" {
			generator = DefaultGenerator
		}
		if err := WriteManifest(manifestPath, NewManifest(generator, result)); err != nil {
			return result, report, err
		}
	}
	return result, report, nil
}
