package gen

import (
	"os"
	"sort"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/teranos/interopgen/errors"
)

// DriftKind classifies one out-of-date file.
type DriftKind string

const (
	// DriftMissing means a file the run produces does not exist.
	DriftMissing DriftKind = "missing"
	// DriftStale means the file exists with different content.
	DriftStale DriftKind = "stale"
	// DriftOrphan means the manifest lists a file the run no longer produces.
	DriftOrphan DriftKind = "orphan"
)

// Drift is one difference between the output directory and a fresh run.
type Drift struct {
	Path string
	Kind DriftKind
	// Diff is a unified diff from the file on disk to the fresh content,
	// set for stale files.
	Diff string
}

// CheckReport is the result of Check.
type CheckReport struct {
	Checked int
	Drift   []Drift
}

// UpToDate reports whether nothing drifted.
func (r *CheckReport) UpToDate() bool {
	return len(r.Drift) == 0
}

// Check compares a fresh file set with the contents of dir without writing
// anything. manifest may be nil.
func Check(dir string, files []File, manifest *Manifest) (*CheckReport, error) {
	report := &CheckReport{Checked: len(files)}
	produced := make(map[string]bool, len(files))

	for _, f := range files {
		produced[f.Path] = true
		full, err := Target(dir, f.Path)
		if err != nil {
			return nil, err
		}
		current, err := os.ReadFile(full)
		if os.IsNotExist(err) {
			report.Drift = append(report.Drift, Drift{Path: f.Path, Kind: DriftMissing})
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", f.Path)
		}
		if string(current) == f.Content {
			continue
		}
		diff, err := UnifiedDiff(f.Path, string(current), f.Content)
		if err != nil {
			return nil, err
		}
		report.Drift = append(report.Drift, Drift{Path: f.Path, Kind: DriftStale, Diff: diff})
	}

	if manifest != nil {
		var orphans []string
		for _, e := range manifest.Files {
			if produced[e.Path] {
				continue
			}
			full, err := Target(dir, e.Path)
			if err != nil {
				continue
			}
			if _, err := os.Stat(full); err == nil {
				orphans = append(orphans, e.Path)
			}
		}
		sort.Strings(orphans)
		for _, path := range orphans {
			report.Drift = append(report.Drift, Drift{Path: path, Kind: DriftOrphan})
		}
	}
	return report, nil
}

// UnifiedDiff renders the change from current to fresh for one file.
func UnifiedDiff(path, current, fresh string) (string, error) {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(current),
		B:        difflib.SplitLines(fresh),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  3,
	})
	if err != nil {
		return "", errors.Wrapf(err, "failed to diff %s", path)
	}
	return diff, nil
}
