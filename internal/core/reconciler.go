package core

import (
	"fmt"
	"sort"

	"mms/internal/domain"
)

// DeleteCandidate is a local file the manifest no longer wants. Optional
// marks files that match an optional entry the user has not selected, so
// callers can present them separately from orphaned files.
type DeleteCandidate struct {
	domain.LocalFile
	Optional bool
}

// ReconciliationResult is the outcome of one reconcile pass. It is pure
// computation output: recomputed on every sync, never persisted.
type ReconciliationResult struct {
	ToDownload []domain.ModEntry // Required + opted-in entries missing or size-mismatched locally
	ToDelete   []DeleteCandidate // Local files no longer wanted, keep-flagged excluded
	Unchanged  []string          // Filenames already satisfied
	Warnings   []string          // E.g. selected optionals that left the manifest
}

// Reconcile diffs the branch manifest against the local inventory under
// the given override record. It never touches the filesystem or network,
// and for equal inputs produces identical output, sorted by filename.
//
// A manifest entry is satisfied only by a local file with the same name
// and size; a size mismatch means re-download. Local files matching no
// entry become delete candidates unless keep-flagged. Files matching an
// unselected optional are delete candidates tagged Optional.
func Reconcile(manifest *domain.Manifest, local []domain.LocalFile, record *domain.OverrideRecord) *ReconciliationResult {
	if record == nil {
		record = domain.NewOverrideRecord()
	}

	localByName := make(map[string]domain.LocalFile, len(local))
	for _, f := range local {
		localByName[f.Name] = f
	}

	result := &ReconciliationResult{}

	entryByName := make(map[string]domain.ModEntry, len(manifest.Mods))
	for _, entry := range manifest.Mods {
		entryByName[entry.Name] = entry

		wanted := !entry.Optional || record.IsSelected(entry.Name)
		if !wanted {
			continue
		}

		present, ok := localByName[entry.Name]
		if ok && present.Size == entry.Size {
			result.Unchanged = append(result.Unchanged, entry.Name)
			continue
		}
		result.ToDownload = append(result.ToDownload, entry)
	}

	for _, f := range local {
		entry, inBranch := entryByName[f.Name]
		if inBranch {
			// Present optionals the user has not selected are prunable.
			if entry.Optional && !record.IsSelected(entry.Name) {
				if !record.IsKept(f.Name) {
					result.ToDelete = append(result.ToDelete, DeleteCandidate{LocalFile: f, Optional: true})
				}
			}
			continue
		}
		if record.IsKept(f.Name) {
			continue
		}
		result.ToDelete = append(result.ToDelete, DeleteCandidate{LocalFile: f})
	}

	// Selected optionals that vanished from the manifest are surfaced
	// rather than silently dropped; the store filters them on next save.
	for name := range record.OptionalsSelected {
		if _, ok := entryByName[name]; !ok {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("selected optional mod %q is no longer offered by branch %s", name, manifest.Branch))
		}
	}

	sort.Slice(result.ToDownload, func(i, j int) bool {
		return result.ToDownload[i].Name < result.ToDownload[j].Name
	})
	sort.Slice(result.ToDelete, func(i, j int) bool {
		return result.ToDelete[i].Name < result.ToDelete[j].Name
	})
	sort.Strings(result.Unchanged)
	sort.Strings(result.Warnings)

	return result
}

// DownloadBytes sums the sizes of the entries queued for download.
func (r *ReconciliationResult) DownloadBytes() int64 {
	var total int64
	for _, e := range r.ToDownload {
		total += e.Size
	}
	return total
}

// Empty reports whether the result requires no work.
func (r *ReconciliationResult) Empty() bool {
	return len(r.ToDownload) == 0 && len(r.ToDelete) == 0
}
