package domain

import "time"

// ModEntry is a single mod published in a branch manifest.
// Identity within a branch is the filename.
type ModEntry struct {
	Name     string    // Filename, e.g. "sodium-0.5.8.jar"
	Size     int64     // Size in bytes as reported by the server
	ModTime  time.Time // Server-side modification time
	Optional bool      // Offered for selective download, not required
}

// ArchiveInfo describes the pre-built bulk archive a branch may offer.
type ArchiveInfo struct {
	Present bool  // Server has an archive for this branch
	Size    int64 // Archive size in bytes
	ModTime time.Time
}

// Manifest is the remote listing for one branch, fetched fresh per sync.
type Manifest struct {
	Branch  string
	Mods    []ModEntry
	Archive ArchiveInfo
}

// Entry returns the manifest entry with the given filename, or nil.
func (m *Manifest) Entry(name string) *ModEntry {
	for i := range m.Mods {
		if m.Mods[i].Name == name {
			return &m.Mods[i]
		}
	}
	return nil
}

// DownloadStrategy selects how a confirmed plan's downloads are executed.
// It is derived from the manifest, never a user setting.
type DownloadStrategy int

const (
	// StrategyPerFile fetches each entry independently.
	StrategyPerFile DownloadStrategy = iota
	// StrategyBulk fetches the branch archive once and extracts the
	// selected members.
	StrategyBulk
)

func (s DownloadStrategy) String() string {
	switch s {
	case StrategyPerFile:
		return "per-file"
	case StrategyBulk:
		return "bulk"
	default:
		return "unknown"
	}
}

// bulkThresholdPercent: the archive is only worth fetching when the
// selected per-file total exceeds this share of the archive size.
const bulkThresholdPercent = 95

// ChooseStrategy picks the download strategy for the given number of
// selected bytes. Bulk wins when the archive is present and the selected
// files amount to more than 95% of the archive size.
func (m *Manifest) ChooseStrategy(selectedBytes int64) DownloadStrategy {
	if !m.Archive.Present || m.Archive.Size <= 0 {
		return StrategyPerFile
	}
	if selectedBytes > m.Archive.Size*bulkThresholdPercent/100 {
		return StrategyBulk
	}
	return StrategyPerFile
}

// LocalFile is a file found in the mods directory. Recomputed on each
// scan, never persisted.
type LocalFile struct {
	Name    string
	Size    int64
	ModTime time.Time
}
