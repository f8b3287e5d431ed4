package core

import (
	"fmt"
	"sort"

	"mms/internal/domain"
)

// PendingPlan is the first half of the two-phase sync protocol: the
// reconciliation output waiting for user confirmation. It captures the
// inputs so Confirm can recompute deterministically after overrides
// change.
type PendingPlan struct {
	Manifest *domain.Manifest
	Local    []domain.LocalFile
	Record   *domain.OverrideRecord
	Result   *ReconciliationResult
}

// UserChoices carries the confirmation-time adjustments collected from
// the user. All fields reference entries by filename.
type UserChoices struct {
	AddOptionals    []string // Opt into optional entries
	RemoveOptionals []string // Withdraw previous opt-ins
	Keep            []string // Flag delete candidates to be preserved
	RemoveKept      []string // Re-confirm deletion of keep-flagged files this session
	SkipDelete      []string // Leave these alone this run without flagging them
}

// Plan is a confirmed, executable transfer plan.
type Plan struct {
	Branch    string
	Strategy  domain.DownloadStrategy
	Downloads []domain.ModEntry
	Deletes   []string
	ModsPath  string
}

// TotalBytes is the byte total of all queued downloads.
func (p *Plan) TotalBytes() int64 {
	var total int64
	for _, e := range p.Downloads {
		total += e.Size
	}
	return total
}

// Propose computes the candidate download and delete lists for user
// review. The returned pending plan owns a copy of the override record;
// the caller's record is not mutated until Confirm.
func Propose(manifest *domain.Manifest, local []domain.LocalFile, record *domain.OverrideRecord) *PendingPlan {
	if record == nil {
		record = domain.NewOverrideRecord()
	}
	rec := record.Clone()
	return &PendingPlan{
		Manifest: manifest,
		Local:    local,
		Record:   rec,
		Result:   Reconcile(manifest, local, rec),
	}
}

// Confirm applies the user's choices and produces the final plan plus
// the override record to persist. Opting in or out re-runs the
// reconciliation so the plan always reflects the adjusted record.
// Unknown or non-optional names in the optional choices are rejected.
func (p *PendingPlan) Confirm(choices UserChoices) (*Plan, *domain.OverrideRecord, error) {
	rec := p.Record.Clone()

	for _, name := range choices.AddOptionals {
		entry := p.Manifest.Entry(name)
		if entry == nil {
			return nil, nil, fmt.Errorf("unknown mod %q in branch %s", name, p.Manifest.Branch)
		}
		if !entry.Optional {
			return nil, nil, fmt.Errorf("mod %q is required, not optional", name)
		}
		rec.SelectOptional(name)
	}
	for _, name := range choices.RemoveOptionals {
		if entry := p.Manifest.Entry(name); entry != nil && !entry.Optional {
			return nil, nil, fmt.Errorf("cannot deselect required mod %q", name)
		}
		rec.UnselectOptional(name)
	}
	for _, name := range choices.Keep {
		rec.Keep(name)
	}
	for _, name := range choices.RemoveKept {
		if !rec.IsKept(name) {
			return nil, nil, fmt.Errorf("file %q is not keep-flagged", name)
		}
		rec.Unkeep(name)
	}

	// Selections referencing entries gone from the manifest are dropped
	// here so the persisted record stays within the current branch.
	for name := range rec.OptionalsSelected {
		if p.Manifest.Entry(name) == nil {
			rec.UnselectOptional(name)
		}
	}

	result := Reconcile(p.Manifest, p.Local, rec)

	skip := make(map[string]struct{}, len(choices.SkipDelete))
	for _, name := range choices.SkipDelete {
		skip[name] = struct{}{}
	}

	var deletes []string
	for _, cand := range result.ToDelete {
		if _, skipped := skip[cand.Name]; skipped {
			continue
		}
		deletes = append(deletes, cand.Name)
	}
	sort.Strings(deletes)

	plan := &Plan{
		Branch:    p.Manifest.Branch,
		Strategy:  p.Manifest.ChooseStrategy(result.DownloadBytes()),
		Downloads: result.ToDownload,
		Deletes:   deletes,
	}
	return plan, rec, nil
}
