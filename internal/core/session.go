package core

import (
	"context"
	"fmt"

	"mms/internal/domain"
	"mms/internal/remote"
)

// Session is the explicit per-activation context: one profile, a fresh
// manifest, a fresh inventory scan and the loaded overrides. It is
// constructed by Service.Activate and discarded on profile switch, so a
// reconciliation result can never outlive the state it was computed
// from.
type Session struct {
	Profile   *domain.Profile
	Client    *remote.Client
	Manifest  *domain.Manifest
	Inventory []domain.LocalFile
	Overrides domain.Overrides
}

// Record returns the override record for the session's branch.
func (s *Session) Record() *domain.OverrideRecord {
	return s.Overrides.Branch(s.Profile.Branch)
}

// Refresh re-fetches the manifest and re-scans the mods directory,
// e.g. after a completed transfer.
func (s *Session) Refresh(ctx context.Context) error {
	manifest, err := s.Client.Manifest(ctx, s.Profile.Branch)
	if err != nil {
		return fmt.Errorf("fetching manifest: %w", err)
	}
	inventory, err := ScanInventory(s.Profile.ModsPath)
	if err != nil {
		return err
	}
	s.Manifest = manifest
	s.Inventory = inventory
	return nil
}

// Propose runs reconciliation over the session's current state.
func (s *Session) Propose() *PendingPlan {
	return Propose(s.Manifest, s.Inventory, s.Record())
}

// Confirm finalizes a pending plan with the user's choices. The updated
// override record is applied to the session in memory; persisting it is
// the service's job once the transfer has quiesced.
func (s *Session) Confirm(pending *PendingPlan, choices UserChoices) (*Plan, error) {
	plan, record, err := pending.Confirm(choices)
	if err != nil {
		return nil, err
	}
	plan.ModsPath = s.Profile.ModsPath
	s.Overrides[s.Profile.Branch] = record
	return plan, nil
}
