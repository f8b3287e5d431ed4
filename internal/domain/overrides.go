package domain

// OverrideRecord holds the user's persisted choices for one branch:
// optional mods opted into, and local files to keep even when the
// manifest no longer lists them.
type OverrideRecord struct {
	OptionalsSelected map[string]struct{}
	KeepFlagged       map[string]struct{}
}

// NewOverrideRecord returns an empty record.
func NewOverrideRecord() *OverrideRecord {
	return &OverrideRecord{
		OptionalsSelected: make(map[string]struct{}),
		KeepFlagged:       make(map[string]struct{}),
	}
}

// SelectOptional marks an optional entry as opted in.
func (r *OverrideRecord) SelectOptional(name string) {
	r.OptionalsSelected[name] = struct{}{}
}

// UnselectOptional removes an opt-in.
func (r *OverrideRecord) UnselectOptional(name string) {
	delete(r.OptionalsSelected, name)
}

// IsSelected reports whether an optional entry is opted in.
func (r *OverrideRecord) IsSelected(name string) bool {
	_, ok := r.OptionalsSelected[name]
	return ok
}

// Keep flags a local filename to be preserved.
func (r *OverrideRecord) Keep(name string) {
	r.KeepFlagged[name] = struct{}{}
}

// Unkeep clears a keep flag.
func (r *OverrideRecord) Unkeep(name string) {
	delete(r.KeepFlagged, name)
}

// IsKept reports whether a filename is keep-flagged.
func (r *OverrideRecord) IsKept(name string) bool {
	_, ok := r.KeepFlagged[name]
	return ok
}

// Clone returns a deep copy of the record.
func (r *OverrideRecord) Clone() *OverrideRecord {
	c := NewOverrideRecord()
	for k := range r.OptionalsSelected {
		c.OptionalsSelected[k] = struct{}{}
	}
	for k := range r.KeepFlagged {
		c.KeepFlagged[k] = struct{}{}
	}
	return c
}

// Overrides is the full per-profile override state, one record per branch.
type Overrides map[string]*OverrideRecord

// Branch returns the record for a branch, creating it if absent.
func (o Overrides) Branch(name string) *OverrideRecord {
	rec, ok := o[name]
	if !ok {
		rec = NewOverrideRecord()
		o[name] = rec
	}
	return rec
}
