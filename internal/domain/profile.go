package domain

// Profile is a named sync configuration. The active profile is chosen at
// startup (last used) or explicitly; switching always rebuilds the
// session from scratch.
type Profile struct {
	Name     string // Profile identifier (also the config filename)
	Address  string // Server host or host/prefix, scheme optional
	ModsPath string // Local mods directory
	Branch   string // Branch to sync against
}
