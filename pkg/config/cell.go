package config

import "sync"

// Cell is the shared, mutex-guarded container for the process-wide Config
// and its embedded CredentialSnapshot. Every logger holds the same *Cell;
// snapshot rotation writes go through the Cell so all loggers observe them.
type Cell struct {
	mu   sync.RWMutex
	cfg  Config
	snap *CredentialSnapshot
}

// NewCell wraps a resolved Config in a Cell. The snapshot starts absent.
func NewCell(cfg Config) *Cell {
	if cfg.APIEndpoint == "" {
		cfg.APIEndpoint = DefaultAPIEndpoint
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "default-service"
	}
	return &Cell{cfg: cfg}
}

// Load returns a copy of the current configuration record.
func (c *Cell) Load() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg
}

// Snapshot returns the current credential snapshot, or nil when none has
// been installed yet.
func (c *Cell) Snapshot() *CredentialSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// ReplaceSnapshot installs a freshly fetched snapshot, superseding any
// previous one. The old snapshot is never mutated.
func (c *Cell) ReplaceSnapshot(s *CredentialSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap = s
	if s != nil && s.Region != "" {
		c.cfg.AwsRegion = s.Region
	}
}
