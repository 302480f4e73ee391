// Package snapshot loads the materialized booking data the engine works on
// and reloads it when the file changes.
package snapshot

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"librarybookings/internal/models"
)

// Snapshot is one consistent view of items, bookings, checkouts and,
// optionally, the rule set that applies to them.
type Snapshot struct {
	Items     []models.Item     `yaml:"items"`
	Bookings  []models.Booking  `yaml:"bookings"`
	Checkouts []models.Checkout `yaml:"checkouts"`
	Rules     *models.RuleSet   `yaml:"rules"`
}

// Load reads a YAML or JSON snapshot file.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	snap, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", path, err)
	}
	return snap, nil
}

// Parse decodes a snapshot. JSON documents are accepted as YAML.
func Parse(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if snap.Rules != nil {
		if err := snap.Rules.Validate(); err != nil {
			return nil, fmt.Errorf("rules: %w", err)
		}
	}
	return &snap, nil
}

// RulesOr returns the snapshot rules, or def when the snapshot has none.
func (s *Snapshot) RulesOr(def models.RuleSet) models.RuleSet {
	if s.Rules == nil {
		return def
	}
	return *s.Rules
}

// Watch loads path, passes it to onUpdate and then polls the file every
// interval, reloading it when its modification time advances. Failed
// reloads are reported to onError and retried on the next tick. Watch
// returns after the initial load; polling stops when ctx is done.
func Watch(ctx context.Context, path string, interval time.Duration, onUpdate func(*Snapshot), onError func(error)) error {
	if interval <= 0 {
		interval = 30 * time.Second
	}

	snap, err := Load(path)
	if err != nil {
		return err
	}
	if onUpdate != nil {
		onUpdate(snap)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat snapshot: %w", err)
	}
	lastMod := info.ModTime()

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				info, err := os.Stat(path)
				if err != nil {
					continue // transient errors
				}
				if !info.ModTime().After(lastMod) {
					continue
				}
				snap, err := Load(path)
				if err != nil {
					if onError != nil {
						onError(err)
					}
					continue
				}
				lastMod = info.ModTime()
				if onUpdate != nil {
					onUpdate(snap)
				}
			}
		}
	}()

	return nil
}
