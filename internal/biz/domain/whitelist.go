package domain

import (
	"strings"
	"time"
)

// RemoteWhitelistPayload is the body returned by the whitelist endpoint.
// Null entries in Items decode as nil and are dropped by NormalizeEntries.
type RemoteWhitelistPayload struct {
	Items     []*string `json:"items"`
	Count     *int      `json:"count,omitempty"`
	UpdatedAt string    `json:"updatedAt,omitempty"`
}

// NormalizeEntries trims every entry and drops nil or blank ones.
// Order and case are preserved.
func NormalizeEntries(raw []*string) []string {
	entries := make([]string, 0, len(raw))
	for _, item := range raw {
		if item == nil {
			continue
		}
		trimmed := strings.TrimSpace(*item)
		if trimmed == "" {
			continue
		}
		entries = append(entries, trimmed)
	}
	return entries
}

// WhitelistSnapshot is an immutable view of the whitelist.
// The display list and the lowercase set always come from the same update.
type WhitelistSnapshot struct {
	items     []string
	lower     map[string]struct{}
	updatedAt string
	loadedAt  time.Time
}

// EmptySnapshot is published before any whitelist has been loaded.
var EmptySnapshot = &WhitelistSnapshot{lower: map[string]struct{}{}}

// NewWhitelistSnapshot builds a snapshot from already normalized entries.
func NewWhitelistSnapshot(entries []string, updatedAt string, loadedAt time.Time) *WhitelistSnapshot {
	items := make([]string, len(entries))
	copy(items, entries)

	lower := make(map[string]struct{}, len(items))
	for _, item := range items {
		lower[strings.ToLower(item)] = struct{}{}
	}

	return &WhitelistSnapshot{
		items:     items,
		lower:     lower,
		updatedAt: strings.TrimSpace(updatedAt),
		loadedAt:  loadedAt,
	}
}

// SnapshotFromPayload normalizes a remote payload into a snapshot.
func SnapshotFromPayload(p *RemoteWhitelistPayload, loadedAt time.Time) *WhitelistSnapshot {
	return NewWhitelistSnapshot(NormalizeEntries(p.Items), p.UpdatedAt, loadedAt)
}

// Items returns a copy of the display-case entries.
func (s *WhitelistSnapshot) Items() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

// Count is the number of display entries, duplicates included.
func (s *WhitelistSnapshot) Count() int {
	return len(s.items)
}

// SetSize is the cardinality of the lowercase matching set.
func (s *WhitelistSnapshot) SetSize() int {
	return len(s.lower)
}

// IsEmpty reports whether nothing can match.
func (s *WhitelistSnapshot) IsEmpty() bool {
	return len(s.lower) == 0
}

// Contains checks name against the matching set, ignoring case.
func (s *WhitelistSnapshot) Contains(name string) bool {
	_, ok := s.lower[strings.ToLower(name)]
	return ok
}

// UpdatedAt is the remote timestamp string, if the endpoint sent one.
func (s *WhitelistSnapshot) UpdatedAt() string {
	return s.updatedAt
}

// LoadedAt is when this snapshot was built locally.
func (s *WhitelistSnapshot) LoadedAt() time.Time {
	return s.loadedAt
}
