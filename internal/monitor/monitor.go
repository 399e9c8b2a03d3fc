// Package monitor tracks which scored properties have already been notified so
// the watch loop does not repeat the same listings every cycle.
//
// A property is suppressed while it is inside the cooldown window, unless its
// rating band changed since it was last sent.
package monitor

import (
	"sync"
	"time"

	"github.com/rewired-gh/rentscore/internal/models"
)

type notifiedRecord struct {
	Rating string
	SentAt time.Time
}

// Monitor remembers notified properties per zip code. Safe for concurrent use.
type Monitor struct {
	notified map[string]notifiedRecord
	mu       sync.Mutex
	now      func() time.Time
}

// New creates an empty Monitor.
func New() *Monitor {
	return &Monitor{
		notified: make(map[string]notifiedRecord),
		now:      time.Now,
	}
}

func recordKey(zip, propertyID string) string {
	return zip + ":" + propertyID
}

// FilterRecentlySent returns a copy of r without the scores that were notified
// within cooldown with the same rating. Ranking order is kept and Scores is never nil.
func (m *Monitor) FilterRecentlySent(r models.Report, cooldown time.Duration) models.Report {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	filtered := make([]models.InvestmentScore, 0, len(r.Scores))
	for _, s := range r.Scores {
		rec, exists := m.notified[recordKey(r.ZipCode, s.PropertyID)]
		if exists && now.Sub(rec.SentAt) < cooldown && rec.Rating == s.Rating.Label {
			continue
		}
		filtered = append(filtered, s)
	}

	out := r
	out.Scores = filtered
	return out
}

// RecordNotified marks every score of r as sent now.
func (m *Monitor) RecordNotified(r models.Report) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for _, s := range r.Scores {
		m.notified[recordKey(r.ZipCode, s.PropertyID)] = notifiedRecord{
			Rating: s.Rating.Label,
			SentAt: now,
		}
	}
}

// Rotate forgets records older than maxAge and returns how many were removed.
func (m *Monitor) Rotate(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for key, rec := range m.notified {
		if now.Sub(rec.SentAt) >= maxAge {
			delete(m.notified, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of remembered properties.
func (m *Monitor) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.notified)
}
