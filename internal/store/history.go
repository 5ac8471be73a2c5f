package store

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/techkeshav23/Flux/internal/models"
)

// MaxHistoryItems caps the scan history; the oldest entry is evicted on
// overflow.
const MaxHistoryItems = 50

// HistoryStore owns the device's capped, newest-first scan history record.
type HistoryStore struct {
	mu      sync.Mutex
	adapter Adapter
	entries []models.ScanEntry
	lastID  int64
	now     func() time.Time
}

// NewHistoryStore loads the persisted history through the adapter.
func NewHistoryStore(adapter Adapter) (*HistoryStore, error) {
	s := &HistoryStore{
		adapter: adapter,
		now:     time.Now,
	}

	var loaded []models.ScanEntry
	found, err := adapter.Load(&loaded)
	if err != nil {
		return nil, fmt.Errorf("failed to load scan history: %w", err)
	}
	if found {
		s.entries = loaded
		for _, entry := range loaded {
			if entry.ID > s.lastID {
				s.lastID = entry.ID
			}
		}
	}
	return s, nil
}

// AddScan prepends a new entry, derives its id/timestamp/display time,
// truncates stored ingredients, evicts past the cap and persists. The
// completed entry is returned.
func (s *HistoryStore) AddScan(entry models.ScanEntry) (models.ScanEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	entry.ID = s.nextID(now)
	entry.Timestamp = now.UTC().Format(time.RFC3339)
	entry.DisplayTime = models.RelativeTime(now, now)
	if len(entry.Ingredients) > models.MaxIngredientsStored {
		entry.Ingredients = entry.Ingredients[:models.MaxIngredientsStored]
	}

	s.entries = append([]models.ScanEntry{entry}, s.entries...)
	if len(s.entries) > MaxHistoryItems {
		s.entries = s.entries[:MaxHistoryItems]
	}
	if err := s.persist(); err != nil {
		return models.ScanEntry{}, err
	}
	return entry, nil
}

// RemoveScan deletes a single entry by id and persists.
func (s *HistoryStore) RemoveScan(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, entry := range s.entries {
		if entry.ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return s.persist()
		}
	}
	return fmt.Errorf("%w: %d", models.ErrScanNotFound, id)
}

// Clear removes the persisted record entirely.
func (s *HistoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.adapter.Delete(); err != nil {
		return fmt.Errorf("failed to clear scan history: %w", err)
	}
	s.entries = nil
	return nil
}

// Scans returns the history newest-first with display times recomputed.
func (s *HistoryStore) Scans() []models.ScanEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refreshDisplayTimes()
	out := make([]models.ScanEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// ScanByID returns a single entry.
func (s *HistoryStore) ScanByID(id int64) (models.ScanEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range s.entries {
		if entry.ID == id {
			return entry, nil
		}
	}
	return models.ScanEntry{}, fmt.Errorf("%w: %d", models.ErrScanNotFound, id)
}

// Stats recounts verdict totals. A full pass per call is fine under the
// 50-item cap. Verdict matching is case-insensitive so records written by
// older clients still count.
func (s *HistoryStore) Stats() models.ScanStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := models.ScanStats{Total: len(s.entries)}
	for _, entry := range s.entries {
		switch {
		case strings.EqualFold(string(entry.Verdict), string(models.VerdictSafe)):
			stats.Safe++
		case strings.EqualFold(string(entry.Verdict), string(models.VerdictAvoid)):
			stats.Avoid++
		default:
			stats.Caution++
		}
	}
	return stats
}

// RefreshDisplayTimes recomputes every entry's relative display time from
// its timestamp. Display time is presentation state, so nothing is
// persisted.
func (s *HistoryStore) RefreshDisplayTimes() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshDisplayTimes()
}

func (s *HistoryStore) refreshDisplayTimes() {
	now := s.now()
	for i := range s.entries {
		t, err := time.Parse(time.RFC3339, s.entries[i].Timestamp)
		if err != nil {
			continue
		}
		s.entries[i].DisplayTime = models.RelativeTime(t, now)
	}
}

// nextID issues a millisecond-clock token that is strictly monotonic even
// when two scans land in the same millisecond.
func (s *HistoryStore) nextID(now time.Time) int64 {
	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

func (s *HistoryStore) persist() error {
	if err := s.adapter.Save(s.entries); err != nil {
		return fmt.Errorf("failed to save scan history: %w", err)
	}
	return nil
}
