package requestlog

import (
	"strings"
	"sync"
	"time"
)

// DefaultMaxEntries is the buffer capacity used when none is given.
const DefaultMaxEntries = 1000

// Log is an in-memory circular buffer of request entries.
type Log struct {
	mu         sync.RWMutex
	entries    []*Entry
	maxEntries int
	nextID     int64
}

// NewLog creates a request log holding at most maxEntries entries.
func NewLog(maxEntries int) *Log {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Log{
		entries:    make([]*Entry, 0, maxEntries),
		maxEntries: maxEntries,
	}
}

// Add records an entry, evicting the oldest when at capacity.
func (l *Log) Add(entry *Entry) {
	if entry == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if entry.ID == "" {
		l.nextID++
		entry.ID = "req-" + base36(l.nextID)
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	if len(l.entries) >= l.maxEntries {
		l.entries = l.entries[1:]
	}
	l.entries = append(l.entries, entry)
}

// Get retrieves an entry by ID, or nil if not present.
func (l *Log) Get(id string) *Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, entry := range l.entries {
		if entry.ID == id {
			return entry
		}
	}
	return nil
}

// List returns entries newest first, optionally filtered.
func (l *Log) List(filter *Filter) []*Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]*Entry, 0, len(l.entries))
	for i := len(l.entries) - 1; i >= 0; i-- {
		entry := l.entries[i]
		if filter != nil && !matchesFilter(entry, filter) {
			continue
		}
		result = append(result, entry)
	}

	if filter != nil {
		if filter.Offset > 0 {
			if filter.Offset >= len(result) {
				return []*Entry{}
			}
			result = result[filter.Offset:]
		}
		if filter.Limit > 0 && filter.Limit < len(result) {
			result = result[:filter.Limit]
		}
	}
	return result
}

// Clear removes all entries.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = make([]*Entry, 0, l.maxEntries)
}

// Count returns the number of entries currently held.
func (l *Log) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

func matchesFilter(entry *Entry, filter *Filter) bool {
	if filter.ProjectID != "" && entry.ProjectID != filter.ProjectID {
		return false
	}
	if filter.EndpointID != "" && entry.EndpointID != filter.EndpointID {
		return false
	}
	if filter.Method != "" && entry.Method != filter.Method {
		return false
	}
	if filter.Path != "" && !strings.HasPrefix(entry.Path, filter.Path) {
		return false
	}
	if filter.StatusCode != 0 && entry.ResponseStatus != filter.StatusCode {
		return false
	}
	return true
}

func base36(n int64) string {
	const charset = "0123456789abcdefghijklmnopqrstuvwxyz"
	if n == 0 {
		return "0"
	}
	var result []byte
	for n > 0 {
		result = append([]byte{charset[n%36]}, result...)
		n /= 36
	}
	return string(result)
}
