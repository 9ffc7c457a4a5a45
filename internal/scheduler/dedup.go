package scheduler

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const dedupRetention = 48 * time.Hour

// instantSet remembers which (reminder, token, hour) triples were already
// dispatched so a repeated tick in the same minute sends nothing new.
type instantSet struct {
	mu   sync.Mutex
	seen map[string]time.Time
}

func newInstantSet() *instantSet {
	return &instantSet{seen: make(map[string]time.Time)}
}

func instantKey(reminderID uuid.UUID, token string, local time.Time) string {
	return reminderID.String() + "|" + token + "|" + local.Format("2006-01-02T15")
}

// claim records key and reports whether it was new.
func (s *instantSet) claim(key string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = now
	return true
}

func (s *instantSet) prune(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, at := range s.seen {
		if now.Sub(at) > dedupRetention {
			delete(s.seen, k)
		}
	}
}

func (s *instantSet) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}
