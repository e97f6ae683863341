package results

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/kailas-cloud/prospect/internal/domain"
)

// DefaultSession is the slot used when a caller does not identify itself.
// It reproduces the single-caller behavior of one "current" result set.
const DefaultSession = "default"

// Cache holds the most recent ranked result set per session, bounded by an
// LRU policy. Each Put replaces the session's set wholesale, never merges.
type Cache struct {
	sessions *lru.Cache[string, []domain.CompanyMatch]
}

// New creates a result cache holding at most size sessions.
func New(size int) (*Cache, error) {
	sessions, err := lru.New[string, []domain.CompanyMatch](size)
	if err != nil {
		return nil, err
	}
	return &Cache{sessions: sessions}, nil
}

// Put replaces the session's result set.
func (c *Cache) Put(session string, matches []domain.CompanyMatch) {
	if session == "" {
		session = DefaultSession
	}
	c.sessions.Add(session, matches)
}

// Get returns the session's full result set.
func (c *Cache) Get(session string) ([]domain.CompanyMatch, bool) {
	if session == "" {
		session = DefaultSession
	}
	return c.sessions.Get(session)
}

// GetByPosition resolves a 0-based index against the session's current set.
// Out-of-bounds indices (including negative) report absence, not an error.
func (c *Cache) GetByPosition(session string, index int) (domain.CompanyMatch, bool) {
	matches, ok := c.Get(session)
	if !ok || index < 0 || index >= len(matches) {
		return domain.CompanyMatch{}, false
	}
	return matches[index], true
}
