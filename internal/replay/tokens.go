package replay

import (
	"sync"
	"time"

	"github.com/FermatTheorem/NoShitProxy/internal/constants"
	"github.com/FermatTheorem/NoShitProxy/internal/models"
	"github.com/FermatTheorem/NoShitProxy/internal/utils"
)

// PendingReplay is one registered browser-open request, waiting for its
// single retrieval.
type PendingReplay struct {
	Method  string
	URL     string
	Headers models.HeaderPairs
	Body    []byte
	created time.Time
}

// TokenRegistry hands out short-lived, single-use replay tokens. A token is
// consumed by its first retrieval and evaporates after the TTL either way,
// so a generated target never becomes a standing replay oracle.
type TokenRegistry struct {
	mu      sync.Mutex
	pending map[string]PendingReplay
	ttl     time.Duration
	max     int
}

func NewTokenRegistry() *TokenRegistry {
	return &TokenRegistry{
		pending: make(map[string]PendingReplay),
		ttl:     constants.ReplayTokenTTL,
		max:     constants.MaxPendingReplays,
	}
}

// Put registers a replay spec and returns its token. Registration fails once
// the pending set is full, after expired entries have been pruned.
func (r *TokenRegistry) Put(method, targetURL string, headers models.HeaderPairs, body []byte) (string, bool) {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.pruneLocked(now)
	if len(r.pending) >= r.max {
		return "", false
	}

	token := utils.GenerateUUID()
	r.pending[token] = PendingReplay{
		Method:  method,
		URL:     targetURL,
		Headers: headers,
		Body:    body,
		created: now,
	}
	return token, true
}

// Take removes and returns the spec for token. The second retrieval of the
// same token finds nothing.
func (r *TokenRegistry) Take(token string) (PendingReplay, bool) {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.pruneLocked(now)
	spec, ok := r.pending[token]
	if ok {
		delete(r.pending, token)
	}
	return spec, ok
}

// Pending reports how many unexpired tokens are outstanding.
func (r *TokenRegistry) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneLocked(time.Now())
	return len(r.pending)
}

func (r *TokenRegistry) pruneLocked(now time.Time) {
	for token, spec := range r.pending {
		if now.Sub(spec.created) > r.ttl {
			delete(r.pending, token)
		}
	}
}
