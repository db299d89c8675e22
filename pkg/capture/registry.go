package capture

import (
	"regexp"
	"strings"
	"sync"

	"github.com/getwiretap/wiretap/internal/id"
	"github.com/getwiretap/wiretap/internal/matching"
)

// Info is a read-only snapshot of one registration.
type Info struct {
	ID      string `json:"id"`
	Method  string `json:"method"`
	Pattern string `json:"pattern"`
}

// Match is the registration resolved for a call, snapshotted at match time so
// a concurrent Update or Remove cannot race the invocation.
type Match struct {
	ID       string
	Callback Callback
}

type registration struct {
	id       string
	method   string
	pattern  matching.Pattern
	callback Callback
}

// Registry is a thread-safe, ordered collection of capture registrations.
// Matching walks registrations in registration order and stops at the first
// hit, so earlier registrations shadow later ones.
type Registry struct {
	mu      sync.RWMutex
	entries []*registration
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a capture for the given method and literal URL pattern and
// returns a handle for later removal or callback replacement. The method is
// normalized to uppercase; "*" matches every method. The pattern matches by
// substring containment after both pattern and candidate URL are stripped of
// their scheme and trailing slash.
func (r *Registry) Register(method, urlPattern string, cb Callback) *Handle {
	return r.add(method, matching.NewLiteral(urlPattern), cb)
}

// RegisterRegexp adds a capture whose URL test applies re against the raw,
// unmodified URL. A nil re matches nothing.
func (r *Registry) RegisterRegexp(method string, re *regexp.Regexp, cb Callback) *Handle {
	return r.add(method, matching.NewRegexp(re), cb)
}

func (r *Registry) add(method string, pattern matching.Pattern, cb Callback) *Handle {
	reg := &registration{
		id:       id.Capture(),
		method:   strings.ToUpper(method),
		pattern:  pattern,
		callback: cb,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, reg)
	return &Handle{id: reg.id, registry: r}
}

// Match resolves the first registration, in registration order, whose method
// and URL tests both pass. At most one registration is ever considered the
// match for a call.
func (r *Registry) Match(method, url string) (Match, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, reg := range r.entries {
		if !matching.MatchMethod(reg.method, method) {
			continue
		}
		if !reg.pattern.Match(url) {
			continue
		}
		return Match{ID: reg.id, Callback: reg.callback}, true
	}
	return Match{}, false
}

// Infos returns a read-only snapshot of all registrations in order.
func (r *Registry) Infos() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.entries))
	for _, reg := range r.entries {
		infos = append(infos, Info{
			ID:      reg.id,
			Method:  reg.method,
			Pattern: reg.pattern.String(),
		})
	}
	return infos
}

// Len returns the number of registrations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Clear empties the registry and returns how many registrations it removed.
func (r *Registry) Clear() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.entries)
	r.entries = nil
	return n
}

func (r *Registry) remove(regID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, reg := range r.entries {
		if reg.id == regID {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return
		}
	}
}

func (r *Registry) update(regID string, cb Callback) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, reg := range r.entries {
		if reg.id == regID {
			reg.callback = cb
			return
		}
	}
}

// Handle identifies one registration and allows removing it or swapping its
// callback without holding a reference to the registry.
type Handle struct {
	id       string
	registry *Registry
}

// ID returns the registration's identifier.
func (h *Handle) ID() string {
	return h.id
}

// Remove deletes the registration. Removing an already-removed handle is a
// no-op.
func (h *Handle) Remove() {
	h.registry.remove(h.id)
}

// Update swaps the registration's callback. It is a no-op if the
// registration has been removed.
func (h *Handle) Update(cb Callback) {
	h.registry.update(h.id, cb)
}
