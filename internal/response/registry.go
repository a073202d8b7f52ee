package response

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

var (
	ErrDuplicateCallsign = errors.New("duplicate callsign")
	ErrEmptyCallsign     = errors.New("empty callsign")
	ErrUnknownMention    = errors.New("mention handler not registered")
)

// Factory builds a handler from the shared services.
type Factory func(deps *Deps) Handler

var (
	factoriesMu sync.Mutex
	factories   []Factory
)

// Register adds a handler factory to the default set. Handler packages call
// it from init.
func Register(f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories = append(factories, f)
}

// Factories returns the registered factories in registration order.
func Factories() []Factory {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	return append([]Factory(nil), factories...)
}

// Options configure a registry build.
type Options struct {
	// Mention is the callsign of the hidden handler that answers direct
	// mentions of the bot. Empty disables mention handling.
	Mention string
}

// Registry holds one instance of every handler, keyed by callsign.
type Registry struct {
	handlers map[string]Handler
	order    []string
	mention  Handler
}

// Build instantiates every factory. Deps.Registry is set to the result so
// handlers that list their peers (help) can reach it.
func Build(deps *Deps, opts Options, fs ...Factory) (*Registry, error) {
	r := &Registry{handlers: make(map[string]Handler, len(fs))}
	deps.Registry = r

	for _, f := range fs {
		h := f(deps)
		name := h.Callsign()
		if name == "" {
			return nil, fmt.Errorf("%w: %T", ErrEmptyCallsign, h)
		}
		if _, exists := r.handlers[name]; exists {
			return nil, fmt.Errorf("%w: %q (%T)", ErrDuplicateCallsign, name, h)
		}
		r.handlers[name] = h
		r.order = append(r.order, name)
		log.Debug().Str("callsign", name).Msgf("[REGISTRY] %T registered", h)
	}

	if opts.Mention != "" {
		h, ok := r.handlers[opts.Mention]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownMention, opts.Mention)
		}
		r.mention = h
	}

	log.Info().Int("handlers", len(r.order)).Msg("[REGISTRY] Response handlers ready")
	return r, nil
}

// Get returns the handler registered under callsign.
func (r *Registry) Get(callsign string) (Handler, bool) {
	h, ok := r.handlers[callsign]
	return h, ok
}

// Mention returns the hidden mention handler, or nil.
func (r *Registry) Mention() Handler {
	return r.mention
}

// All returns every handler in registration order.
func (r *Registry) All() []Handler {
	out := make([]Handler, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.handlers[name])
	}
	return out
}

// Listed returns the handlers that belong in help listings: non-empty blurb,
// not the mention handler, sorted by callsign.
func (r *Registry) Listed() []Handler {
	var out []Handler
	for _, h := range r.handlers {
		if h.Blurb() == "" || h == r.mention {
			continue
		}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Callsign() < out[j].Callsign()
	})
	return out
}

// Start runs the Start hook of every handler that has one.
func (r *Registry) Start(ctx context.Context) {
	for _, h := range r.All() {
		if s, ok := h.(Starter); ok {
			s.Start(ctx)
		}
	}
}

// Close waits out the background work of every handler that implements
// io.Closer.
func (r *Registry) Close() error {
	var errs []error
	for _, h := range r.All() {
		if c, ok := h.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}
