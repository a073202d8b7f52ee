package response

import (
	"time"

	"wigglebot/internal/ai"
	"wigglebot/internal/autofire"
	"wigglebot/internal/chat"
	"wigglebot/internal/config"
	"wigglebot/internal/giphy"
	"wigglebot/internal/post"
	"wigglebot/internal/prompts"
	"wigglebot/internal/rating"
	"wigglebot/internal/selfaware"
	"wigglebot/internal/storage"
	"wigglebot/internal/textfx"
	"wigglebot/pkg/workpool"
)

// Deps are the services handlers are built from. Fields a handler does not
// use may be nil.
type Deps struct {
	Config   *config.Config
	Client   chat.Client
	Poster   *post.Poster
	AI       ai.Provider
	Store    *storage.Storage
	State    selfaware.Store
	Prompts  *prompts.Book
	Rater    *rating.Rater
	Pool     *workpool.Pool
	Autofire *autofire.Scheduler
	Giphy    *giphy.Client
	Clock    func() time.Time
	Rand     textfx.Rand

	// Registry is filled in by Build.
	Registry *Registry
}

// Now reads the injected clock.
func (d *Deps) Now() time.Time {
	if d.Clock == nil {
		return time.Now()
	}
	return d.Clock()
}

// IsMe reports whether u is the bot account.
func (d *Deps) IsMe(u chat.User) bool {
	return d.Client != nil && u.ID == d.Client.Me().ID
}

// Random returns the injected random source or the global one.
func (d *Deps) Random() textfx.Rand {
	if d.Rand == nil {
		return textfx.DefaultRand
	}
	return d.Rand
}
