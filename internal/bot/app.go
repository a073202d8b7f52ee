// Package bot assembles the services behind a chat client into a running
// bot. Both front ends build on it.
package bot

import (
	"context"
	"errors"
	"fmt"

	"wigglebot/internal/ai"
	"wigglebot/internal/autofire"
	"wigglebot/internal/chat"
	"wigglebot/internal/config"
	"wigglebot/internal/dispatch"
	"wigglebot/internal/giphy"
	"wigglebot/internal/post"
	"wigglebot/internal/prompts"
	"wigglebot/internal/rating"
	"wigglebot/internal/response"
	"wigglebot/internal/responses/gpt"
	"wigglebot/internal/storage"
	"wigglebot/pkg/jobmgr"
	"wigglebot/pkg/workpool"

	"github.com/rs/zerolog/log"
)

// App is a fully wired bot.
type App struct {
	Deps       *response.Deps
	Registry   *response.Registry
	Dispatcher *dispatch.Dispatcher
	Jobs       *jobmgr.Manager

	closers []func() error
}

// Options override the services New would otherwise build from config.
// Tests and the console front end use them.
type Options struct {
	AI ai.Provider
}

// New builds every service from cfg around client. Handlers must already be
// registered; ctx bounds the background jobs.
func New(ctx context.Context, cfg *config.Config, client chat.Client, opts Options) (*App, error) {
	a := &App{}

	store, err := storage.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a.closers = append(a.closers, store.Close)

	state, err := storage.NewStateStore(cfg.StoragePath)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open state store: %w", err)
	}
	a.closers = append(a.closers, state.Close)

	book, err := prompts.Load(cfg.PromptsPath, store)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load prompts: %w", err)
	}

	rater, err := rating.New()
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load rater: %w", err)
	}

	provider := opts.AI
	if provider == nil {
		if provider, err = ai.DefaultProvider(cfg); err != nil {
			a.Close()
			return nil, fmt.Errorf("ai provider: %w", err)
		}
	}

	pool := workpool.New(cfg.WorkerPoolSize)
	a.closers = append(a.closers, func() error { pool.Close(); return nil })

	a.Jobs = jobmgr.NewManager(ctx, func(s string) {
		log.Debug().Str("status", s).Msg("[JOBS] Status changed")
	})
	a.closers = append(a.closers, func() error { a.Jobs.StopAll(); return nil })

	poster := post.New(client, cfg.PostChunkSize)
	a.Deps = &response.Deps{
		Config:   cfg,
		Client:   client,
		Poster:   poster,
		AI:       provider,
		Store:    store,
		State:    state,
		Prompts:  book,
		Rater:    rater,
		Pool:     pool,
		Autofire: autofire.New(poster, a.Jobs, nil),
		Giphy:    giphy.New(cfg.GiphyKey, ""),
	}

	a.Registry, err = response.Build(a.Deps, response.Options{Mention: gpt.MentionCallsign}, response.Factories()...)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("build handlers: %w", err)
	}
	a.closers = append(a.closers, a.Registry.Close)
	a.Dispatcher = dispatch.New(a.Deps, a.Registry)
	return a, nil
}

// Start runs the handlers' start hooks. Call it once the client knows who
// it is.
func (a *App) Start(ctx context.Context) {
	a.Registry.Start(ctx)
}

// Close stops background work and releases storage, newest first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
