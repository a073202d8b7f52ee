// Package autofire lets a handler speak on its own after a channel has been
// quiet for a while.
package autofire

import (
	"context"
	"sync"
	"time"

	"wigglebot/internal/chat"
	"wigglebot/internal/post"
	"wigglebot/pkg/jobmgr"

	"github.com/rs/zerolog/log"
)

// MinInterval is the shortest interval a loop runs with. A loop whose
// interval drops below it ends.
const MinInterval = time.Minute

// DefaultGrace is added to every sleep so a loop wakes just after the
// deadline rather than just before it.
const DefaultGrace = 5 * time.Second

// Autofirer is a handler that can produce unprompted messages.
type Autofirer interface {
	Callsign() string
	// AutofireInterval is polled every iteration, so it may change while the
	// loop runs.
	AutofireInterval() time.Duration
	Autofire(ctx context.Context, channelID string) (string, error)
}

type loop struct {
	channelID string
	last      time.Time
}

// Scheduler owns one loop per autofiring handler.
type Scheduler struct {
	poster *post.Poster
	jobs   *jobmgr.Manager
	clock  func() time.Time
	sleep  func(ctx context.Context, d time.Duration) bool
	Grace  time.Duration

	mu    sync.Mutex
	loops map[string]*loop
}

// New returns a scheduler posting through poster and running its loops as
// jobs on jobs.
func New(poster *post.Poster, jobs *jobmgr.Manager, clock func() time.Time) *Scheduler {
	if clock == nil {
		clock = time.Now
	}
	return &Scheduler{
		poster: poster,
		jobs:   jobs,
		clock:  clock,
		sleep:  sleepCtx,
		Grace:  DefaultGrace,
		loops:  map[string]*loop{},
	}
}

func jobName(callsign string) string {
	return "autofire:" + callsign
}

// Arm points h's loop at channelID, counts the silence from now, and starts
// the loop if it is not already running and the interval allows it.
func (s *Scheduler) Arm(h Autofirer, channelID string) {
	s.mu.Lock()
	l, ok := s.loops[h.Callsign()]
	if !ok {
		l = &loop{}
		s.loops[h.Callsign()] = l
	}
	l.channelID = channelID
	l.last = s.clock()
	s.mu.Unlock()

	if h.AutofireInterval() < MinInterval {
		return
	}
	name := jobName(h.Callsign())
	if s.jobs.Running(name) {
		return
	}
	if err := s.jobs.StartAsync(name, func(ctx context.Context) error {
		s.run(ctx, h)
		return nil
	}); err != nil {
		log.Debug().Err(err).Str("callsign", h.Callsign()).Msg("[AUTOFIRE] Loop already running")
		return
	}
	log.Info().Str("callsign", h.Callsign()).Str("channel", channelID).Msg("[AUTOFIRE] Loop started")
}

// Touch records activity in a channel, pushing back every loop watching it.
func (s *Scheduler) Touch(channelID string) {
	now := s.clock()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.loops {
		if l.channelID == channelID {
			l.last = now
		}
	}
}

// Stop ends h's loop, if any.
func (s *Scheduler) Stop(callsign string) {
	_ = s.jobs.Stop(jobName(callsign))
}

// Running reports whether the loop of callsign is alive.
func (s *Scheduler) Running(callsign string) bool {
	return s.jobs.Running(jobName(callsign))
}

func (s *Scheduler) state(callsign string) (channelID string, last time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.loops[callsign]
	return l.channelID, l.last
}

func (s *Scheduler) reset(callsign string) {
	now := s.clock()
	s.mu.Lock()
	s.loops[callsign].last = now
	s.mu.Unlock()
}

func (s *Scheduler) run(ctx context.Context, h Autofirer) {
	cs := h.Callsign()
	defer log.Info().Str("callsign", cs).Msg("[AUTOFIRE] Loop stopped")

	for {
		interval := h.AutofireInterval()
		if interval < MinInterval {
			return
		}

		channelID, last := s.state(cs)
		wait := last.Add(interval).Sub(s.clock())
		if wait > 0 {
			if !s.sleep(ctx, wait+s.Grace) {
				return
			}
			continue
		}

		text, err := h.Autofire(ctx, channelID)
		if err != nil {
			log.Error().Err(err).Str("callsign", cs).Msg("[AUTOFIRE] Failed to generate message")
		} else if text != "" {
			s.poster.Post(ctx, text, post.To(channelID), chat.SendOptions{})
		}
		s.reset(cs)

		if ctx.Err() != nil {
			return
		}
	}
}

// sleepCtx sleeps for d and reports false if ctx ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
