// Package response defines the bot's pluggable response handlers: the
// cooldown gate, the responder override chain and the handler registry.
package response

import (
	"context"
	"fmt"
	"time"

	"wigglebot/internal/chat"

	"github.com/rs/zerolog/log"
)

// Handler is the capability set every response unit carries. Embed Base to
// get all of it.
type Handler interface {
	Callsign() string
	Blurb() string
	Help() string
	Timer() *Timer
	ManualTimer() bool
}

// The override chain. A handler implements whichever level it needs; every
// level it leaves out falls through to the next simpler one.
type (
	Responder interface {
		Respond(ctx context.Context) (string, error)
	}
	TextResponder interface {
		RespondToText(ctx context.Context, text string) (string, error)
	}
	MessageResponder interface {
		RespondToMessage(ctx context.Context, text string, req *chat.Message) (string, error)
	}
	ContextResponder interface {
		RespondWithContext(ctx context.Context, text string, req *chat.Message, channel *chat.Channel) (Result, error)
	}
)

// Starter is implemented by handlers that need to resume work once the
// registry is up.
type Starter interface {
	Start(ctx context.Context)
}

// Result is what a handler hands back to the dispatcher.
//
// Empty Text means nothing is posted. A nil ReplyTo posts Text as a fresh
// message in the channel. The zero Result doubles as "the handler already
// posted everything itself". Ack asks the dispatcher to acknowledge ReplyTo
// with a reaction instead of text.
type Result struct {
	Text    string
	ReplyTo *chat.Message
	Ack     bool
}

// Reply pairs text with the message it answers.
func Reply(text string, to *chat.Message) Result {
	return Result{Text: text, ReplyTo: to}
}

// Fresh posts text as a new message.
func Fresh(text string) Result {
	return Result{Text: text}
}

// Handled reports that the handler did its own posting.
func Handled() Result {
	return Result{}
}

// Acknowledge marks silent success on req.
func Acknowledge(req *chat.Message) Result {
	return Result{ReplyTo: req, Ack: true}
}

// Postable reports whether the result carries text to post.
func (r Result) Postable() bool {
	return r.Text != ""
}

// Option tweaks a Base at construction.
type Option func(*Base)

// WithCooldown rate limits the handler.
func WithCooldown(d time.Duration) Option {
	return func(b *Base) { b.timer = NewTimer(d) }
}

// WithManualTimer skips the automatic cooldown check; the handler manages
// its own timing.
func WithManualTimer() Option {
	return func(b *Base) { b.manual = true }
}

// Base carries the common handler attributes.
type Base struct {
	callsign string
	blurb    string
	manual   bool
	timer    *Timer
}

// NewBase builds the embedded part of a handler.
func NewBase(callsign, blurb string, opts ...Option) Base {
	b := Base{
		callsign: callsign,
		blurb:    blurb,
		timer:    NewTimer(DefaultCooldown),
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (b *Base) Callsign() string  { return b.callsign }
func (b *Base) Blurb() string     { return b.blurb }
func (b *Base) Timer() *Timer     { return b.timer }
func (b *Base) ManualTimer() bool { return b.manual }

// Help is the fallback detailed help text.
func (b *Base) Help() string {
	return fmt.Sprintf("!%s will %s.", b.callsign, b.blurb)
}

// GetResponse is the cooldown-gated entry point into a handler. Errors from
// the handler are logged and turned into a short message for the channel.
func GetResponse(ctx context.Context, h Handler, text string, req *chat.Message, channel *chat.Channel, now time.Time) Result {
	if !h.ManualTimer() && !h.Timer().Check(now) {
		return Reply(fmt.Sprintf("!%s is on cooldown (%ds left)", h.Callsign(), h.Timer().Remaining(now)), req)
	}

	res, err := RespondWithContext(ctx, h, text, req, channel)
	if err != nil {
		log.Error().Err(err).Str("callsign", h.Callsign()).Msg("[RESPONSE] Handler failed")
		return Reply(ErrorText(err), req)
	}
	return res
}

// RespondWithContext walks the override chain from its most specific level.
func RespondWithContext(ctx context.Context, h Handler, text string, req *chat.Message, channel *chat.Channel) (Result, error) {
	if r, ok := h.(ContextResponder); ok {
		return r.RespondWithContext(ctx, text, req, channel)
	}
	out, err := respondToMessage(ctx, h, text, req)
	return Reply(out, req), err
}

func respondToMessage(ctx context.Context, h Handler, text string, req *chat.Message) (string, error) {
	if r, ok := h.(MessageResponder); ok {
		return r.RespondToMessage(ctx, text, req)
	}
	return respondToText(ctx, h, text)
}

func respondToText(ctx context.Context, h Handler, text string) (string, error) {
	if r, ok := h.(TextResponder); ok {
		return r.RespondToText(ctx, text)
	}
	if r, ok := h.(Responder); ok {
		return r.Respond(ctx)
	}
	return "", nil
}

const maxErrorText = 300

// ErrorText renders an error for a chat message.
func ErrorText(err error) string {
	msg := err.Error()
	if len(msg) > maxErrorText {
		msg = msg[:maxErrorText] + "..."
	}
	return "Something went wrong :pensive: (" + msg + ")"
}
