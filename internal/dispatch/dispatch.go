// Package dispatch routes inbound chat messages to response handlers and
// posts what they return.
package dispatch

import (
	"context"
	"strings"

	"wigglebot/internal/chat"
	"wigglebot/internal/flags"
	"wigglebot/internal/post"
	"wigglebot/internal/response"
	"wigglebot/internal/selfaware"
	"wigglebot/internal/textfx"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// AckEmoji marks a request that succeeded without a text reply.
const AckEmoji = "✅"

// DefaultShinyOdds is the 1-in-N chance of a sparkly response.
const DefaultShinyOdds = 8191

const usersToken = "$users"

type Dispatcher struct {
	deps *response.Deps
	reg  *response.Registry
}

// New returns a dispatcher over a built registry.
func New(deps *response.Deps, reg *response.Registry) *Dispatcher {
	return &Dispatcher{deps: deps, reg: reg}
}

// HandleMessage runs one inbound message through the handlers and posts
// their results. It blocks until every post is done.
func (d *Dispatcher) HandleMessage(ctx context.Context, msg *chat.Message) {
	if d.deps.IsMe(msg.Author) {
		return
	}
	if cfg := d.deps.Config; cfg != nil && cfg.IsGuildBlacklisted(msg.GuildID) {
		return
	}

	logger := log.With().
		Str("dispatch", uuid.NewString()).
		Str("guild", msg.GuildID).
		Str("channel", msg.ChannelID).
		Logger()
	ctx = logger.WithContext(ctx)

	fl, text := flags.Extract(msg.Content)
	text = d.preprocess(ctx, msg, text)

	if d.deps.Autofire != nil {
		d.deps.Autofire.Touch(msg.ChannelID)
	}

	channel, err := d.deps.Client.Channel(ctx, msg.ChannelID)
	if err != nil {
		logger.Error().Err(err).Msg("[DISPATCH] Failed to resolve channel")
		return
	}

	newThread := false
	if flags.Has(fl, flags.Thread) && channel.Kind == chat.KindText {
		if th, err := d.startThread(ctx, msg, text); err != nil {
			logger.Warn().Err(err).Msg("[DISPATCH] Failed to create thread, answering in channel")
		} else {
			channel, newThread = th, true
		}
	}

	handlers := d.route(ctx, msg, fl)
	if len(handlers) == 0 {
		return
	}

	for _, h := range handlers {
		logger.Debug().Str("callsign", h.Callsign()).Msg("[DISPATCH] Running handler")
		res := response.GetResponse(ctx, h, text, msg, channel, d.deps.Now())
		d.deliver(ctx, res, fl, channel, newThread)
	}
}

func (d *Dispatcher) startThread(ctx context.Context, msg *chat.Message, text string) (*chat.Channel, error) {
	members, err := d.deps.Client.Members(ctx, msg.ChannelID)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("[DISPATCH] Failed to list members for thread name")
	}
	return d.deps.Client.CreateThread(ctx, msg, chat.ThreadName(msg, text, members))
}

// route picks the handlers for a message: the self-awareness redirect
// first, then the mention handler, then every flagged callsign in order.
func (d *Dispatcher) route(ctx context.Context, msg *chat.Message, fl []string) []response.Handler {
	mentioned := false
	for _, u := range msg.Mentions {
		if d.deps.IsMe(u) {
			mentioned = true
			break
		}
	}

	switch d.redirect(ctx, msg, mentioned) {
	case selfaware.DoNotRespond:
		return nil
	case selfaware.Capture:
		if h, ok := d.reg.Get(selfaware.Callsign); ok {
			return []response.Handler{h}
		}
	}

	if mentioned {
		if h := d.reg.Mention(); h != nil {
			return []response.Handler{h}
		}
		return nil
	}

	var out []response.Handler
	seen := map[string]bool{}
	for _, f := range fl {
		if seen[f] {
			continue
		}
		seen[f] = true
		if h, ok := d.reg.Get(f); ok {
			out = append(out, h)
		}
	}
	return out
}

func (d *Dispatcher) redirect(ctx context.Context, msg *chat.Message, mentioned bool) selfaware.Decision {
	if d.deps.State == nil {
		return selfaware.RespondNormally
	}
	st, err := d.deps.State.LoadState()
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("[DISPATCH] No self-awareness state")
		return selfaware.RespondNormally
	}
	return selfaware.Decide(st, mentioned, msg.GuildID, msg.ChannelID)
}

func (d *Dispatcher) deliver(ctx context.Context, res response.Result, fl []string, channel *chat.Channel, newThread bool) {
	if res.Ack {
		if res.ReplyTo != nil {
			if err := d.deps.Client.React(ctx, res.ReplyTo, AckEmoji); err != nil {
				zerolog.Ctx(ctx).Warn().Err(err).Msg("[DISPATCH] Failed to add reaction")
			}
		}
		return
	}
	if !res.Postable() {
		return
	}

	text := d.modify(res.Text, fl)
	opts := chat.SendOptions{TTS: flags.Has(fl, flags.TTS)}

	target := post.ReplyTo(res.ReplyTo)
	if res.ReplyTo == nil || newThread {
		target = post.To(channel.ID)
	}
	d.deps.Poster.Post(ctx, text, target, opts)
}

// modify applies uwu, then yell, then the rare sparkle, which must come last
// so emote codes survive.
func (d *Dispatcher) modify(text string, fl []string) string {
	r := d.deps.Random()
	if flags.Has(fl, flags.Uwu) {
		text = textfx.Uwu(r, text)
	}
	if flags.Has(fl, flags.Yell) {
		text = textfx.Yell(text)
	}
	odds := DefaultShinyOdds
	if cfg := d.deps.Config; cfg != nil && cfg.ShinyOdds > 0 {
		odds = cfg.ShinyOdds
	}
	if textfx.Shiny(r, odds) {
		text = textfx.Sparkle(text)
	}
	return text
}

// preprocess expands $users into the channel roster.
func (d *Dispatcher) preprocess(ctx context.Context, msg *chat.Message, text string) string {
	if !strings.Contains(text, usersToken) {
		return text
	}
	return strings.ReplaceAll(text, usersToken, Roster(ctx, d.deps, msg.GuildID, msg.ChannelID))
}

// Roster lists the humans of a channel with their registered names and
// pronouns, then the bot, as "Alice (she/her), Bob and wigglebot (it/its)".
func Roster(ctx context.Context, deps *response.Deps, guildID, channelID string) string {
	members, err := deps.Client.Members(ctx, channelID)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("[DISPATCH] Failed to list channel members")
	}

	var names []string
	for _, u := range chat.Humans(members) {
		name, pronouns := u.DisplayName(), ""
		if deps.Store != nil {
			n, p, err := deps.Store.NameAndPronouns(guildID, u.ID)
			if err != nil {
				zerolog.Ctx(ctx).Warn().Err(err).Str("user", u.ID).Msg("[DISPATCH] Failed to load registration")
			}
			if n != "" {
				name = n
			}
			pronouns = p
		}
		if pronouns != "" {
			name += " (" + pronouns + ")"
		}
		names = append(names, name)
	}
	names = append(names, deps.Client.Me().Username+" (it/its)")
	return chat.GrammarJoin(names)
}
