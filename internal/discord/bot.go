// Package discord connects the bot to the Discord gateway and adapts the
// session to the chat package.
package discord

import (
	"context"
	"fmt"
	"sync"

	"wigglebot/internal/chat"
	"wigglebot/internal/config"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// MessageHandler receives every inbound guild message.
type MessageHandler func(ctx context.Context, msg *chat.Message)

// Bot is a Discord bot
type Bot struct {
	dg     *discordgo.Session
	client *Client
	cfg    *config.Config

	mu        sync.RWMutex
	ctx       context.Context
	onMessage MessageHandler
	onReady   func(ctx context.Context)
	readyOnce sync.Once
}

// NewBot prepares a session without connecting it.
func NewBot(cfg *config.Config) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return &Bot{dg: dg, client: NewClient(dg), cfg: cfg, ctx: context.Background()}, nil
}

// Client is the chat view of the session. Me is empty until the gateway is
// ready.
func (b *Bot) Client() *Client {
	return b.client
}

// OnMessage sets the handler for inbound messages.
func (b *Bot) OnMessage(h MessageHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onMessage = h
}

// OnReady sets a hook run once, after the first READY event.
func (b *Bot) OnReady(fn func(ctx context.Context)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onReady = fn
}

// Run opens the gateway and blocks until ctx ends.
func (b *Bot) Run(ctx context.Context) error {
	b.mu.Lock()
	b.ctx = ctx
	b.mu.Unlock()

	b.configureIntents()
	b.dg.AddHandler(b.handleReady)
	b.dg.AddHandler(b.onMessageCreate)
	b.dg.AddHandler(b.onGuildCreate)

	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer b.dg.Close()

	<-ctx.Done()
	log.Info().Msg("[DISCORD] Shutdown signal received. Cleaning up...")
	return nil
}

// configureIntents configures the Discord intents
func (b *Bot) configureIntents() {
	b.dg.Identify.Intents = discordgo.IntentsAll
	b.dg.State.TrackMembers = true
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == s.State.User.ID || m.GuildID == "" {
		return
	}

	b.mu.RLock()
	h, ctx := b.onMessage, b.ctx
	b.mu.RUnlock()
	if h == nil {
		return
	}
	h(ctx, b.client.toMessage(m.Message))
}

func (b *Bot) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	for _, g := range r.Guilds {
		b.leaveIfBlacklisted(s, g.ID, g.Name)
	}

	b.readyOnce.Do(func() {
		b.mu.RLock()
		fn, ctx := b.onReady, b.ctx
		b.mu.RUnlock()
		if fn != nil {
			fn(ctx)
		}
	})

	log.Info().Str("user", r.User.Username).Int("guilds", len(r.Guilds)).Msg("[DISCORD] ✅ Bot is running")
}

func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	log.Info().Str("guild", g.Guild.ID).Str("name", g.Guild.Name).Msg("[DISCORD] Guild available")
	b.leaveIfBlacklisted(s, g.Guild.ID, g.Guild.Name)
}

func (b *Bot) leaveIfBlacklisted(s *discordgo.Session, guildID, name string) {
	if !b.cfg.IsGuildBlacklisted(guildID) {
		return
	}
	log.Info().Str("guild", guildID).Str("name", name).Msg("[DISCORD] Leaving blacklisted guild")
	if err := s.GuildLeave(guildID); err != nil {
		log.Error().Err(err).Str("guild", guildID).Msg("[DISCORD] Failed to leave guild")
	}
}
