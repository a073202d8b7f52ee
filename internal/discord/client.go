package discord

import (
	"context"
	"fmt"
	"time"

	"wigglebot/internal/chat"

	"github.com/bwmarrin/discordgo"
)

// pageSize is the most messages the API returns per history request.
const pageSize = 100

// threadArchiveMinutes is how long an idle thread stays open.
const threadArchiveMinutes = 60

// Client adapts a discordgo session to chat.Client.
type Client struct {
	s *discordgo.Session
}

// NewClient wraps an existing session.
func NewClient(s *discordgo.Session) *Client {
	return &Client{s: s}
}

func (c *Client) Me() chat.User {
	if c.s.State == nil || c.s.State.User == nil {
		return chat.User{}
	}
	return toUser(c.s.State.User, nil)
}

func (c *Client) Send(ctx context.Context, channelID, content string, opts chat.SendOptions) (*chat.Message, error) {
	return c.send(ctx, channelID, content, nil, opts)
}

func (c *Client) Reply(ctx context.Context, to *chat.Message, content string, opts chat.SendOptions) (*chat.Message, error) {
	ref := &discordgo.MessageReference{MessageID: to.ID, ChannelID: to.ChannelID, GuildID: to.GuildID}
	return c.send(ctx, to.ChannelID, content, ref, opts)
}

func (c *Client) send(ctx context.Context, channelID, content string, ref *discordgo.MessageReference, opts chat.SendOptions) (*chat.Message, error) {
	data := &discordgo.MessageSend{
		Content:   content,
		TTS:       opts.TTS,
		Reference: ref,
	}
	for _, f := range opts.Files {
		data.Files = append(data.Files, &discordgo.File{Name: f.Name, ContentType: f.ContentType, Reader: f.Reader})
	}
	m, err := c.s.ChannelMessageSendComplex(channelID, data, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("send to %s: %w", channelID, err)
	}
	return c.toMessage(m), nil
}

func (c *Client) CreateThread(ctx context.Context, from *chat.Message, name string) (*chat.Channel, error) {
	ch, err := c.s.MessageThreadStart(from.ChannelID, from.ID, name, threadArchiveMinutes, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("start thread: %w", err)
	}
	return toChannel(ch), nil
}

func (c *Client) Channel(ctx context.Context, channelID string) (*chat.Channel, error) {
	if ch, err := c.s.State.Channel(channelID); err == nil {
		return toChannel(ch), nil
	}
	ch, err := c.s.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch channel %s: %w", channelID, err)
	}
	return toChannel(ch), nil
}

func (c *Client) FetchMessage(ctx context.Context, channelID, messageID string) (*chat.Message, error) {
	m, err := c.s.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch message %s: %w", messageID, err)
	}
	if m.GuildID == "" {
		if ch, err := c.s.State.Channel(channelID); err == nil {
			m.GuildID = ch.GuildID
		}
	}
	return c.toMessage(m), nil
}

// History pages backwards through the channel until limit messages are read
// or the channel runs out.
func (c *Client) History(ctx context.Context, channelID string, limit int, beforeID string) ([]*chat.Message, error) {
	guildID := ""
	if ch, err := c.s.State.Channel(channelID); err == nil {
		guildID = ch.GuildID
	}

	out := make([]*chat.Message, 0, limit)
	for len(out) < limit {
		page, err := c.s.ChannelMessages(channelID, min(pageSize, limit-len(out)), beforeID, "", "", discordgo.WithContext(ctx))
		if err != nil {
			return out, fmt.Errorf("read history of %s: %w", channelID, err)
		}
		for _, m := range page {
			if m.GuildID == "" {
				m.GuildID = guildID
			}
			out = append(out, c.toMessage(m))
		}
		if len(page) < pageSize {
			break
		}
		beforeID = page[len(page)-1].ID
	}
	return out, nil
}

// Members lists the cached guild members that can view the channel.
func (c *Client) Members(ctx context.Context, channelID string) ([]chat.User, error) {
	ch, err := c.s.State.Channel(channelID)
	if err != nil {
		return nil, fmt.Errorf("channel %s not cached: %w", channelID, err)
	}
	guild, err := c.s.State.Guild(ch.GuildID)
	if err != nil {
		return nil, fmt.Errorf("guild %s not cached: %w", ch.GuildID, err)
	}

	var out []chat.User
	for _, m := range guild.Members {
		if m.User == nil {
			continue
		}
		perms, err := c.s.State.UserChannelPermissions(m.User.ID, channelID)
		if err != nil || perms&discordgo.PermissionViewChannel == 0 {
			continue
		}
		out = append(out, toUser(m.User, m))
	}
	return out, nil
}

func (c *Client) React(ctx context.Context, msg *chat.Message, emoji string) error {
	return c.s.MessageReactionAdd(msg.ChannelID, msg.ID, emoji, discordgo.WithContext(ctx))
}

func (c *Client) SetNickname(ctx context.Context, guildID, userID, nick string) error {
	return c.s.GuildMemberNickname(guildID, userID, nick, discordgo.WithContext(ctx))
}

func (c *Client) Timeout(ctx context.Context, guildID, userID string, until time.Time) error {
	return c.s.GuildMemberTimeout(guildID, userID, &until, discordgo.WithContext(ctx))
}

// member looks up a cached guild member, for nicknames.
func (c *Client) member(guildID, userID string) *discordgo.Member {
	if guildID == "" || c.s.State == nil {
		return nil
	}
	m, err := c.s.State.Member(guildID, userID)
	if err != nil {
		return nil
	}
	return m
}

func (c *Client) toMessage(m *discordgo.Message) *chat.Message {
	msg := &chat.Message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		GuildID:   m.GuildID,
		Content:   m.Content,
		CreatedAt: m.Timestamp,
	}
	if m.Author != nil {
		member := m.Member
		if member == nil {
			member = c.member(m.GuildID, m.Author.ID)
		}
		msg.Author = toUser(m.Author, member)
	}
	for _, u := range m.Mentions {
		msg.Mentions = append(msg.Mentions, toUser(u, c.member(m.GuildID, u.ID)))
	}
	if m.MessageReference != nil {
		msg.ReferenceID = m.MessageReference.MessageID
	}
	for _, a := range m.Attachments {
		msg.Attachments = append(msg.Attachments, chat.Attachment{URL: a.URL, Filename: a.Filename, ContentType: a.ContentType})
	}
	return msg
}

func toUser(u *discordgo.User, m *discordgo.Member) chat.User {
	out := chat.User{ID: u.ID, Username: u.Username, Bot: u.Bot}
	if u.GlobalName != "" {
		out.Username = u.GlobalName
	}
	if m != nil {
		out.Nick = m.Nick
	}
	return out
}

func toChannel(ch *discordgo.Channel) *chat.Channel {
	out := &chat.Channel{ID: ch.ID, GuildID: ch.GuildID, ParentID: ch.ParentID, Name: ch.Name, Kind: chat.KindOther}
	switch ch.Type {
	case discordgo.ChannelTypeGuildText:
		out.Kind = chat.KindText
	case discordgo.ChannelTypeGuildPublicThread, discordgo.ChannelTypeGuildPrivateThread, discordgo.ChannelTypeGuildNewsThread:
		out.Kind = chat.KindThread
	}
	return out
}
