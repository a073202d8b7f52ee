// Package memchat is an in-memory chat platform. The console front end runs
// the bot against it, and tests use it to observe what the bot posts.
package memchat

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"wigglebot/internal/chat"
)

// Reaction records a React call.
type Reaction struct {
	MessageID string
	Emoji     string
}

// Client implements chat.Client in memory. It is safe for concurrent use.
type Client struct {
	mu        sync.Mutex
	me        chat.User
	nextID    int
	channels  map[string]*chat.Channel
	messages  map[string][]*chat.Message // oldest first
	members   map[string][]chat.User     // by guild
	posted    []*chat.Message
	reactions []Reaction
	nicknames map[string]string
	timeouts  map[string]time.Time
	now       func() time.Time

	// OnPost, when set, sees every message the bot sends.
	OnPost func(msg *chat.Message, ch *chat.Channel)
	// SendErr, when set, fails every Send and Reply.
	SendErr error
}

// New returns an empty platform in which me is the bot account.
func New(me chat.User) *Client {
	me.Bot = true
	return &Client{
		me:        me,
		channels:  make(map[string]*chat.Channel),
		messages:  make(map[string][]*chat.Message),
		members:   make(map[string][]chat.User),
		nicknames: make(map[string]string),
		timeouts:  make(map[string]time.Time),
		now:       time.Now,
	}
}

// SetClock replaces the clock used to stamp messages.
func (c *Client) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// AddChannel registers a channel.
func (c *Client) AddChannel(ch chat.Channel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.channels[ch.ID] = &ch
}

// AddMember adds a user to a guild.
func (c *Client) AddMember(guildID string, u chat.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.members[guildID] = append(c.members[guildID], u)
}

// Deliver records an inbound message from author and returns it.
func (c *Client) Deliver(channelID string, author chat.User, content string, mentions ...chat.User) *chat.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store(channelID, author, content, mentions)
}

// DeliverMessage records a fully built inbound message, assigning its id,
// timestamp and guild.
func (c *Client) DeliverMessage(msg *chat.Message) *chat.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	msg.ID = strconv.Itoa(c.nextID)
	msg.CreatedAt = c.now()
	if ch, ok := c.channels[msg.ChannelID]; ok {
		msg.GuildID = ch.GuildID
	}
	c.messages[msg.ChannelID] = append(c.messages[msg.ChannelID], msg)
	return msg
}

// Posted returns every message sent by the bot, in order.
func (c *Client) Posted() []*chat.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*chat.Message(nil), c.posted...)
}

// Reactions returns every reaction added by the bot.
func (c *Client) Reactions() []Reaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Reaction(nil), c.reactions...)
}

// Nickname returns the nickname the bot set for userID.
func (c *Client) Nickname(userID string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nicknames[userID]
}

// TimedOutUntil returns the timeout the bot set for userID.
func (c *Client) TimedOutUntil(userID string) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timeouts[userID]
}

func (c *Client) store(channelID string, author chat.User, content string, mentions []chat.User) *chat.Message {
	c.nextID++
	msg := &chat.Message{
		ID:        strconv.Itoa(c.nextID),
		ChannelID: channelID,
		Author:    author,
		Content:   content,
		Mentions:  mentions,
		CreatedAt: c.now(),
	}
	if ch, ok := c.channels[channelID]; ok {
		msg.GuildID = ch.GuildID
	}
	c.messages[channelID] = append(c.messages[channelID], msg)
	return msg
}

func (c *Client) Me() chat.User {
	return c.me
}

func (c *Client) Send(ctx context.Context, channelID, content string, opts chat.SendOptions) (*chat.Message, error) {
	return c.post(channelID, "", content, opts)
}

func (c *Client) Reply(ctx context.Context, to *chat.Message, content string, opts chat.SendOptions) (*chat.Message, error) {
	return c.post(to.ChannelID, to.ID, content, opts)
}

func (c *Client) post(channelID, refID, content string, opts chat.SendOptions) (*chat.Message, error) {
	c.mu.Lock()
	if c.SendErr != nil {
		c.mu.Unlock()
		return nil, c.SendErr
	}
	msg := c.store(channelID, c.me, content, nil)
	msg.ReferenceID = refID
	for _, f := range opts.Files {
		if f.Reader != nil {
			_, _ = io.Copy(io.Discard, f.Reader)
		}
		msg.Attachments = append(msg.Attachments, chat.Attachment{Filename: f.Name, ContentType: f.ContentType})
	}
	c.posted = append(c.posted, msg)
	hook, ch := c.OnPost, c.channels[channelID]
	c.mu.Unlock()

	if hook != nil {
		hook(msg, ch)
	}
	return msg, nil
}

func (c *Client) CreateThread(ctx context.Context, from *chat.Message, name string) (*chat.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	th := &chat.Channel{
		ID:       "thread-" + strconv.Itoa(c.nextID),
		GuildID:  from.GuildID,
		ParentID: from.ChannelID,
		Name:     name,
		Kind:     chat.KindThread,
	}
	c.channels[th.ID] = th
	return th, nil
}

func (c *Client) Channel(ctx context.Context, channelID string) (*chat.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch, ok := c.channels[channelID]
	if !ok {
		return nil, fmt.Errorf("unknown channel %s", channelID)
	}
	cp := *ch
	return &cp, nil
}

func (c *Client) FetchMessage(ctx context.Context, channelID, messageID string) (*chat.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range c.messages[channelID] {
		if m.ID == messageID {
			return m, nil
		}
	}
	return nil, fmt.Errorf("unknown message %s", messageID)
}

func (c *Client) History(ctx context.Context, channelID string, limit int, beforeID string) ([]*chat.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	msgs := c.messages[channelID]
	end := len(msgs)
	if beforeID != "" {
		for i, m := range msgs {
			if m.ID == beforeID {
				end = i
				break
			}
		}
	}
	var out []*chat.Message
	for i := end - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, msgs[i])
	}
	return out, nil
}

func (c *Client) Members(ctx context.Context, channelID string) ([]chat.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch, ok := c.channels[channelID]
	if !ok {
		return nil, fmt.Errorf("unknown channel %s", channelID)
	}
	out := append([]chat.User(nil), c.members[ch.GuildID]...)
	return append(out, c.me), nil
}

func (c *Client) React(ctx context.Context, msg *chat.Message, emoji string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reactions = append(c.reactions, Reaction{MessageID: msg.ID, Emoji: emoji})
	return nil
}

func (c *Client) SetNickname(ctx context.Context, guildID, userID, nick string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if userID == "@me" {
		userID = c.me.ID
	}
	c.nicknames[userID] = nick
	return nil
}

func (c *Client) Timeout(ctx context.Context, guildID, userID string, until time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timeouts[userID] = until
	return nil
}
