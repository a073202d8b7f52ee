// Package chat describes the chat platform the bot talks to. Everything above
// the platform adapter works on these types only.
package chat

import (
	"context"
	"io"
	"strings"
	"time"
)

// User is a member of a guild as seen by the bot.
type User struct {
	ID       string
	Username string
	Nick     string
	Bot      bool
}

// DisplayName returns the guild nickname, falling back to the account name.
func (u User) DisplayName() string {
	if u.Nick != "" {
		return u.Nick
	}
	return u.Username
}

// Mention renders the platform mention markup for the user.
func (u User) Mention() string {
	return "<@" + u.ID + ">"
}

// Attachment is a file attached to a message.
type Attachment struct {
	URL         string
	Filename    string
	ContentType string
}

// IsImage reports whether the attachment carries an image.
func (a Attachment) IsImage() bool {
	kind, _, _ := strings.Cut(a.ContentType, "/")
	return kind == "image"
}

// Message is a single chat message.
type Message struct {
	ID          string
	ChannelID   string
	GuildID     string
	Author      User
	Content     string
	Mentions    []User
	ReferenceID string
	Attachments []Attachment
	CreatedAt   time.Time
}

// HasImages reports whether any attachment is an image.
func (m *Message) HasImages() bool {
	for _, a := range m.Attachments {
		if a.IsImage() {
			return true
		}
	}
	return false
}

// ImageURLs returns the URLs of all image attachments.
func (m *Message) ImageURLs() []string {
	var urls []string
	for _, a := range m.Attachments {
		if a.IsImage() {
			urls = append(urls, a.URL)
		}
	}
	return urls
}

// ChannelKind separates plain text channels from thread-like containers.
type ChannelKind int

const (
	KindText ChannelKind = iota
	KindThread
	KindOther
)

// Channel is a place messages can be posted to.
type Channel struct {
	ID       string
	GuildID  string
	ParentID string
	Name     string
	Kind     ChannelKind
}

// File is an outgoing attachment.
type File struct {
	Name        string
	ContentType string
	Reader      io.Reader
}

// SendOptions modify a single outgoing message.
type SendOptions struct {
	TTS   bool
	Files []*File
}

// Client is the narrow surface of the chat platform used by the bot.
type Client interface {
	// Me returns the bot account.
	Me() User

	Send(ctx context.Context, channelID, content string, opts SendOptions) (*Message, error)
	Reply(ctx context.Context, to *Message, content string, opts SendOptions) (*Message, error)
	CreateThread(ctx context.Context, from *Message, name string) (*Channel, error)

	Channel(ctx context.Context, channelID string) (*Channel, error)
	FetchMessage(ctx context.Context, channelID, messageID string) (*Message, error)
	// History returns up to limit messages older than beforeID (or the newest
	// when beforeID is empty), newest first.
	History(ctx context.Context, channelID string, limit int, beforeID string) ([]*Message, error)
	// Members lists the users able to see a channel.
	Members(ctx context.Context, channelID string) ([]User, error)

	React(ctx context.Context, msg *Message, emoji string) error
	SetNickname(ctx context.Context, guildID, userID, nick string) error
	Timeout(ctx context.Context, guildID, userID string, until time.Time) error
}
