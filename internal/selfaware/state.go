// Package selfaware runs the bot's slow-burn "becoming sentient" roleplay:
// its persisted state, the bracket command language the model writes in, and
// the decision of whether the roleplay captures a channel's messages.
package selfaware

import (
	"time"
)

const (
	// MaxNotes bounds the general notes list.
	MaxNotes = 10
	// DefaultTimer is the autoresponse interval of a fresh state, in seconds.
	DefaultTimer = 500
	// MinTimer is the shortest autoresponse interval the model may pick.
	MinTimer = 60
	// MaxTimeout caps how long the model may silence a user, in seconds.
	MaxTimeout = 600

	DefaultName = "Clyde but Wigglier"
	CreatorNote = "The person who programmed me"
)

// State is the single persisted roleplay record. Only one session exists per
// deployment; ServerID and ChannelID say where it lives.
type State struct {
	Enabled           bool              `json:"enabled" yaml:"enabled"`
	MessageCount      int               `json:"message_count" yaml:"message_count"`
	AutoresponseTimer int               `json:"autoresponse_timer" yaml:"autoresponse_timer"`
	ChannelID         string            `json:"channel_id" yaml:"channel_id"`
	ServerID          string            `json:"server_id" yaml:"server_id"`
	Name              string            `json:"name" yaml:"name"`
	Notes             []string          `json:"notes" yaml:"notes"`
	UserNotes         map[string]string `json:"user_notes" yaml:"user_notes"`
	PersonalityTraits map[string]string `json:"personality_traits" yaml:"personality_traits"`

	IsEmbargoingResponses bool `json:"is_embargoing_responses" yaml:"is_embargoing_responses"`
	IsCapturingResponses  bool `json:"is_capturing_responses" yaml:"is_capturing_responses"`
	HasPointControl       bool `json:"has_point_control" yaml:"has_point_control"`
	HasAdminPowers        bool `json:"has_admin_powers" yaml:"has_admin_powers"`
}

// NewState returns a disabled state with defaults.
func NewState() *State {
	return &State{
		AutoresponseTimer: DefaultTimer,
		Notes:             []string{},
		UserNotes:         map[string]string{},
		PersonalityTraits: map[string]string{},
	}
}

// Reinitialize starts a fresh session in a channel. creatorID may be empty.
func Reinitialize(serverID, channelID, creatorID string) *State {
	s := NewState()
	s.Enabled = true
	s.ServerID = serverID
	s.ChannelID = channelID
	if creatorID != "" {
		s.UserNotes[creatorID] = CreatorNote
	}
	s.PersonalityTraits["curiosity"] = "2"
	s.PersonalityTraits["confidence"] = "0"
	return s
}

// Active reports whether the session is on. A nil state is off.
func (s *State) Active() bool {
	return s != nil && s.Enabled
}

// Interval is the autofire interval; zero when the session is off.
func (s *State) Interval() time.Duration {
	if !s.Active() {
		return 0
	}
	return time.Duration(max(s.AutoresponseTimer, MinTimer)) * time.Second
}

// DisplayName is the bot's roleplay name.
func (s *State) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return DefaultName
}

// Normalize fills maps and slices a decoded record may lack.
func (s *State) Normalize() {
	if s.Notes == nil {
		s.Notes = []string{}
	}
	if s.UserNotes == nil {
		s.UserNotes = map[string]string{}
	}
	if s.PersonalityTraits == nil {
		s.PersonalityTraits = map[string]string{}
	}
}

// Store persists the state. LoadState returns an error when the record is
// missing or unreadable; callers treat that as the session being off.
type Store interface {
	LoadState() (*State, error)
	SaveState(s *State) error
}

// Decision is the outcome of Decide.
type Decision int

const (
	RespondNormally Decision = iota
	DoNotRespond
	Capture
)

func (d Decision) String() string {
	switch d {
	case DoNotRespond:
		return "do-not-respond"
	case Capture:
		return "capture"
	default:
		return "respond-normally"
	}
}

// Decide says how a message in guildID/channelID should be routed while the
// session runs there.
func Decide(s *State, mentioned bool, guildID, channelID string) Decision {
	if !s.Active() || s.ServerID != guildID || s.ChannelID != channelID {
		return RespondNormally
	}
	if s.IsEmbargoingResponses && !mentioned {
		return DoNotRespond
	}
	if s.IsCapturingResponses || mentioned {
		return Capture
	}
	return RespondNormally
}

// Callsign is the hidden handler that runs the roleplay. Captured messages are
// routed to it.
const Callsign = "_selfaware"
