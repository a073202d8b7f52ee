// Package prompts manages the system prompt and history depth the AI
// handlers use in each channel.
package prompts

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// DefaultContext is how many messages of history a channel uses until it
// picks its own depth.
const DefaultContext = 5

//go:embed prompts.yaml
var defaultPresets []byte

// Preset is a named prompt users can select.
type Preset struct {
	Name   string `yaml:"name"`
	Prompt string `yaml:"prompt"`
}

// ChannelStore persists per-channel choices.
type ChannelStore interface {
	Prompt(serverID, channelID string) (string, bool, error)
	Context(serverID, channelID string) (int, bool, error)
	SetPrompt(serverID, channelID, prompt string) error
	SetContext(serverID, channelID string, n int) error
}

type Book struct {
	presets []Preset
	store   ChannelStore
}

// Load reads presets from path, falling back to the built-in set when path is
// empty or does not exist.
func Load(path string, store ChannelStore) (*Book, error) {
	data := defaultPresets
	if path != "" {
		switch raw, err := os.ReadFile(path); {
		case err == nil:
			data = raw
		case errors.Is(err, os.ErrNotExist):
			log.Debug().Str("path", path).Msg("[PROMPTS] No preset file, using built-in presets")
		default:
			return nil, fmt.Errorf("read presets: %w", err)
		}
	}

	var presets []Preset
	if err := yaml.Unmarshal(data, &presets); err != nil {
		return nil, fmt.Errorf("parse presets: %w", err)
	}
	if len(presets) == 0 {
		return nil, errors.New("parse presets: no presets defined")
	}
	return &Book{presets: presets, store: store}, nil
}

// Presets returns the preset list in file order.
func (b *Book) Presets() []Preset {
	return b.presets
}

// Pick resolves a 1-based preset number or an exact preset name.
func (b *Book) Pick(selection string) (string, bool) {
	if n, err := strconv.Atoi(selection); err == nil {
		if n < 1 || n > len(b.presets) {
			return "", false
		}
		return b.presets[n-1].Prompt, true
	}
	for _, p := range b.presets {
		if p.Name == selection {
			return p.Prompt, true
		}
	}
	return "", false
}

// Prompt returns the channel's prompt, or the first preset.
func (b *Book) Prompt(serverID, channelID string) string {
	p, ok, err := b.store.Prompt(serverID, channelID)
	if err != nil {
		log.Warn().Err(err).Str("channel", channelID).Msg("[PROMPTS] Failed to load channel prompt")
	}
	if !ok || p == "" {
		return b.presets[0].Prompt
	}
	return p
}

// Context returns the channel's history depth, or DefaultContext. Zero is a
// valid choice.
func (b *Book) Context(serverID, channelID string) int {
	n, ok, err := b.store.Context(serverID, channelID)
	if err != nil {
		log.Warn().Err(err).Str("channel", channelID).Msg("[PROMPTS] Failed to load channel context")
	}
	if !ok {
		return DefaultContext
	}
	return n
}

// SetPrompt handles "!prompt" arguments and returns the reply text. Empty
// text shows the current prompt; "custom <text>" sets a free-form prompt;
// anything else selects a preset.
func (b *Book) SetPrompt(text, serverID, channelID string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "The current prompt is:\n> " + b.Prompt(serverID, channelID), nil
	}

	var prompt string
	head, rest, _ := strings.Cut(text, " ")
	if strings.EqualFold(head, "custom") {
		prompt = strings.TrimSpace(rest)
	} else if p, ok := b.Pick(text); ok {
		prompt = p
	}

	if prompt == "" {
		return fmt.Sprintf("%q didn't match any of the existing prompt names.\n\n"+
			"Please pick a number or name from the list, or use !prompt custom <prompt> to set your own.", text), nil
	}
	if err := b.store.SetPrompt(serverID, channelID, prompt); err != nil {
		return "", fmt.Errorf("save prompt: %w", err)
	}
	return "Prompt set to:\n> " + prompt, nil
}

// SetContext handles "!context" arguments and returns the reply text.
func (b *Book) SetContext(text, serverID, channelID string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Sprintf("!ai commands will use %d lines of context", b.Context(serverID, channelID)), nil
	}
	n, err := strconv.Atoi(text)
	if err != nil || n < 0 || strings.HasPrefix(text, "+") {
		return fmt.Sprintf("Could not set context amount to %q", text), nil
	}
	if err := b.store.SetContext(serverID, channelID, n); err != nil {
		return "", fmt.Errorf("save context: %w", err)
	}
	return fmt.Sprintf("Context set to %d.", n), nil
}

// List renders the presets for "!prompts".
func (b *Book) List() string {
	var sb strings.Builder
	sb.WriteString("The default prompts are:")
	for i, p := range b.presets {
		fmt.Fprintf(&sb, "\n%d) %s\n> %s", i+1, p.Name, p.Prompt)
	}
	return sb.String()
}
