// Package help lists the registered handlers and their detailed help.
package help

import (
	"context"
	"strings"

	"wigglebot/internal/response"
)

const listingHeader = "Sure! here is a list of commands:"

// modifierHelp covers the flags the dispatcher handles itself.
const modifierHelp = "\n* !thread: respond in a new thread" +
	"\n* !tts: say the response aloud" +
	"\n* !uwu: uwuifwy the wesponse" +
	"\n* !yell: RESPOND VERY LOUDLY"

type HelpResponse struct {
	response.Base
	deps *response.Deps
}

// New builds the handler. The registry is read from deps at response time,
// after Build has filled it in.
func New(d *response.Deps) response.Handler {
	return &HelpResponse{Base: response.NewBase("help", "get help with using the bot"), deps: d}
}

// RespondToText returns the detailed help of every callsign named in text,
// or the full listing when none match.
func (r *HelpResponse) RespondToText(ctx context.Context, text string) (string, error) {
	if detail := r.detailed(text); detail != "" {
		return detail, nil
	}
	return Listing(r.deps.Registry), nil
}

func (r *HelpResponse) detailed(text string) string {
	var parts []string
	for _, callsign := range strings.Split(text, " ") {
		h, ok := r.deps.Registry.Get(callsign)
		if !ok {
			continue
		}
		parts = append(parts, h.Help())
	}
	return strings.Join(parts, "\n\n")
}

// Listing renders every listed handler with its blurb, then the modifiers.
func Listing(reg *response.Registry) string {
	var b strings.Builder
	b.WriteString(listingHeader)
	for _, h := range reg.Listed() {
		b.WriteString("\n* " + h.Callsign() + ": " + h.Blurb())
	}
	b.WriteString(modifierHelp)
	return b.String()
}

func init() {
	response.Register(New)
}
