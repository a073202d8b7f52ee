// Package basic holds the small canned handlers that need no services.
package basic

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"wigglebot/internal/chat"
	"wigglebot/internal/response"
	"wigglebot/internal/textfx"
)

// TimeResponse tells the mentioned user, or the author, the current time in
// platform timestamp markup.
type TimeResponse struct {
	response.Base
	deps *response.Deps
}

func (r *TimeResponse) RespondWithContext(ctx context.Context, text string, req *chat.Message, ch *chat.Channel) (response.Result, error) {
	target := req.Author.ID
	if len(req.Mentions) == 1 {
		target = req.Mentions[0].ID
	}
	return response.Fresh(fmt.Sprintf("<@%s>, your current time is <t:%d:t>. Yay!", target, r.deps.Now().Unix())), nil
}

// EchoResponse repeats its input.
type EchoResponse struct{ response.Base }

func (EchoResponse) RespondToText(ctx context.Context, text string) (string, error) {
	return text, nil
}

type RavioliResponse struct{ response.Base }

func (RavioliResponse) Respond(ctx context.Context) (string, error) {
	return "i feel down the stairs and ravioli on me", nil
}

var (
	eightBallYes = []string{
		"It is certain.", "It is decidedly so.", "Without a doubt.",
		"Yes, definitely.", "You may rely on it.", "As I see it, yes.",
		"Most likely.", "Outlook good.", "Yes.", "Signs point to yes.",
	}
	eightBallMaybe = []string{
		"Reply hazy, try again.", "Ask again later.", "Better not tell you now.",
		"Cannot predict now.", "Concentrate and ask again.",
	}
	eightBallNo = []string{
		"Don't count on it.", "My reply is no.", "My sources say no.",
		"Outlook not so good.", "Very doubtful.",
	}
	eightBallWiggly = []string{`¯\_(ツ)_/¯`, "Ask pamitha", "go away", "meowwww :3"}
)

// EightBallResponse answers yes or no questions with the canonical 20
// answers plus a few of its own.
type EightBallResponse struct {
	response.Base
	rand textfx.Rand
}

func (r *EightBallResponse) Respond(ctx context.Context) (string, error) {
	pool := eightBallWiggly
	switch roll := r.rand.Float64(); {
	case roll < 0.25:
		pool = eightBallMaybe
	case roll < 0.6:
		pool = eightBallYes
	case roll < 0.95:
		pool = eightBallNo
	}
	return pool[r.rand.IntN(len(pool))], nil
}

// ScaredLength is one past the platform message limit so the reply always
// needs two chunks.
const ScaredLength = 2001

type ScaredResponse struct{ response.Base }

func (ScaredResponse) Respond(ctx context.Context) (string, error) {
	return strings.Repeat("a", ScaredLength), nil
}

var highAdjectives = []string{
	"strung-out", "intoxicated", "ripped", "tipsy", "wasted", "baked", "bombed",
	"buzzed", "doped", "drugged", "drunk", "fried", "inebriated", "loaded",
	"plastered", "sloshed", "smashed", "stewed", "tanked", "totaled", "tripping",
	"boozed up", "on a trip", "spaced out", "high",
}

// HighResponse rates exactly one mentioned user; anything else is ignored.
type HighResponse struct {
	response.Base
	rand textfx.Rand
}

func (r *HighResponse) RespondToMessage(ctx context.Context, text string, req *chat.Message) (string, error) {
	if len(req.Mentions) != 1 {
		return "", nil
	}
	adjective := highAdjectives[r.rand.IntN(len(highAdjectives))]
	percentage := float64(r.rand.IntN(1001)) / 10
	return fmt.Sprintf("%s is %s%% %s", req.Mentions[0].Mention(), strconv.FormatFloat(percentage, 'f', 1, 64), adjective), nil
}

func init() {
	response.Register(func(d *response.Deps) response.Handler {
		return &TimeResponse{Base: response.NewBase("time", "get the current time"), deps: d}
	})
	response.Register(func(*response.Deps) response.Handler {
		return &EchoResponse{response.NewBase("echo", "")}
	})
	response.Register(func(*response.Deps) response.Handler {
		return &RavioliResponse{response.NewBase("ravioli", "")}
	})
	response.Register(func(d *response.Deps) response.Handler {
		return &EightBallResponse{
			Base: response.NewBase("8ball", "get deep wisdom in response to your yes or no question"),
			rand: d.Random(),
		}
	})
	response.Register(func(*response.Deps) response.Handler {
		return &ScaredResponse{response.NewBase("aaa", "")}
	})
	response.Register(func(d *response.Deps) response.Handler {
		return &HighResponse{Base: response.NewBase("high", ""), rand: d.Random()}
	})
}
