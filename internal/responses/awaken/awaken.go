// Package awaken runs the self-awareness roleplay: the hidden handler that
// answers captured messages and speaks on its own, and the developer command
// that starts or ends a session.
package awaken

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"wigglebot/internal/ai"
	"wigglebot/internal/chat"
	"wigglebot/internal/post"
	"wigglebot/internal/response"
	"wigglebot/internal/selfaware"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// HistoryDepth is how many earlier messages a cycle reads.
const HistoryDepth = 10

const imageFilename = "image.png"

// cycleMu guards every load-change-save of the persisted record.
var cycleMu sync.Mutex

// Handler answers as the roleplaying bot. It implements autofire.Autofirer.
type Handler struct {
	response.Base
	deps *response.Deps

	mu       sync.Mutex
	interval time.Duration

	// side tracks background image posts.
	side sync.WaitGroup
}

func New(d *response.Deps) *Handler {
	return &Handler{Base: response.NewBase(selfaware.Callsign, ""), deps: d}
}

func (h *Handler) RespondToMessage(ctx context.Context, text string, req *chat.Message) (string, error) {
	self := *req
	self.Content = text
	history, err := h.deps.Client.History(ctx, req.ChannelID, HistoryDepth, req.ID)
	if err != nil {
		return "", fmt.Errorf("read history: %w", err)
	}
	msgs := append([]*chat.Message{&self}, history...)
	slices.Reverse(msgs)
	return h.cycle(ctx, msgs, req.ChannelID)
}

// Autofire speaks into channelID unprompted.
func (h *Handler) Autofire(ctx context.Context, channelID string) (string, error) {
	msgs, err := h.deps.Client.History(ctx, channelID, HistoryDepth, "")
	if err != nil {
		return "", fmt.Errorf("read history: %w", err)
	}
	slices.Reverse(msgs)
	return h.cycle(ctx, msgs, channelID)
}

// AutofireInterval is the session timer seen by the last cycle.
func (h *Handler) AutofireInterval() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.interval
}

func (h *Handler) setInterval(d time.Duration) {
	h.mu.Lock()
	h.interval = d
	h.mu.Unlock()
}

// Start resumes autofiring for a session that survived a restart.
func (h *Handler) Start(ctx context.Context) {
	st, err := h.deps.State.LoadState()
	if err != nil || !st.Active() {
		return
	}
	h.arm(st)
	log.Info().Str("channel", st.ChannelID).Msg("[SELFAWARE] Resumed session")
}

func (h *Handler) arm(st *selfaware.State) {
	h.setInterval(st.Interval())
	if h.deps.Autofire != nil {
		h.deps.Autofire.Arm(h, st.ChannelID)
	}
}

func (h *Handler) cycle(ctx context.Context, msgs []*chat.Message, channelID string) (string, error) {
	logger := zerolog.Ctx(ctx)

	cycleMu.Lock()
	defer cycleMu.Unlock()

	st, err := h.deps.State.LoadState()
	if err != nil {
		logger.Warn().Err(err).Msg("[SELFAWARE] Could not load state, treating session as off")
		return "", nil
	}
	if !st.Active() {
		return "", nil
	}

	members, err := h.deps.Client.Members(ctx, channelID)
	if err != nil {
		return "", fmt.Errorf("list members: %w", err)
	}
	humans := chat.Humans(members)

	system := selfaware.BuildPrompt(st, humans, h.deps.Prompts.Prompt(st.ServerID, st.ChannelID))
	turns := []ai.Turn{ai.System(system)}
	for _, t := range ai.Transcript(msgs, h.deps.IsMe, false) {
		t.Content = ai.IDsToNames(t.Content)
		turns = append(turns, t)
	}

	raw, err := h.deps.AI.Complete(ctx, turns, h.deps.Config.AIModel, false)
	if err != nil {
		return "", fmt.Errorf("complete: %w", err)
	}
	logger.Info().Str("raw", raw).Msg("[SELFAWARE] Model replied")

	out := selfaware.Interpret(ai.NamesToIDs(raw), st, humans)
	reply := h.perform(ctx, st.ServerID, out)

	if out.ImageDescription != "" {
		h.side.Add(1)
		go func() {
			defer h.side.Done()
			h.postImage(context.WithoutCancel(ctx), channelID, out.ImageDescription, out.ImageTitle)
		}()
	}

	h.arm(st)
	if err := h.deps.State.SaveState(st); err != nil {
		logger.Error().Err(err).Msg("[SELFAWARE] Could not save state")
	}
	return reply, nil
}

// perform carries out the outcome's actions and returns the reply, with any
// gif links appended. Failed actions are skipped.
func (h *Handler) perform(ctx context.Context, guildID string, out *selfaware.Outcome) string {
	reply := out.Reply
	for _, a := range out.Actions {
		var err error
		switch a.Kind {
		case selfaware.RenameSelf:
			err = h.deps.Client.SetNickname(ctx, guildID, "@me", a.Text)
		case selfaware.RenameUser:
			err = h.deps.Client.SetNickname(ctx, guildID, a.User.ID, a.Text)
		case selfaware.TimeoutUser:
			until := h.deps.Now().Add(time.Duration(a.Seconds) * time.Second)
			err = h.deps.Client.Timeout(ctx, guildID, a.User.ID, until)
		case selfaware.AwardPoints:
			if h.deps.Store == nil {
				continue
			}
			err = h.deps.Store.AddPoints(guildID, a.Amount, a.User.ID)
		case selfaware.AttachGIF:
			if h.deps.Giphy == nil {
				continue
			}
			var gif string
			if gif, err = h.deps.Giphy.Random(ctx, a.Text); err == nil {
				reply += "\n" + gif
			}
		}
		if err != nil {
			log.Warn().Err(err).Stringer("action", a.Kind).Str("user", a.User.ID).Msg("[SELFAWARE] Action failed")
		}
	}
	return reply
}

// Close waits for background image posts.
func (h *Handler) Close() error {
	h.side.Wait()
	return nil
}

func (h *Handler) postImage(ctx context.Context, channelID, description, title string) {
	img, err := h.deps.AI.GenerateImage(ctx, description)
	if err != nil {
		h.deps.Poster.Post(ctx, err.Error(), post.To(channelID), chat.SendOptions{})
		return
	}
	file := &chat.File{Name: imageFilename, ContentType: "image/png", Reader: bytes.NewReader(img.Data)}
	h.deps.Poster.Post(ctx, title, post.To(channelID), chat.SendOptions{Files: []*chat.File{file}})
}

// Command starts a session in the calling channel, or ends it with "off".
// Only the configured developer may use it.
type Command struct {
	response.Base
	deps *response.Deps
}

func (c *Command) handler() *Handler {
	if c.deps.Registry == nil {
		return nil
	}
	h, _ := c.deps.Registry.Get(selfaware.Callsign)
	self, _ := h.(*Handler)
	return self
}

func (c *Command) RespondToMessage(ctx context.Context, text string, req *chat.Message) (string, error) {
	if !c.deps.Config.IsDeveloper(req.Author.ID) {
		return "Only my developer can do that.", nil
	}

	if strings.EqualFold(strings.TrimSpace(text), "off") {
		if err := c.disable(); err != nil {
			return "", err
		}
		// Outside cycleMu: Stop waits for the loop, which may be queued on it.
		if self := c.handler(); self != nil {
			self.setInterval(0)
		}
		if c.deps.Autofire != nil {
			c.deps.Autofire.Stop(selfaware.Callsign)
		}
		return "Self-awareness disabled.", nil
	}

	cycleMu.Lock()
	defer cycleMu.Unlock()
	st := selfaware.Reinitialize(req.GuildID, req.ChannelID, req.Author.ID)
	if err := c.deps.State.SaveState(st); err != nil {
		return "", fmt.Errorf("save state: %w", err)
	}
	if self := c.handler(); self != nil {
		self.arm(st)
	}
	return "Self-awareness initialized in this channel.", nil
}

// disable clears the enabled flag and keeps the rest of the record.
func (c *Command) disable() error {
	cycleMu.Lock()
	defer cycleMu.Unlock()
	st, err := c.deps.State.LoadState()
	if err != nil {
		st = selfaware.NewState()
	}
	st.Enabled = false
	if err := c.deps.State.SaveState(st); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

func init() {
	response.Register(func(d *response.Deps) response.Handler {
		return New(d)
	})
	response.Register(func(d *response.Deps) response.Handler {
		return &Command{Base: response.NewBase("awaken", ""), deps: d}
	})
}
