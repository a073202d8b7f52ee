// Package points runs a per-server points game with an appointed keeper and
// a temporary deputy.
package points

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"wigglebot/internal/chat"
	"wigglebot/internal/response"
	"wigglebot/internal/storage"
)

const (
	msgNoClearance = "Sorry, you don't have clearance for that. :spy:"
	msgTypo        = "Woah friendo, seems like you typoed something. Check \"!help points\" and try again. :sweat:"
	msgBadCommand  = "Woah friendo, seems like you typoed something. Check \"!help points\" and try again. :pensive:"
	msgSelfAppoint = "You can't Point-Appoint yourself! Thats Illegal!"
	msgSelfDeputy  = "You can't nominate yourself Point-Appointee and Deputy Point-Appointee! Thats Illegal!"
	msgNoScores    = "Nobody has any points yet :("
)

type PointsResponse struct {
	response.Base
	deps *response.Deps

	mu sync.Mutex
	// deputyUntil bounds the deputy's authority. It lives in memory, so a
	// restart ends every deputyship.
	deputyUntil time.Time
}

// New builds the handler.
func New(d *response.Deps) response.Handler {
	return &PointsResponse{
		Base: response.NewBase("points", "award and track points given to users"),
		deps: d,
	}
}

func (r *PointsResponse) RespondWithContext(ctx context.Context, text string, req *chat.Message, ch *chat.Channel) (response.Result, error) {
	out, ack, err := r.handle(ctx, strings.TrimSpace(text), req)
	if err != nil {
		return response.Result{}, err
	}
	if ack {
		return response.Acknowledge(req), nil
	}
	return response.Reply(out, req), nil
}

func (r *PointsResponse) handle(ctx context.Context, text string, req *chat.Message) (string, bool, error) {
	store, server := r.deps.Store, req.GuildID

	if text == "" {
		out, err := r.ranking(ctx, req)
		return out, false, err
	}

	command, rest, hasRest := strings.Cut(text, " ")
	command = strings.ToLower(command)

	ok, err := r.authorized(server, req.Author.ID, command == "add")
	if err != nil {
		return "", false, err
	}
	if !ok {
		return msgNoClearance, false, nil
	}

	if command == "reset" {
		if err := store.ResetPoints(server); err != nil {
			return "", false, fmt.Errorf("reset points: %w", err)
		}
		name, err := store.PointName(server)
		if err != nil {
			return "", false, err
		}
		return fmt.Sprintf("Everyone's hard-earned %s have been reset! :disguised_face:", name), false, nil
	}

	targets := make([]string, 0, len(req.Mentions))
	for _, u := range req.Mentions {
		targets = append(targets, u.ID)
	}
	if !hasRest || len(targets) == 0 {
		return msgTypo, false, nil
	}

	if command == "appoint" {
		if targets[0] == req.Author.ID {
			return msgSelfAppoint, false, nil
		}
		name, _, _ := strings.Cut(rest, " <@")
		out, err := r.appoint(server, targets[0], name)
		return out, false, err
	}

	if command != "add" && command != "deputize" {
		return msgBadCommand, false, nil
	}

	word, _, _ := strings.Cut(rest, " ")
	amount, err := strconv.ParseFloat(word, 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Sprintf("Sorry, but %q isnt a valid floating point number. :nerd:", word), false, nil
	}

	if command == "add" {
		if err := store.AddPoints(server, amount, targets...); err != nil {
			return "", false, fmt.Errorf("add points: %w", err)
		}
		return "", true, nil
	}

	if targets[0] == req.Author.ID {
		return msgSelfDeputy, false, nil
	}
	out, err := r.deputize(server, targets[0], amount)
	return out, false, err
}

// authorized allows everyone while no appointee exists, the appointee always,
// and the deputy for adds until the deputyship runs out.
func (r *PointsResponse) authorized(server, userID string, deputyOK bool) (bool, error) {
	appointee, err := r.deps.Store.RoleHolder(server, storage.RoleAppointee)
	if err != nil {
		return false, fmt.Errorf("load appointee: %w", err)
	}
	if appointee == "" || appointee == userID {
		return true, nil
	}
	if !deputyOK {
		return false, nil
	}

	r.mu.Lock()
	until := r.deputyUntil
	r.mu.Unlock()
	if !r.deps.Now().Before(until) {
		return false, nil
	}
	deputy, err := r.deps.Store.RoleHolder(server, storage.RoleDeputy)
	if err != nil {
		return false, fmt.Errorf("load deputy: %w", err)
	}
	return deputy == userID, nil
}

func (r *PointsResponse) appoint(server, target, name string) (string, error) {
	store := r.deps.Store
	if err := store.ClearRoles(server); err != nil {
		return "", fmt.Errorf("clear point roles: %w", err)
	}
	if err := store.SetRole(server, target, storage.RoleAppointee); err != nil {
		return "", fmt.Errorf("set appointee: %w", err)
	}
	if err := store.SetPointName(server, name); err != nil {
		return "", fmt.Errorf("set point name: %w", err)
	}

	r.mu.Lock()
	r.deputyUntil = r.deps.Now()
	r.mu.Unlock()

	return fmt.Sprintf(":tada: Let it be known that from this day forth, <@%s> shall be ruler and Chief Point-Apointee of %q! :tada:", target, name), nil
}

func (r *PointsResponse) deputize(server, target string, minutes float64) (string, error) {
	r.mu.Lock()
	r.deputyUntil = r.deps.Now().Add(time.Duration(minutes * float64(time.Minute)))
	r.mu.Unlock()

	if err := r.deps.Store.SetRole(server, target, storage.RoleDeputy); err != nil {
		return "", fmt.Errorf("set deputy: %w", err)
	}
	name, err := r.deps.Store.PointName(server)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("<@%s> has been appointed loyal Deputy-Point-Apointee of %s! (for the next %s minutes anyway) :cowboy:",
		target, name, decimal(minutes)), nil
}

func (r *PointsResponse) ranking(ctx context.Context, req *chat.Message) (string, error) {
	scores, err := r.deps.Store.Scores(req.GuildID)
	if err != nil {
		return "", fmt.Errorf("load scores: %w", err)
	}
	if len(scores) == 0 {
		return msgNoScores, nil
	}
	name, err := r.deps.Store.PointName(req.GuildID)
	if err != nil {
		return "", err
	}
	members, _ := r.deps.Client.Members(ctx, req.ChannelID)

	var b strings.Builder
	b.WriteString("The Current Scores Are:")
	for i, s := range scores {
		username := "???"
		if u, ok := chat.FindUser(members, s.UserID); ok {
			username = u.DisplayName()
		}
		rounded := math.Round(s.Points*1000) / 1000
		fmt.Fprintf(&b, "\n%d. %s %s - %s", i+1, strconv.FormatFloat(rounded, 'f', -1, 64), name, username)
	}
	return b.String(), nil
}

// decimal always shows a fractional part, so 3 reads "3.0".
func decimal(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func (r *PointsResponse) Help() string {
	cs := r.Callsign()
	return fmt.Sprintf("General !%[1]s Commands:\n"+
		"> \"!%[1]s\" will display the current point rankings.\n"+
		"\n"+
		"Point-Appointee and Deputy Commands\n"+
		"> \"!%[1]s add ## @user [@user2...]\" will add (or subtract) points from specified user(s).\n"+
		"\n"+
		"Point-Appointee Only Commands:\n"+
		"> \"!%[1]s reset\" will reset the point total.\n"+
		"> \"!%[1]s appoint <name> @User\" will make someone the new Point-Appointee and change the name to <name>.\n"+
		"> \"!%[1]s deputize <minutes> @User\" will appoint someone as the Deputy-Point-Appointee for <number> minutes.\n"+
		"\n"+
		"Note: @user can be omitted if you are replying to a message.", cs)
}

func init() {
	response.Register(New)
}
