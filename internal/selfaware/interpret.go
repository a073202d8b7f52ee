package selfaware

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"wigglebot/internal/chat"
)

var (
	tokenRe = regexp.MustCompile(`\[(.*?)\]`)
	stripRe = regexp.MustCompile(`\[.*?\]`)
)

// ActionKind names a platform side effect requested by a command.
type ActionKind int

const (
	RenameSelf ActionKind = iota
	RenameUser
	TimeoutUser
	AwardPoints
	AttachGIF
)

func (k ActionKind) String() string {
	switch k {
	case RenameSelf:
		return "rename-self"
	case RenameUser:
		return "rename-user"
	case TimeoutUser:
		return "timeout-user"
	case AwardPoints:
		return "award-points"
	case AttachGIF:
		return "attach-gif"
	}
	return "unknown"
}

// Action is a side effect the caller carries out after interpretation.
// Failing to carry one out must not affect the others.
type Action struct {
	Kind    ActionKind
	User    chat.User
	Text    string
	Seconds int
	Amount  float64
}

// Outcome is the result of interpreting one model response.
type Outcome struct {
	// Reply is the text with every bracket token removed.
	Reply            string
	ImageDescription string
	ImageTitle       string
	Actions          []Action
	// Applied lists the command names that were recognized, in order.
	Applied []string
}

// Command is one parsed bracket token.
type Command struct {
	Name   string
	Args   []string
	Target *chat.User
}

type mutator func(s *State, c Command, out *Outcome)

var mutators = map[string]mutator{
	"note":        updateNotes,
	"p":           updatePersonality,
	"personality": updatePersonality,
	"rename":      doRename,
	"points":      doPoints,
	"commands":    doEmbargo,
	"admin":       enableAdmin,
	"timeout":     doTimeout,
	"timer":       updateTimer,
	"image":       addImage,
	"gif":         attachGIF,
}

// Interpret applies every bracket command in text to s and returns the
// cleaned reply plus any requested side effects. Unknown or malformed
// commands are ignored; all brackets are stripped either way.
func Interpret(text string, s *State, humans []chat.User) *Outcome {
	out := &Outcome{Reply: stripRe.ReplaceAllString(text, "")}
	if s == nil {
		return out
	}
	s.Normalize()

	for _, m := range tokenRe.FindAllStringSubmatch(text, -1) {
		c := Parse(m[1], humans)
		fn, ok := mutators[c.Name]
		if !ok {
			continue
		}
		fn(s, c, out)
		out.Applied = append(out.Applied, c.Name)
	}
	return out
}

// Parse splits a token body on ':' and resolves a numeric second argument
// against humans.
func Parse(body string, humans []chat.User) Command {
	args := strings.Split(body, ":")
	c := Command{Name: strings.ToLower(args[0]), Args: args}
	if len(args) >= 2 && isDigits(args[1]) {
		if u, ok := chat.FindUser(humans, args[1]); ok {
			c.Target = &u
		}
	}
	return c
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// InsertNote front-inserts a general note, evicting the oldest past MaxNotes.
func (s *State) InsertNote(note string) {
	s.Notes = append([]string{note}, s.Notes...)
	if len(s.Notes) > MaxNotes {
		s.Notes = s.Notes[:MaxNotes]
	}
}

func updateNotes(s *State, c Command, _ *Outcome) {
	args := c.Args
	switch {
	case c.Target != nil && len(args) > 2:
		s.UserNotes[c.Target.ID] = strings.Join(args[2:], ":")
	case len(args) > 2 && isDigits(args[1]):
		if i, err := strconv.Atoi(args[1]); err == nil && i < len(s.Notes) {
			s.Notes = append(s.Notes[:i:i], s.Notes[i+1:]...)
		}
		s.InsertNote(strings.Join(args[2:], ":"))
	case len(args) > 1:
		s.InsertNote(strings.Join(args[1:], ":"))
	}
}

func updatePersonality(s *State, c Command, _ *Outcome) {
	if len(c.Args) >= 3 {
		s.PersonalityTraits[c.Args[1]] = c.Args[2]
	}
}

func doRename(s *State, c Command, out *Outcome) {
	switch {
	case c.Target == nil && len(c.Args) == 2:
		s.Name = c.Args[1]
		out.Actions = append(out.Actions, Action{Kind: RenameSelf, Text: c.Args[1]})
	case c.Target != nil && s.HasAdminPowers && len(c.Args) > 2:
		out.Actions = append(out.Actions, Action{Kind: RenameUser, User: *c.Target, Text: strings.Join(c.Args[2:], ":")})
	}
}

func doPoints(s *State, c Command, out *Outcome) {
	if !s.HasPointControl {
		s.HasPointControl = true
		return
	}
	if c.Target == nil || len(c.Args) <= 2 {
		return
	}
	amount, err := strconv.ParseFloat(c.Args[2], 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return
	}
	out.Actions = append(out.Actions, Action{Kind: AwardPoints, User: *c.Target, Amount: amount})
}

func doEmbargo(s *State, c Command, _ *Outcome) {
	if len(c.Args) <= 1 {
		return
	}
	switch strings.ToLower(c.Args[1]) {
	case "embargo", "ignore":
		s.IsEmbargoingResponses, s.IsCapturingResponses = true, false
	case "capture", "replace":
		s.IsEmbargoingResponses, s.IsCapturingResponses = false, true
	default:
		s.IsEmbargoingResponses, s.IsCapturingResponses = false, false
	}
}

func enableAdmin(s *State, _ Command, _ *Outcome) {
	s.HasAdminPowers = true
}

func doTimeout(s *State, c Command, out *Outcome) {
	if !s.HasAdminPowers || c.Target == nil || len(c.Args) < 3 || !isDigits(c.Args[2]) {
		return
	}
	secs, err := strconv.Atoi(c.Args[2])
	if err != nil {
		return
	}
	out.Actions = append(out.Actions, Action{Kind: TimeoutUser, User: *c.Target, Seconds: min(secs, MaxTimeout)})
}

func updateTimer(s *State, c Command, _ *Outcome) {
	if len(c.Args) != 2 || !isDigits(c.Args[1]) {
		return
	}
	secs, err := strconv.Atoi(c.Args[1])
	if err != nil {
		return
	}
	s.AutoresponseTimer = max(secs, MinTimer)
}

func addImage(_ *State, c Command, out *Outcome) {
	if len(c.Args) > 1 {
		out.ImageDescription = c.Args[1]
	}
	if len(c.Args) > 2 {
		out.ImageTitle = c.Args[2]
	}
}

func attachGIF(_ *State, c Command, out *Outcome) {
	if len(c.Args) > 1 {
		out.Actions = append(out.Actions, Action{Kind: AttachGIF, Text: strings.Join(c.Args[1:], " ")})
	}
}
