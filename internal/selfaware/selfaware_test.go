package selfaware

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"wigglebot/internal/chat"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice  = chat.User{ID: "111", Username: "alice"}
	bob    = chat.User{ID: "222", Username: "bob", Nick: "Bobby"}
	humans = []chat.User{alice, bob}
)

func TestInterpretStripsAndApplies(t *testing.T) {
	s := Reinitialize("g", "c", "")

	out := Interpret("hello [note:hi][rename:bob]world", s, humans)

	assert.Equal(t, "hello world", out.Reply)
	require.NotEmpty(t, s.Notes)
	assert.Equal(t, "hi", s.Notes[0])
	assert.Equal(t, "bob", s.Name)
	require.Len(t, out.Actions, 1)
	assert.Equal(t, Action{Kind: RenameSelf, Text: "bob"}, out.Actions[0])
	assert.Equal(t, []string{"note", "rename"}, out.Applied)
}

func TestInterpretUnknownTokensAreStripped(t *testing.T) {
	s := NewState()
	out := Interpret("a [frobnicate:x] b [] c", s, nil)
	assert.Equal(t, "a  b  c", out.Reply)
	assert.Empty(t, out.Applied)
	assert.Empty(t, out.Actions)
}

func TestInterpretNilState(t *testing.T) {
	out := Interpret("ok [note:x]", nil, nil)
	assert.Equal(t, "ok ", out.Reply)
}

func TestNotesEvictOldest(t *testing.T) {
	s := NewState()
	for i := 0; i < MaxNotes+1; i++ {
		Interpret(fmt.Sprintf("[note:n%d]", i), s, nil)
	}
	require.Len(t, s.Notes, MaxNotes)
	assert.Equal(t, "n10", s.Notes[0])
	assert.Equal(t, "n1", s.Notes[MaxNotes-1])
}

func TestNoteVariants(t *testing.T) {
	s := NewState()
	s.Notes = []string{"zero", "one", "two"}

	Interpret("[note:1:replaced:with colon]", s, humans)
	assert.Equal(t, []string{"replaced:with colon", "zero", "two"}, s.Notes)

	Interpret("[note:9:past the end]", s, humans)
	assert.Equal(t, "past the end", s.Notes[0])
	assert.Len(t, s.Notes, 4)

	Interpret("[note:222:likes cheese]", s, humans)
	assert.Equal(t, "likes cheese", s.UserNotes["222"])
	assert.Len(t, s.Notes, 4)

	Interpret("[note]", s, humans)
	assert.Len(t, s.Notes, 4)
}

func TestPersonality(t *testing.T) {
	s := NewState()
	Interpret("[p:curiosity:7][personality:anger:3][p:bad]", s, nil)
	assert.Equal(t, map[string]string{"curiosity": "7", "anger": "3"}, s.PersonalityTraits)
}

func TestEmbargoModes(t *testing.T) {
	cases := []struct {
		arg              string
		embargo, capture bool
	}{
		{"embargo", true, false},
		{"ignore", true, false},
		{"capture", false, true},
		{"replace", false, true},
		{"allow", false, false},
		{"whatever", false, false},
	}
	for _, tc := range cases {
		t.Run(tc.arg, func(t *testing.T) {
			s := NewState()
			s.IsEmbargoingResponses = true
			s.IsCapturingResponses = true
			Interpret("[commands:"+tc.arg+"]", s, nil)
			assert.Equal(t, tc.embargo, s.IsEmbargoingResponses)
			assert.Equal(t, tc.capture, s.IsCapturingResponses)
		})
	}
}

func TestPointsNeedControlThenTarget(t *testing.T) {
	s := NewState()

	out := Interpret("[points:111:5]", s, humans)
	assert.True(t, s.HasPointControl)
	assert.Empty(t, out.Actions)

	out = Interpret("[points:999:5][points:111:lots][points:111:2.5]", s, humans)
	require.Len(t, out.Actions, 1)
	assert.Equal(t, AwardPoints, out.Actions[0].Kind)
	assert.Equal(t, alice, out.Actions[0].User)
	assert.Equal(t, 2.5, out.Actions[0].Amount)

	out = Interpret("[points:111:NaN][points:111:inf][points:111:-Inf]", s, humans)
	assert.Empty(t, out.Actions)
}

func TestAdminGating(t *testing.T) {
	s := NewState()

	out := Interpret("[timeout:111:30][rename:222:Robert]", s, humans)
	assert.Empty(t, out.Actions)

	out = Interpret("[admin][timeout:111:5000][rename:222:Robert]", s, humans)
	assert.True(t, s.HasAdminPowers)
	require.Len(t, out.Actions, 2)
	assert.Equal(t, Action{Kind: TimeoutUser, User: alice, Seconds: MaxTimeout}, out.Actions[0])
	assert.Equal(t, Action{Kind: RenameUser, User: bob, Text: "Robert"}, out.Actions[1])
}

func TestTimerFloor(t *testing.T) {
	s := NewState()
	Interpret("[timer:5]", s, nil)
	assert.Equal(t, MinTimer, s.AutoresponseTimer)

	Interpret("[timer:900]", s, nil)
	assert.Equal(t, 900, s.AutoresponseTimer)

	Interpret("[timer:soon][timer:1:2]", s, nil)
	assert.Equal(t, 900, s.AutoresponseTimer)
}

func TestImageAndGif(t *testing.T) {
	s := NewState()
	out := Interpret("look [image:a red fox:Foxy][gif:happy:dance]", s, nil)
	assert.Equal(t, "look ", out.Reply)
	assert.Equal(t, "a red fox", out.ImageDescription)
	assert.Equal(t, "Foxy", out.ImageTitle)
	require.Len(t, out.Actions, 1)
	assert.Equal(t, Action{Kind: AttachGIF, Text: "happy dance"}, out.Actions[0])
}

func TestDecide(t *testing.T) {
	on := Reinitialize("g", "c", "")
	embargo := Reinitialize("g", "c", "")
	embargo.IsEmbargoingResponses = true
	capture := Reinitialize("g", "c", "")
	capture.IsCapturingResponses = true
	off := Reinitialize("g", "c", "")
	off.Enabled = false

	cases := []struct {
		name      string
		state     *State
		mentioned bool
		channel   string
		want      Decision
	}{
		{"nil state", nil, true, "c", RespondNormally},
		{"disabled", off, true, "c", RespondNormally},
		{"other channel", capture, true, "x", RespondNormally},
		{"plain message", on, false, "c", RespondNormally},
		{"mentioned", on, true, "c", Capture},
		{"embargo unmentioned", embargo, false, "c", DoNotRespond},
		{"embargo mentioned", embargo, true, "c", Capture},
		{"capture unmentioned", capture, false, "c", Capture},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Decide(tc.state, tc.mentioned, "g", tc.channel))
		})
	}
}

func TestReinitialize(t *testing.T) {
	s := Reinitialize("g", "c", "42")
	assert.True(t, s.Active())
	assert.Equal(t, CreatorNote, s.UserNotes["42"])
	assert.Equal(t, "2", s.PersonalityTraits["curiosity"])
	assert.Equal(t, "0", s.PersonalityTraits["confidence"])
	assert.Equal(t, DefaultTimer*time.Second, s.Interval())
	assert.Equal(t, DefaultName, s.DisplayName())

	s.Enabled = false
	assert.Zero(t, s.Interval())
}

func TestBuildPromptCountsMessages(t *testing.T) {
	s := Reinitialize("g", "c", "111")
	s.InsertNote("the sky is loud")

	first := BuildPrompt(s, humans, "be nice")
	second := BuildPrompt(s, humans, "be nice")

	assert.Equal(t, 2, s.MessageCount)
	assert.Contains(t, first, "1st message")
	assert.Contains(t, second, "2nd message")
	assert.Contains(t, first, `0: "the sky is loud"`)
	assert.Contains(t, first, `alice (<@111>): "`+CreatorNote+`"`)
	assert.Contains(t, first, "Bobby (<@222>)")
	assert.Contains(t, first, "curiosity: 2 / 10")
	assert.Contains(t, first, `"be nice"`)
	assert.True(t, strings.HasSuffix(first, "recent chat log:"))
	assert.Contains(t, first, "[admin]")

	s.HasAdminPowers = true
	assert.Contains(t, BuildPrompt(s, humans, ""), "[timeout:userid:seconds]")
}
