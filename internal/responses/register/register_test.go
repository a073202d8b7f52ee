package register

import (
	"context"
	"path/filepath"
	"testing"

	"wigglebot/internal/chat"
	"wigglebot/internal/response"
	"wigglebot/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*RegisterResponse, *WhoisResponse, *storage.Storage) {
	t.Helper()
	store, err := storage.New(filepath.Join(t.TempDir(), "users.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	deps := &response.Deps{Store: store}
	return &RegisterResponse{Base: response.NewBase("register", ""), deps: deps},
		&WhoisResponse{Base: response.NewBase("whois", ""), deps: deps},
		store
}

func say(t *testing.T, h response.MessageResponder, author, text string) string {
	t.Helper()
	out, err := h.RespondToMessage(context.Background(), text, &chat.Message{GuildID: "g", Author: chat.User{ID: author}})
	require.NoError(t, err)
	return out
}

func TestRegisterName(t *testing.T) {
	reg, _, store := setup(t)

	assert.Equal(t, "Your name has been registered as Mary Sue.", say(t, reg, "1", "name Mary Sue"))
	name, _, err := store.NameAndPronouns("g", "1")
	require.NoError(t, err)
	assert.Equal(t, "Mary Sue", name)
}

func TestRegisterPronouns(t *testing.T) {
	reg, _, _ := setup(t)

	steps := []struct{ in, want string }{
		{"pronouns -d she/her", "You don't have any pronouns."},
		{"pronouns She/Her", "Okay, I'll remember your pronouns: she/her"},
		{"pronouns -a they/them", "Okay, I'll remember your pronouns: she/her, they/them"},
		{"pronouns -a she/her", "You already have those pronouns."},
		{"pronouns -d he/him", "You don't have those pronouns. Current pronouns are: she/her, they/them"},
		{"pronouns -d she/her", "Your updated pronouns are: they/them"},
		{"pronouns -d they/them", "Your pronouns have been deleted."},
	}
	for _, s := range steps {
		assert.Equal(t, s.want, say(t, reg, "1", s.in), s.in)
	}
}

func TestRegisterUsage(t *testing.T) {
	reg, _, _ := setup(t)
	for _, in := range []string{"", "name", "nickname bob"} {
		assert.Equal(t, reg.Help(), say(t, reg, "1", in), in)
	}
	assert.Contains(t, reg.Help(), `"!register name <name>"`)
}

func TestWhois(t *testing.T) {
	reg, whois, _ := setup(t)

	assert.Equal(t, "I don't know who you are yet! Register your name or pronouns with !register.", say(t, whois, "1", ""))

	say(t, reg, "1", "name Alice")
	assert.Equal(t, "You are Alice.", say(t, whois, "1", ""))
	say(t, reg, "1", "pronouns she/her")
	assert.Equal(t, "You are Alice. You have the following pronouns: she/her", say(t, whois, "1", ""))

	say(t, reg, "2", "name Bob")
	say(t, reg, "3", "name Sam")
	say(t, reg, "4", "name sam")

	assert.Equal(t, "Here are all the users who have told me their names: Alice, Bob, Sam, sam", say(t, whois, "1", "-l"))
	assert.Equal(t, "The user named alice uses she/her pronouns.", say(t, whois, "1", "alice"))
	assert.Equal(t, "The user named Bob doesn't have any pronouns set.", say(t, whois, "1", "Bob"))
	assert.Equal(t, "I don't know anyone named Zed.", say(t, whois, "1", "Zed"))
	assert.Equal(t, "There are multiple people here by the name SAM and they are all ruining my life", say(t, whois, "1", "SAM"))
}
