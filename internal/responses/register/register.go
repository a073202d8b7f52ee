// Package register lets users tell the bot their preferred name and
// pronouns, and look each other up.
package register

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"wigglebot/internal/chat"
	"wigglebot/internal/response"
)

const pronounSep = ", "

type RegisterResponse struct {
	response.Base
	deps *response.Deps
}

// RespondToMessage handles "name <name>", "pronouns [-a|-d] <pronoun>" and
// answers anything else with the usage text.
func (r *RegisterResponse) RespondToMessage(ctx context.Context, text string, req *chat.Message) (string, error) {
	args := strings.Split(text, " ")
	if len(args) < 2 {
		return r.Help(), nil
	}

	switch strings.ToLower(args[0]) {
	case "name":
		return r.updateName(req.GuildID, req.Author.ID, strings.Join(args[1:], " "))
	case "pronouns":
		mode := strings.ToLower(args[1])
		switch {
		case mode == "-a" && len(args) >= 3:
			return r.updatePronouns(req.GuildID, req.Author.ID, strings.ToLower(args[2]), false)
		case mode == "-d" && len(args) >= 3:
			return r.updatePronouns(req.GuildID, req.Author.ID, strings.ToLower(args[2]), true)
		default:
			return r.updatePronouns(req.GuildID, req.Author.ID, mode, false)
		}
	}
	return r.Help(), nil
}

func (r *RegisterResponse) updateName(server, userID, name string) (string, error) {
	if err := r.deps.Store.SetName(server, userID, name); err != nil {
		return "", fmt.Errorf("set name: %w", err)
	}
	return fmt.Sprintf("Your name has been registered as %s.", name), nil
}

func (r *RegisterResponse) updatePronouns(server, userID, pronoun string, remove bool) (string, error) {
	_, current, err := r.deps.Store.NameAndPronouns(server, userID)
	if err != nil {
		return "", fmt.Errorf("load pronouns: %w", err)
	}
	var list []string
	if current != "" {
		list = strings.Split(current, pronounSep)
	}

	if remove {
		if len(list) == 0 {
			return "You don't have any pronouns.", nil
		}
		i := slices.Index(list, pronoun)
		if i < 0 {
			return "You don't have those pronouns. Current pronouns are: " + current, nil
		}
		list = slices.Delete(list, i, i+1)
		updated := strings.Join(list, pronounSep)
		if err := r.deps.Store.SetPronouns(server, userID, updated); err != nil {
			return "", fmt.Errorf("set pronouns: %w", err)
		}
		if updated == "" {
			return "Your pronouns have been deleted.", nil
		}
		return "Your updated pronouns are: " + updated, nil
	}

	if slices.Contains(list, pronoun) {
		return "You already have those pronouns.", nil
	}
	updated := strings.Join(append(list, pronoun), pronounSep)
	if err := r.deps.Store.SetPronouns(server, userID, updated); err != nil {
		return "", fmt.Errorf("set pronouns: %w", err)
	}
	return "Okay, I'll remember your pronouns: " + updated, nil
}

func (r *RegisterResponse) Help() string {
	return fmt.Sprintf("!%[1]s Usage:\n"+
		"> \"!%[1]s name <name>\" to set your name.\n"+
		"> \"!%[1]s pronouns -a/-d <pronouns>\" to (a)dd or (d)elete pronouns", r.Callsign())
}

type WhoisResponse struct {
	response.Base
	deps *response.Deps
}

// RespondToMessage describes the author with no argument, lists every
// registered name with -l, and otherwise looks a name up.
func (r *WhoisResponse) RespondToMessage(ctx context.Context, text string, req *chat.Message) (string, error) {
	store, server := r.deps.Store, req.GuildID

	switch text = strings.TrimSpace(text); text {
	case "":
		name, pronouns, err := store.NameAndPronouns(server, req.Author.ID)
		if err != nil {
			return "", err
		}
		if name == "" {
			return "I don't know who you are yet! Register your name or pronouns with !register.", nil
		}
		out := fmt.Sprintf("You are %s. ", name)
		if pronouns != "" {
			out += "You have the following pronouns: " + pronouns
		}
		return strings.TrimSpace(out), nil
	case "-l":
		names, err := store.AllNames(server)
		if err != nil {
			return "", err
		}
		return "Here are all the users who have told me their names: " + strings.Join(names, ", "), nil
	}

	matches, err := store.PronounsForName(server, text)
	if err != nil {
		return "", err
	}
	switch len(matches) {
	case 0:
		return fmt.Sprintf("I don't know anyone named %s.", text), nil
	case 1:
		if matches[0] == "" {
			return fmt.Sprintf("The user named %s doesn't have any pronouns set.", text), nil
		}
		return fmt.Sprintf("The user named %s uses %s pronouns.", text, matches[0]), nil
	default:
		return fmt.Sprintf("There are multiple people here by the name %s and they are all ruining my life", text), nil
	}
}

func init() {
	response.Register(func(d *response.Deps) response.Handler {
		return &RegisterResponse{
			Base: response.NewBase("register", "register your preferred name/pronoun for ai responses"),
			deps: d,
		}
	})
	response.Register(func(d *response.Deps) response.Handler {
		return &WhoisResponse{
			Base: response.NewBase("whois", "get info about user(s) in the server"),
			deps: d,
		}
	})
}
