package main

import (
	"bufio"
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"wigglebot/internal/bot"
	"wigglebot/internal/chat"
	"wigglebot/internal/chat/memchat"

	"github.com/spf13/cobra"
)

const (
	consoleGuild   = "console"
	consoleChannel = "console"
)

func (c *cli) chatCmd() *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the bot in the terminal",
		Long: `Starts a console session. Every line is sent to the bot as a chat
message, so "!help" and the other commands work as they do on Discord.
Mention the bot with "@bot". End with Ctrl-D.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return c.runChat(ctx, cmd, user)
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "you", "name to chat as")
	return cmd
}

func (c *cli) runChat(ctx context.Context, cmd *cobra.Command, name string) error {
	me := chat.User{ID: "1", Username: "wigglebot"}
	you := chat.User{ID: "2", Username: name}

	client := memchat.New(me)
	client.AddChannel(chat.Channel{ID: consoleChannel, GuildID: consoleGuild, Name: "console", Kind: chat.KindText})
	client.AddMember(consoleGuild, you)

	out := cmd.OutOrStdout()
	client.OnPost = func(msg *chat.Message, ch *chat.Channel) {
		where := ""
		if ch != nil && ch.Kind == chat.KindThread {
			where = " [" + ch.Name + "]"
		}
		for _, a := range msg.Attachments {
			fmt.Fprintf(out, "%s%s: <attachment %s>\n", me.Username, where, a.Filename)
		}
		if msg.Content != "" {
			fmt.Fprintf(out, "%s%s: %s\n", me.Username, where, msg.Content)
		}
	}

	app, err := bot.New(ctx, c.cfg, client, bot.Options{})
	if err != nil {
		return err
	}
	defer app.Close()
	app.Start(ctx)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(cmd.InOrStdin())
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			var mentions []chat.User
			if strings.Contains(line, "@bot") {
				line = strings.ReplaceAll(line, "@bot", me.Mention())
				mentions = append(mentions, me)
			}
			app.Dispatcher.HandleMessage(ctx, client.Deliver(consoleChannel, you, line, mentions...))
		}
	}
}
