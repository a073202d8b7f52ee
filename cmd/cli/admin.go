package main

import (
	"errors"
	"fmt"

	"wigglebot/internal/prompts"
	"wigglebot/internal/selfaware"
	"wigglebot/internal/storage"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func (c *cli) selfawareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "selfaware",
		Short: "Manage the self-awareness session",
		Long: `Manage the self-awareness roleplay session.

Available subcommands:
  init - start a fresh session in a channel
  off  - end the session, keeping what it learned
  show - print the stored session`,
	}

	var guild, channel, creator string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Start a fresh session in a channel",
		RunE: func(cmd *cobra.Command, args []string) error {
			if guild == "" || channel == "" {
				return errors.New("--guild and --channel are required")
			}
			return c.withState(func(s *storage.StateStore) error {
				if err := s.SaveState(selfaware.Reinitialize(guild, channel, creator)); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Self-awareness initialized in %s/%s.\n", guild, channel)
				return nil
			})
		},
	}
	initCmd.Flags().StringVar(&guild, "guild", "", "guild id")
	initCmd.Flags().StringVar(&channel, "channel", "", "channel id")
	initCmd.Flags().StringVar(&creator, "creator", "", "user id remembered as the creator")

	offCmd := &cobra.Command{
		Use:   "off",
		Short: "End the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withState(func(s *storage.StateStore) error {
				st, err := s.LoadState()
				if err != nil {
					st = selfaware.NewState()
				}
				st.Enabled = false
				if err := s.SaveState(st); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Self-awareness disabled.")
				return nil
			})
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withState(func(s *storage.StateStore) error {
				st, err := s.LoadState()
				if err != nil {
					return fmt.Errorf("no session: %w", err)
				}
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				defer enc.Close()
				return enc.Encode(st)
			})
		},
	}

	cmd.AddCommand(initCmd, offCmd, showCmd)
	return cmd
}

func (c *cli) withState(fn func(s *storage.StateStore) error) error {
	s, err := storage.NewStateStore(c.cfg.StoragePath)
	if err != nil {
		return fmt.Errorf("open state store: %w", err)
	}
	defer s.Close()
	return fn(s)
}

func (c *cli) promptsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prompts",
		Short: "List the preset AI prompts",
		RunE: func(cmd *cobra.Command, args []string) error {
			book, err := prompts.Load(c.cfg.PromptsPath, nil)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), book.List())
			return nil
		},
	}
}
