// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"bufio"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/taibuivan/rendezvous/internal/client"
)

const defaultServer = "http://localhost:8080"

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	server      string
	sessionPath string
}

// apiClient builds a client bound to the configured server and session file.
func (options *rootOptions) apiClient() (*client.Client, error) {
	path := options.sessionPath
	if path == "" {
		var err error
		if path, err = client.DefaultSessionPath(); err != nil {
			return nil, err
		}
	}
	return client.New(options.server, client.NewFileSessionStore(path))
}

// NewRootCmd creates the root command for the rendezvous CLI.
func NewRootCmd() *cobra.Command {
	options := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "rendezvous",
		Short:         "Rendezvous account client",
		Long:          `Register, log in and browse the member directory of a rendezvous server.`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVar(&options.server, "server", defaultServer, "API base URL")
	cmd.PersistentFlags().StringVar(&options.sessionPath, "session", "", "session file (default ~/.rendezvous/session.json)")

	cmd.AddCommand(newCredentialsCmd(options, "register", "Create an account and log in"))
	cmd.AddCommand(newCredentialsCmd(options, "login", "Log in to an existing account"))
	cmd.AddCommand(newLogoutCmd(options))
	cmd.AddCommand(newWhoamiCmd(options))
	cmd.AddCommand(newUsersCmd(options))

	return cmd
}

// newCredentialsCmd builds register and login, which differ only in endpoint.
func newCredentialsCmd(options *rootOptions, use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [username]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := options.apiClient()
			if err != nil {
				return err
			}

			var name string
			if len(args) == 1 {
				name = args[0]
			} else if name, err = promptText(bufio.NewReader(cmd.InOrStdin()), cmd.OutOrStdout(), "Username"); err != nil {
				return err
			}

			password, err := promptPassword(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			action := c.Login
			if use == "register" {
				action = c.Register
			}

			session, err := action(cmd.Context(), name, password)
			if err != nil {
				return err
			}

			cmd.Printf("Logged in as %s\n", session.Username)
			return nil
		},
	}
}

func newLogoutCmd(options *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := options.apiClient()
			if err != nil {
				return err
			}
			if err := c.Logout(); err != nil {
				return err
			}
			cmd.Println("Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(options *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in member",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := options.apiClient()
			if err != nil {
				return err
			}

			member, err := c.Me(cmd.Context())
			if err != nil {
				return explain(err)
			}

			cmd.Printf("%s (joined %s)\n", member.Username, member.CreatedAt.Format(time.DateOnly))
			return nil
		},
	}
}

func newUsersCmd(options *rootOptions) *cobra.Command {
	var page, limit int

	cmd := &cobra.Command{
		Use:   "users",
		Short: "List registered members",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := options.apiClient()
			if err != nil {
				return err
			}

			members, err := c.ListUsers(cmd.Context(), page, limit)
			if err != nil {
				return explain(err)
			}

			table := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(table, "USERNAME\tJOINED")
			for _, member := range members {
				fmt.Fprintf(table, "%s\t%s\n", member.Username, member.CreatedAt.Format(time.DateOnly))
			}
			return table.Flush()
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&limit, "limit", 20, "members per page")
	return cmd
}

// explain turns session failures into a hint to log in again.
func explain(err error) error {
	if errors.Is(err, client.ErrNoSession) {
		return errors.New("not logged in: run `rendezvous login`")
	}
	if client.IsUnauthorized(err) {
		return errors.New("session expired: run `rendezvous login`")
	}
	return err
}
