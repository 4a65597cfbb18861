/*
 * Copyright 2026 The Tasklane Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package invite provides the invite command.
package invite

import (
	"context"
	"errors"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/tasklane/tasklane/api/types"
	"github.com/tasklane/tasklane/cmd/tasklane/config"
)

var (
	// SubCmd represents the invite command.
	SubCmd = &cobra.Command{
		Use:   "invite",
		Short: "Manage the invites of a workspace",
	}

	workspaceID string
	role        string
)

func newCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "create [email]",
		Short:   "Invite an email to the workspace",
		Example: "tasklane invite create -w <workspace> --role MEMBER b@example.com",
		PreRunE: config.Preload,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("email is required")
			}

			cli, err := config.Dial()
			if err != nil {
				return err
			}

			invite, err := cli.CreateInvite(
				context.Background(),
				types.ID(workspaceID),
				args[0],
				types.MemberRole(role),
			)
			if err != nil {
				return err
			}

			cmd.Printf("%s\n", invite.ID)
			return nil
		},
	}
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Short:   "List the pending invites of the workspace",
		PreRunE: config.Preload,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := config.Dial()
			if err != nil {
				return err
			}

			invites, err := cli.ListInvites(context.Background(), types.ID(workspaceID))
			if err != nil {
				return err
			}

			tw := table.NewWriter()
			tw.Style().Options.DrawBorder = false
			tw.Style().Options.SeparateColumns = false
			tw.Style().Options.SeparateFooter = false
			tw.Style().Options.SeparateHeader = false
			tw.Style().Options.SeparateRows = false
			tw.AppendHeader(table.Row{
				"TOKEN",
				"EMAIL",
				"ROLE",
				"INVITED BY",
				"EXPIRES AT",
			})
			for _, invite := range invites {
				tw.AppendRow(table.Row{
					invite.ID,
					invite.Email,
					invite.Role,
					invite.InvitedBy,
					invite.ExpiresAt.Local().Format(time.DateTime),
				})
			}
			cmd.Printf("%s\n", tw.Render())

			return nil
		},
	}
}

func newRevokeCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "revoke [token]",
		Short:   "Revoke a pending invite",
		PreRunE: config.Preload,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("token is required")
			}

			cli, err := config.Dial()
			if err != nil {
				return err
			}

			return cli.RevokeInvite(context.Background(), types.ID(workspaceID), args[0])
		},
	}
}

func newAcceptCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "accept [token]",
		Short:   "Join the workspace with an invite",
		PreRunE: config.Preload,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("token is required")
			}

			cli, err := config.Dial()
			if err != nil {
				return err
			}

			member, err := cli.AcceptInvite(context.Background(), types.ID(workspaceID), args[0])
			if err != nil {
				return err
			}

			cmd.Printf("joined %s as %s\n", member.WorkspaceID, member.Role)
			return nil
		},
	}
}

func init() {
	SubCmd.PersistentFlags().StringVarP(&workspaceID, "workspace", "w", "", "ID of the workspace")
	_ = SubCmd.MarkPersistentFlagRequired("workspace")

	createCmd := newCreateCommand()
	createCmd.Flags().StringVar(&role, "role", string(types.RoleMember), "Role granted on acceptance")

	SubCmd.AddCommand(createCmd)
	SubCmd.AddCommand(newListCommand())
	SubCmd.AddCommand(newRevokeCommand())
	SubCmd.AddCommand(newAcceptCommand())
}
