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

// Package member provides the member command.
package member

import (
	"context"
	"errors"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/tasklane/tasklane/api/types"
	"github.com/tasklane/tasklane/cmd/tasklane/config"
)

var (
	// SubCmd represents the member command.
	SubCmd = &cobra.Command{
		Use:   "member",
		Short: "Manage the members of a workspace",
	}

	workspaceID string
)

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Short:   "List the member directory of the workspace",
		PreRunE: config.Preload,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := config.Dial()
			if err != nil {
				return err
			}

			users, err := cli.ListMembers(context.Background(), types.ID(workspaceID))
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
				"USER ID",
				"NAME",
				"EMAIL",
				"ROLE",
			})
			for _, user := range users {
				tw.AppendRow(table.Row{
					user.ID,
					user.DisplayName,
					user.Email,
					user.Role,
				})
			}
			cmd.Printf("%s\n", tw.Render())

			return nil
		},
	}
}

func newRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm [user id]",
		Short:   "Remove a member from the workspace",
		PreRunE: config.Preload,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("user id is required")
			}

			cli, err := config.Dial()
			if err != nil {
				return err
			}

			return cli.RemoveMember(context.Background(), types.ID(workspaceID), types.ID(args[0]))
		},
	}
}

func newRoleCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "role [user id] [role]",
		Short:   "Change the role of a member",
		Example: "tasklane member role -w <workspace> <user id> ADMIN",
		PreRunE: config.Preload,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errors.New("user id and role are required")
			}

			cli, err := config.Dial()
			if err != nil {
				return err
			}

			member, err := cli.UpdateMemberRole(
				context.Background(),
				types.ID(workspaceID),
				types.ID(args[0]),
				types.MemberRole(args[1]),
			)
			if err != nil {
				return err
			}

			cmd.Printf("%s is now %s\n", member.Email, member.Role)
			return nil
		},
	}
}

func newLinkCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "link [user id] [chat id]",
		Short:   "Set the chat a member is notified in",
		PreRunE: config.Preload,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errors.New("user id and chat id are required")
			}

			cli, err := config.Dial()
			if err != nil {
				return err
			}

			_, err = cli.LinkNotificationChannel(
				context.Background(),
				types.ID(workspaceID),
				types.ID(args[0]),
				args[1],
			)
			return err
		},
	}
}

func init() {
	SubCmd.PersistentFlags().StringVarP(&workspaceID, "workspace", "w", "", "ID of the workspace")
	_ = SubCmd.MarkPersistentFlagRequired("workspace")

	SubCmd.AddCommand(newListCommand())
	SubCmd.AddCommand(newRemoveCommand())
	SubCmd.AddCommand(newRoleCommand())
	SubCmd.AddCommand(newLinkCommand())
}
