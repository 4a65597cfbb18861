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

// Package workspace provides the workspace command.
package workspace

import (
	"context"
	"errors"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/tasklane/tasklane/cmd/tasklane/config"
)

var (
	// SubCmd represents the workspace command.
	SubCmd = &cobra.Command{
		Use:     "workspace",
		Aliases: []string{"ws"},
		Short:   "Manage workspaces",
	}
)

func newCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "create [name]",
		Short:   "Create a new workspace",
		Example: "tasklane workspace create \"Design Team\"",
		PreRunE: config.Preload,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("name is required")
			}

			cli, err := config.Dial()
			if err != nil {
				return err
			}

			workspace, err := cli.CreateWorkspace(context.Background(), args[0])
			if err != nil {
				return err
			}

			cmd.Printf("%s\n", workspace.ID)
			return nil
		},
	}
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Short:   "List the workspaces you own or belong to",
		PreRunE: config.Preload,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := config.Dial()
			if err != nil {
				return err
			}

			workspaces, err := cli.ListWorkspaces(context.Background())
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
				"ID",
				"NAME",
				"OWNER",
				"PLAN",
				"CREATED AT",
			})
			for _, workspace := range workspaces {
				tw.AppendRow(table.Row{
					workspace.ID,
					workspace.Name,
					workspace.OwnerID,
					workspace.Plan,
					workspace.CreatedAt.Local().Format(time.DateTime),
				})
			}
			cmd.Printf("%s\n", tw.Render())

			return nil
		},
	}
}

func init() {
	SubCmd.AddCommand(newCreateCommand())
	SubCmd.AddCommand(newListCommand())
}
