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

// Package task provides the task command.
package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tasklane/tasklane/api/types"
	"github.com/tasklane/tasklane/cmd/tasklane/config"
)

var (
	// SubCmd represents the task command.
	SubCmd = &cobra.Command{
		Use:   "task",
		Short: "Create and update tasks and projects",
	}

	workspaceID string
	kind        string
	fieldsJSON  string
	deletes     []string
)

func parseFields() (types.Fields, error) {
	if fieldsJSON == "" {
		return types.Fields{}, nil
	}

	var fields types.Fields
	if err := json.Unmarshal([]byte(fieldsJSON), &fields); err != nil {
		return nil, fmt.Errorf("parse --fields: %w", err)
	}
	return fields, nil
}

func printTask(cmd *cobra.Command, task *types.Task) error {
	marshalled, err := json.MarshalIndent(task, "", "  ")
	if err != nil {
		return errors.New("failed to marshal JSON")
	}
	cmd.Println(string(marshalled))
	return nil
}

func newCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "create",
		Short:   "Create a task or a project",
		Example: `tasklane task create -w <workspace> --fields '{"title":"Ship it","assigneeIds":["u2"]}'`,
		PreRunE: config.Preload,
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := parseFields()
			if err != nil {
				return err
			}

			cli, err := config.Dial()
			if err != nil {
				return err
			}

			task, err := cli.CreateTask(context.Background(), types.ID(workspaceID), types.TaskKind(kind), fields)
			if err != nil {
				return err
			}

			return printTask(cmd, task)
		},
	}
}

func newUpdateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "update [id]",
		Short:   "Update the fields of a task or a project",
		Example: `tasklane task update -w <workspace> <id> --fields '{"assigneeIds":[]}' --delete dueDate`,
		PreRunE: config.Preload,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("id is required")
			}

			fields, err := parseFields()
			if err != nil {
				return err
			}

			cli, err := config.Dial()
			if err != nil {
				return err
			}

			task, err := cli.UpdateTask(
				context.Background(),
				types.ID(workspaceID),
				types.TaskKind(kind),
				types.ID(args[0]),
				fields,
				deletes,
			)
			if err != nil {
				return err
			}

			return printTask(cmd, task)
		},
	}
	cmd.Flags().StringSliceVar(&deletes, "delete", nil, "Fields to remove")
	return cmd
}

func init() {
	SubCmd.PersistentFlags().StringVarP(&workspaceID, "workspace", "w", "", "ID of the workspace")
	SubCmd.PersistentFlags().StringVar(&kind, "kind", string(types.KindTask), "Kind: task, project")
	SubCmd.PersistentFlags().StringVar(&fieldsJSON, "fields", "", "Fields as a JSON object")
	_ = SubCmd.MarkPersistentFlagRequired("workspace")

	SubCmd.AddCommand(newCreateCommand())
	SubCmd.AddCommand(newUpdateCommand())
}
