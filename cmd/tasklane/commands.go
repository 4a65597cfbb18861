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

// Package main is the entry point of the Tasklane CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tasklane/tasklane/cmd/tasklane/invite"
	"github.com/tasklane/tasklane/cmd/tasklane/member"
	"github.com/tasklane/tasklane/cmd/tasklane/task"
	"github.com/tasklane/tasklane/cmd/tasklane/workspace"
)

// envFile is loaded before the flags are parsed when it exists.
const envFile = ".env"

var rootCmd = &cobra.Command{
	Use:          "tasklane",
	Short:        "Shared workspaces with members, invites and tasks",
	SilenceUsage: true,
}

// Run executes CLI.
func Run() int {
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "load %s: %v\n", envFile, err)
	}

	if err := rootCmd.Execute(); err != nil {
		return 1
	}

	return 0
}

func main() {
	os.Exit(Run())
}

func init() {
	rootCmd.AddCommand(workspace.SubCmd)
	rootCmd.AddCommand(member.SubCmd)
	rootCmd.AddCommand(invite.SubCmd)
	rootCmd.AddCommand(task.SubCmd)

	rootCmd.PersistentFlags().String("rpc-addr", "localhost:8080", "Address of the rpc server")
	rootCmd.PersistentFlags().Bool("insecure", true, "Use plain HTTP to connect to the server")
	_ = viper.BindPFlag("rpcAddr", rootCmd.PersistentFlags().Lookup("rpc-addr"))
	_ = viper.BindPFlag("isInsecure", rootCmd.PersistentFlags().Lookup("insecure"))
	_ = viper.BindEnv("rpcAddr", "TASKLANE_RPC_ADDR")
	_ = viper.BindEnv("isInsecure", "TASKLANE_INSECURE")
}
