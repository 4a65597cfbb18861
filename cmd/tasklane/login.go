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

package main

import (
	"errors"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tasklane/tasklane/api/types"
	"github.com/tasklane/tasklane/cmd/tasklane/config"
	"github.com/tasklane/tasklane/server"
	"github.com/tasklane/tasklane/server/rpc/auth"
)

var (
	flagToken         string
	flagSecretKey     string
	flagUserID        string
	flagEmail         string
	flagName          string
	flagTokenDuration time.Duration
)

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Save an access token for the Tasklane server",
		Long: "Save an access token for the Tasklane server. The token is either given with --token " +
			"or signed locally with the secret key of the server for the given user.",
		PreRunE: config.Preload,
		RunE: func(cmd *cobra.Command, args []string) error {
			token := flagToken
			if token == "" {
				if flagSecretKey == "" || flagUserID == "" || flagEmail == "" {
					return errors.New("--token or --secret-key with --user-id and --email is required")
				}

				manager := auth.NewTokenManager(flagSecretKey, flagTokenDuration)
				signed, err := manager.Generate(&types.Identity{
					ID:          types.ID(flagUserID),
					Email:       flagEmail,
					DisplayName: flagName,
				})
				if err != nil {
					return err
				}
				token = signed
			}

			conf, err := config.Load()
			if err != nil {
				return err
			}
			rpcAddr := viper.GetString("rpcAddr")
			conf.Auths[rpcAddr] = token
			conf.RPCAddr = rpcAddr
			conf.IsInsecure = viper.GetBool("isInsecure")
			if err := config.Save(conf); err != nil {
				return err
			}

			cmd.Printf("logged in to %s\n", rpcAddr)
			return nil
		},
	}
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "logout",
		Short:   "Remove the access token of the Tasklane server",
		PreRunE: config.Preload,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := config.Load()
			if err != nil {
				return err
			}

			rpcAddr := viper.GetString("rpcAddr")
			if _, ok := conf.Auths[rpcAddr]; !ok {
				return config.ErrNotLoggedIn
			}
			if len(conf.Auths) <= 1 {
				return config.Delete()
			}

			delete(conf.Auths, rpcAddr)
			if conf.RPCAddr == rpcAddr {
				conf.RPCAddr = ""
			}
			return config.Save(conf)
		},
	}
}

func init() {
	cmd := newLoginCmd()
	cmd.Flags().StringVar(&flagToken, "token", "", "Access token issued by the identity provider")
	cmd.Flags().StringVar(&flagSecretKey, "secret-key", "", "Secret key of the server to sign a token with")
	cmd.Flags().StringVar(&flagUserID, "user-id", "", "User ID of the signed token")
	cmd.Flags().StringVar(&flagEmail, "email", "", "Email of the signed token")
	cmd.Flags().StringVar(&flagName, "name", "", "Display name of the signed token")
	cmd.Flags().DurationVar(
		&flagTokenDuration,
		"token-duration",
		server.DefaultTokenDuration,
		"Lifetime of the signed token",
	)
	cmd.MarkFlagsMutuallyExclusive("token", "secret-key")
	rootCmd.AddCommand(cmd)

	rootCmd.AddCommand(newLogoutCmd())
}
