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

// Package config provides the local configuration of the CLI: the server
// address and the access token saved by login.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tasklane/tasklane/admin"
)

// ErrNotLoggedIn is returned when no token is saved for the server.
var ErrNotLoggedIn = errors.New("you are not logged in, run `tasklane login` first")

// dirEnv overrides the directory the configuration is saved in.
const dirEnv = "TASKLANE_CONFIG_DIR"

// ensureTasklaneDir ensures that the directory of Tasklane exists.
func ensureTasklaneDir() (string, error) {
	dir := os.Getenv(dirEnv)
	if dir == "" {
		dir = path.Join(os.Getenv("HOME"), ".tasklane")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("mkdir: %w", err)
	}
	return dir, nil
}

// configPath returns the path of CLI.
func configPath() (string, error) {
	dir, err := ensureTasklaneDir()
	if err != nil {
		return "", fmt.Errorf("ensure tasklane dir: %w", err)
	}
	return path.Join(dir, "config.json"), nil
}

// Config is the configuration of CLI.
type Config struct {
	// Auths is the map of the address and the token.
	Auths map[string]string `json:"auths"`

	// RPCAddr is the address used when no flag is given.
	RPCAddr string `json:"rpcAddr"`

	// IsInsecure is whether to use plain HTTP for RPCAddr.
	IsInsecure bool `json:"isInsecure"`
}

// New creates a new configuration.
func New() *Config {
	return &Config{
		Auths: make(map[string]string),
	}
}

// Load loads the configuration from the config path.
func Load() (*Config, error) {
	configPathValue, err := configPath()
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Clean(configPathValue))
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}

		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	config := New()
	if err := json.NewDecoder(file).Decode(config); err != nil {
		return nil, fmt.Errorf("decode config file: %w", err)
	}
	if config.Auths == nil {
		config.Auths = make(map[string]string)
	}

	return config, nil
}

// Save saves the configuration to the config path.
func Save(config *Config) error {
	configPathValue, err := configPath()
	if err != nil {
		return err
	}

	file, err := os.OpenFile(filepath.Clean(configPathValue), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	if err := json.NewEncoder(file).Encode(config); err != nil {
		return fmt.Errorf("encode config file: %w", err)
	}

	return nil
}

// Delete deletes the configuration file.
func Delete() error {
	configPathValue, err := configPath()
	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Clean(configPathValue)); err != nil {
		return fmt.Errorf("remove config file: %w", err)
	}

	return nil
}

// Preload fills the server address from the saved configuration when it is
// not given by a flag or the environment.
func Preload(_ *cobra.Command, _ []string) error {
	config, err := Load()
	if err != nil {
		return err
	}

	if config.RPCAddr != "" && !viper.IsSet("rpcAddr") {
		viper.Set("rpcAddr", config.RPCAddr)
		viper.Set("isInsecure", config.IsInsecure)
	}

	return nil
}

// Dial creates a client for the configured server with the saved token.
func Dial() (*admin.Client, error) {
	config, err := Load()
	if err != nil {
		return nil, err
	}

	rpcAddr := viper.GetString("rpcAddr")
	token, ok := config.Auths[rpcAddr]
	if !ok {
		return nil, ErrNotLoggedIn
	}

	return admin.New(rpcAddr, admin.WithToken(token), admin.WithInsecure(viper.GetBool("isInsecure")))
}
