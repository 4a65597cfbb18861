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

package config_test

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasklane/tasklane/cmd/tasklane/config"
)

func TestConfig(t *testing.T) {
	t.Setenv("TASKLANE_CONFIG_DIR", t.TempDir())

	t.Run("load without file test", func(t *testing.T) {
		conf, err := config.Load()
		require.NoError(t, err)
		assert.Empty(t, conf.Auths)
		assert.Empty(t, conf.RPCAddr)
	})

	t.Run("save and load test", func(t *testing.T) {
		conf := config.New()
		conf.Auths["localhost:8080"] = "token"
		conf.RPCAddr = "localhost:8080"
		conf.IsInsecure = true
		require.NoError(t, config.Save(conf))

		loaded, err := config.Load()
		require.NoError(t, err)
		assert.Equal(t, conf, loaded)
	})

	t.Run("preload and dial test", func(t *testing.T) {
		viper.Reset()
		defer viper.Reset()

		require.NoError(t, config.Preload(nil, nil))
		assert.Equal(t, "localhost:8080", viper.GetString("rpcAddr"))
		assert.True(t, viper.GetBool("isInsecure"))

		cli, err := config.Dial()
		require.NoError(t, err)
		assert.NotNil(t, cli)

		viper.Set("rpcAddr", "elsewhere:8080")
		_, err = config.Dial()
		assert.ErrorIs(t, err, config.ErrNotLoggedIn)
	})

	t.Run("delete test", func(t *testing.T) {
		require.NoError(t, config.Delete())
		conf, err := config.Load()
		require.NoError(t, err)
		assert.Empty(t, conf.Auths)
	})
}
