/* corefwd - an NDN forwarding core
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corefwd.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[forwarder]
default_hop_limit = 16

[tables.content_store]
capacity = 512

[faces.websocket]
listen = ":9696"
`)

	require.NoError(t, LoadConfig(path, false))
	assert.Equal(t, 16, GetConfigIntDefault("forwarder.default_hop_limit", 0))
	assert.Equal(t, 512, GetConfigIntDefault("tables.content_store.capacity", 1024))
	assert.Equal(t, 1024, GetConfigIntDefault("tables.pit.queue_size", 1024))
	assert.Equal(t, ":9696", GetConfigStringDefault("faces.websocket.listen", ":6363"))
	config = nil
}

func TestLoadConfigRejectsUnknownKey(t *testing.T) {
	path := writeConfig(t, `
[forwarder]
default_hop_limit = 16
typo_key = true
`)

	err := LoadConfig(path, false)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Nil(t, config)
}

func TestLoadConfigDryRunLeavesStateUntouched(t *testing.T) {
	path := writeConfig(t, `
[forwarder]
default_hop_limit = 8
`)

	require.NoError(t, LoadConfig(path, true))
	assert.Nil(t, config)
	assert.Equal(t, 0, GetConfigIntDefault("forwarder.default_hop_limit", 0))
}
