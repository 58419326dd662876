/* corefwd - an NDN forwarding core
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package core

import (
	"fmt"
	"math"

	"github.com/pelletier/go-toml"
)

var config *toml.Tree

// recognizedKeys lists every fully-qualified configuration key the
// forwarding core understands. Anything else in the file is a
// configuration error.
var recognizedKeys = map[string]bool{
	"core.log_level":                     true,
	"forwarder.default_hop_limit":        true,
	"tables.pit.queue_size":              true,
	"tables.content_store.capacity":      true,
	"tables.dead_nonce_list.lifetime_ms": true,
	"tables.dead_nonce_list.capacity":    true,
	"tables.network_region.regions":      true,
	"faces.websocket.listen":             true,
}

// LoadConfig loads the forwarder's TOML configuration from file. When
// dryRun is true, the file is parsed and every key checked against
// recognizedKeys, but the package-level config used by
// GetConfig*Default is left untouched - useful for "validate config
// and exit" tooling.
func LoadConfig(file string, dryRun bool) error {
	tree, err := toml.LoadFile(file)
	if err != nil {
		return fmt.Errorf("unable to load configuration file: %w", err)
	}

	if err := validateKeys("", tree.ToMap()); err != nil {
		return err
	}

	if !dryRun {
		config = tree
	}
	return nil
}

func validateKeys(prefix string, m map[string]interface{}) error {
	for k, v := range m {
		full := k
		if prefix != "" {
			full = prefix + "." + k
		}
		if nested, ok := v.(map[string]interface{}); ok {
			if err := validateKeys(full, nested); err != nil {
				return err
			}
			continue
		}
		if !recognizedKeys[full] {
			return fmt.Errorf("%w: unrecognized configuration key %q", ErrInvalidConfig, full)
		}
	}
	return nil
}

// GetConfigIntDefault returns the integer configuration value at the
// specified key or the specified default value if it does not exist.
func GetConfigIntDefault(key string, def int) int {
	if config == nil {
		return def
	}
	valRaw := config.Get(key)
	if valRaw == nil {
		return def
	}
	val, ok := valRaw.(int64)
	if ok && val >= math.MinInt32 && val <= math.MaxInt32 {
		return int(val)
	}
	return def
}

// GetConfigStringDefault returns the string configuration value at
// the specified key or the specified default value if it does not exist.
func GetConfigStringDefault(key string, def string) string {
	if config == nil {
		return def
	}
	valRaw := config.Get(key)
	if valRaw == nil {
		return def
	}
	if val, ok := valRaw.(string); ok {
		return val
	}
	return def
}

// GetConfigArrayString returns the configuration array value at the
// specified key or nil if it does not exist.
func GetConfigArrayString(key string) []string {
	if config == nil {
		return nil
	}
	array := config.GetArray(key)
	if array == nil {
		return nil
	}
	if val, ok := array.([]string); ok {
		return val
	}
	return nil
}
