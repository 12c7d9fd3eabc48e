package rosnode

import (
	"encoding/hex"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/chadrockey/ros/pkg/transport"
)

// Config is the node-level configuration loaded from a YAML file,
// grounded on the teacher's Config/DefaultConfig idiom.
type Config struct {
	// Name is the node's registered name with the directory service.
	Name string `yaml:"name"`

	// URI is this node's own advertised URI, used to filter
	// self-subscriptions out of pub_update.
	URI string `yaml:"uri"`

	// InstanceID identifies this node process. It is loaded from the
	// config file; no other package reads it.
	InstanceID string `yaml:"instance_id"`

	// DefaultMaxQueue is the default max_queue applied to subscriptions
	// that don't specify one explicitly.
	DefaultMaxQueue int `yaml:"default_max_queue"`

	// DialOpts overrides the default transport.DialOptions applied to
	// every subscription this node creates.
	DialOpts transport.DialOptions `yaml:"dial_options"`

	// NodeSecretKeyHex is the hex-encoded pre-shared secret used to
	// derive per-link session keys when DialOpts.Encrypt is set. Empty
	// leaves subscription.Options.NodeSecretKey nil, which disables
	// encryption regardless of DialOpts.Encrypt.
	NodeSecretKeyHex string `yaml:"node_secret_key"`
}

// NodeSecretKey decodes NodeSecretKeyHex, returning nil if it's unset.
func (c Config) NodeSecretKey() ([]byte, error) {
	if c.NodeSecretKeyHex == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(c.NodeSecretKeyHex)
	if err != nil {
		return nil, fmt.Errorf("decoding node_secret_key: %w", err)
	}
	return key, nil
}

// DefaultConfig returns a Config with the runtime's defaults.
func DefaultConfig() Config {
	return Config{
		DefaultMaxQueue: 0, // unbounded
	}
}

// LoadConfig reads and decodes a node configuration file, filling any
// unset fields from DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
