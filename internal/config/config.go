// Package config loads the optional YAML configuration of the jsonrpc
// command. Values can be overridden with JSONRPC_* environment variables,
// e.g. JSONRPC_SERVE_BIND, and by command line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/OpenPeeDeeP/xdg"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Websocket implementations accepted by ServeConfig.WebSocket.
const (
	WebSocketGorilla = "gorilla"
	WebSocketGobwas  = "gobwas"
)

type Config struct {
	Serve ServeConfig `mapstructure:"serve" yaml:"serve"`
	Call  CallConfig  `mapstructure:"call" yaml:"call"`
}

type ServeConfig struct {
	Bind             string `mapstructure:"bind" yaml:"bind"`
	TLSHost          string `mapstructure:"tls_host" yaml:"tls_host,omitempty"`
	AllowOrigin      string `mapstructure:"allow_origin" yaml:"allow_origin,omitempty"`
	MaxContentLength int64  `mapstructure:"max_content_length" yaml:"max_content_length"`
	WebSocket        string `mapstructure:"websocket" yaml:"websocket"`
	Stdio            bool   `mapstructure:"stdio" yaml:"stdio"`
	DebugCodec       bool   `mapstructure:"debug_codec" yaml:"debug_codec"`
}

type CallConfig struct {
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Serve: ServeConfig{
			Bind:             "127.0.0.1:8080",
			MaxContentLength: 1 << 20,
			WebSocket:        WebSocketGorilla,
		},
		Call: CallConfig{
			Endpoint: "http://127.0.0.1:8080/",
		},
	}
}

// DefaultPath is config.yaml in the user's XDG config directory.
func DefaultPath() string {
	return filepath.Join(xdg.New("vipnode", "jsonrpc").ConfigHome(), "config.yaml")
}

// Load reads the config file at path on top of the defaults. An empty path
// loads the defaults and the environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("jsonrpc")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := Default()
	v.SetDefault("serve.bind", def.Serve.Bind)
	v.SetDefault("serve.tls_host", def.Serve.TLSHost)
	v.SetDefault("serve.allow_origin", def.Serve.AllowOrigin)
	v.SetDefault("serve.max_content_length", def.Serve.MaxContentLength)
	v.SetDefault("serve.websocket", def.Serve.WebSocket)
	v.SetDefault("serve.stdio", def.Serve.Stdio)
	v.SetDefault("serve.debug_codec", def.Serve.DebugCodec)
	v.SetDefault("call.endpoint", def.Call.Endpoint)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that can't be checked by decoding.
func (c *Config) Validate() error {
	switch c.Serve.WebSocket {
	case WebSocketGorilla, WebSocketGobwas:
	default:
		return fmt.Errorf("invalid serve.websocket: %s (must be %q or %q)", c.Serve.WebSocket, WebSocketGorilla, WebSocketGobwas)
	}
	if c.Serve.MaxContentLength < 0 {
		return fmt.Errorf("invalid serve.max_content_length: %d", c.Serve.MaxContentLength)
	}
	return nil
}

// Save writes cfg as YAML, creating the parent directory.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
