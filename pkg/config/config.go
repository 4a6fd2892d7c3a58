// Package config loads persistent adapter settings from
// ~/.config/argdap/config.yml, mirroring delve's own config file:
// values present on the command line always win over the file.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Settings is the on-disk configuration format. Every field is optional;
// a zero value means "use the flag default".
type Settings struct {
	ListenAddr string `yaml:"listen-addr"`
	OracleAddr string `yaml:"oracle-addr"`
	LogOutput  string `yaml:"log-output"`
	LogDest    string `yaml:"log-dest"`

	CheckLocalConnectionUser *bool `yaml:"check-local-connection-user"`
}

// Dir returns the directory config.yml lives in, creating it if absent.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".config", "argdap")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// Load reads config.yml from Dir(), returning a zero-value Settings (no
// error) if the file does not exist — an unconfigured adapter is a
// normal adapter, not an error.
func Load() (*Settings, error) {
	dir, err := Dir()
	if err != nil {
		return &Settings{}, nil
	}
	path := filepath.Join(dir, "config.yml")

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Settings{}, nil
	}
	if err != nil {
		return nil, err
	}

	var s Settings
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// MergeString returns the flag value if the flag was explicitly set by
// the user (flagChanged), otherwise the config file's value, otherwise
// the flag's own default — delve's file-then-flag-overrides precedence.
func MergeString(flagValue string, flagChanged bool, fileValue string) string {
	if flagChanged || fileValue == "" {
		return flagValue
	}
	return fileValue
}

// MergeBool applies the same precedence as MergeString for a tri-state
// (unset/true/false) file value.
func MergeBool(flagValue bool, flagChanged bool, fileValue *bool) bool {
	if flagChanged || fileValue == nil {
		return flagValue
	}
	return *fileValue
}
