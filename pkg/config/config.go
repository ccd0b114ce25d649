package config

import (
	"fmt"
	"io"
	"os"
	"os/user"
	"path"
	"runtime"

	"gopkg.in/yaml.v2"
)

const (
	configDir  string = ".smug"
	configFile string = "config.yml"

	defaultMaxPrint = 10
	defaultPrompt   = "(smug) "
)

// configHome overrides the user's home directory when set.
var configHome string

// Config defines all configuration options available to be set through the config file.
type Config struct {
	// Commands aliases.
	Aliases map[string][]string `yaml:"aliases"`

	// ChunkSize is the most bytes read from the target per batch.
	ChunkSize *uint64 `yaml:"chunk-size,omitempty"`
	// Workers bounds how many batches are decoded at once.
	Workers *int `yaml:"workers,omitempty"`
	// MaxPrint is the largest result printed address by address.
	MaxPrint *int `yaml:"max-print,omitempty"`

	Prompt string `yaml:"prompt,omitempty"`
	// Color is one of auto, always or never.
	Color string `yaml:"color,omitempty"`
}

// ChunkSizeOr returns the configured chunk size, or def.
func (c *Config) ChunkSizeOr(def uint64) uint64 {
	if c.ChunkSize == nil || *c.ChunkSize == 0 {
		return def
	}
	return *c.ChunkSize
}

func (c *Config) WorkerCount() int {
	if c.Workers == nil || *c.Workers <= 0 {
		return runtime.NumCPU()
	}
	return *c.Workers
}

func (c *Config) MaxPrintCount() int {
	if c.MaxPrint == nil || *c.MaxPrint <= 0 {
		return defaultMaxPrint
	}
	return *c.MaxPrint
}

func (c *Config) PromptString() string {
	if c.Prompt == "" {
		return defaultPrompt
	}
	return c.Prompt
}

// Colorize decides whether output is coloured, given whether stdout is a
// terminal.
func (c *Config) Colorize(tty bool) bool {
	switch c.Color {
	case "always":
		return true
	case "never":
		return false
	}
	return tty
}

// LoadConfig attempts to populate a Config object from the config.yml file.
func LoadConfig() *Config {
	err := createConfigPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not create config directory: %v.\n", err)
		return &Config{}
	}
	fullConfigFile, err := GetConfigFilePath(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to get config file path: %v.\n", err)
		return &Config{}
	}

	f, err := os.Open(fullConfigFile)
	if err != nil {
		f, err = createDefaultConfig(fullConfigFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating default config file: %v\n", err)
			return &Config{}
		}
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to read config data: %v.\n", err)
		return &Config{}
	}

	var c Config
	err = yaml.Unmarshal(data, &c)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to decode config file: %v.\n", err)
		return &Config{}
	}

	return &c
}

// SaveConfig will marshal and save the config struct
// to disk.
func SaveConfig(conf *Config) error {
	fullConfigFile, err := GetConfigFilePath(configFile)
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(*conf)
	if err != nil {
		return err
	}

	return os.WriteFile(fullConfigFile, out, 0o600)
}

func createDefaultConfig(path string) (*os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("unable to create config file: %v", err)
	}
	err = writeDefaultConfig(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("unable to write default configuration: %v", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func writeDefaultConfig(f *os.File) error {
	_, err := f.WriteString(
		`# Configuration file for smug.

# This is the default configuration file. Available options are provided, but disabled.
# Delete the leading hash mark to enable an item.

# Provided aliases will be added to the default aliases for a given command.
aliases:
  # command: ["alias1", "alias2"]

# Most bytes read from the target process in one batch.
# chunk-size: 1073741824

# Number of batches decoded in parallel (defaults to the number of CPUs).
# workers: 4

# Results with more addresses than this are only counted.
# max-print: 10

# prompt: "(smug) "

# Colour addresses in file backed regions: auto, always or never.
# color: auto
`)
	return err
}

// createConfigPath creates the directory structure at which all config files are saved.
func createConfigPath() error {
	path, err := GetConfigFilePath("")
	if err != nil {
		return err
	}
	return os.MkdirAll(path, 0700)
}

// GetConfigFilePath gets the full path to the given config file name.
func GetConfigFilePath(file string) (string, error) {
	userHomeDir := configHome
	if userHomeDir == "" {
		userHomeDir = "."
		usr, err := user.Current()
		if err == nil {
			userHomeDir = usr.HomeDir
		}
	}
	return path.Join(userHomeDir, configDir, file), nil
}
