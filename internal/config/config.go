// Package config handles teenyjvm.toml run configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file looked up from the working directory.
const FileName = "teenyjvm.toml"

// DefaultMaxDepth bounds invokestatic recursion unless configured otherwise.
const DefaultMaxDepth = 4096

// Config is a teenyjvm.toml file.
type Config struct {
	Interpreter Interpreter `toml:"interpreter"`
	Output      Output      `toml:"output"`

	// Path is the file the configuration was read from, empty for defaults.
	Path string `toml:"-"`
}

// Interpreter configures execution.
type Interpreter struct {
	Trace    bool `toml:"trace"`
	MaxDepth int  `toml:"max_depth"` // 0 = unbounded
	MaxSteps int  `toml:"max_steps"` // 0 = unlimited
	Verify   bool `toml:"verify"`
}

// Output configures what a run writes besides program output.
type Output struct {
	HeapDump string `toml:"heap_dump"`
	NoColor  bool   `toml:"no_color"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		Interpreter: Interpreter{
			MaxDepth: DefaultMaxDepth,
			Verify:   true,
		},
	}
}

// Load parses the configuration file at path. Keys the file omits keep their
// default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c := Default()
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	c.Path = path
	return c, nil
}

// FindAndLoad walks up from startDir to find a teenyjvm.toml file and loads
// it. Defaults are returned if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), nil
		}
		dir = parent
	}
}

// Resolve loads path when it is set and otherwise searches from startDir.
func Resolve(path, startDir string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	return FindAndLoad(startDir)
}

func (c *Config) validate() error {
	if c.Interpreter.MaxDepth < 0 {
		return fmt.Errorf("interpreter.max_depth must not be negative, got %d", c.Interpreter.MaxDepth)
	}
	if c.Interpreter.MaxSteps < 0 {
		return fmt.Errorf("interpreter.max_steps must not be negative, got %d", c.Interpreter.MaxSteps)
	}
	return nil
}
