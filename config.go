package pegrun

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is a typed, string-keyed settings bag controlling grammar
// transformations and compiler behavior, generalized from the teacher's
// `config.go` (which also stores a flat map of named boolean/string knobs
// rather than a rigid struct, so new flags don't require touching every call
// site that builds one).
type Config struct {
	values map[string]interface{}
}

// NewConfig returns a Config pre-populated with this toolkit's defaults.
func NewConfig() *Config {
	c := &Config{values: map[string]interface{}{}}
	c.SetBool("whitespace", true)
	c.SetBool("optimize", true)
	c.SetBool("captures", true)
	c.SetInt("max-stack-depth", 4096)
	return c
}

func (c *Config) SetBool(key string, v bool) { c.values[key] = v }
func (c *Config) SetInt(key string, v int)    { c.values[key] = v }
func (c *Config) SetString(key string, v string) { c.values[key] = v }

func (c *Config) GetBool(key string) bool {
	if v, ok := c.values[key].(bool); ok {
		return v
	}
	return false
}

func (c *Config) GetInt(key string) int {
	if v, ok := c.values[key].(int); ok {
		return v
	}
	if v, ok := c.values[key].(int64); ok {
		return int(v)
	}
	return 0
}

func (c *Config) GetString(key string) string {
	if v, ok := c.values[key].(string); ok {
		return v
	}
	return ""
}

// fileConfig mirrors the on-disk TOML shape loaded by LoadConfigFile.
type fileConfig struct {
	Grammar struct {
		Whitespace *bool `toml:"whitespace"`
	} `toml:"grammar"`
	Compiler struct {
		Optimize      *bool `toml:"optimize"`
		Captures      *bool `toml:"captures"`
		MaxStackDepth *int  `toml:"max_stack_depth"`
	} `toml:"compiler"`
}

// LoadConfigFile reads a TOML settings file and overlays it onto
// NewConfig()'s defaults (SPEC_FULL.md §A.3): file values win over built-in
// defaults. cmd/pegrun has no flags that override these settings.
func LoadConfigFile(path string) (*Config, error) {
	c := NewConfig()
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("pegrun: reading config %s: %w", path, err)
	}
	if fc.Grammar.Whitespace != nil {
		c.SetBool("whitespace", *fc.Grammar.Whitespace)
	}
	if fc.Compiler.Optimize != nil {
		c.SetBool("optimize", *fc.Compiler.Optimize)
	}
	if fc.Compiler.Captures != nil {
		c.SetBool("captures", *fc.Compiler.Captures)
	}
	if fc.Compiler.MaxStackDepth != nil {
		c.SetInt("max-stack-depth", *fc.Compiler.MaxStackDepth)
	}
	return c, nil
}
