// Package config loads tool configuration and destination profiles.
//
// Profiles describe the upload constraints of a deposit destination.
// Two destinations are built in; a depositpack.yaml file can add more
// or replace the built-ins.
package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// Built-in per-item upload caps.
const (
	zenodoMaxItemBytes    = 50_000_000_000
	dataverseMaxItemBytes = 953_700_000
)

// Profile describes the upload constraints of a deposit destination.
type Profile struct {
	Name               string `mapstructure:"-"`
	MaxItems           int    `mapstructure:"max_items"`
	MaxItemBytes       int64  `mapstructure:"max_item_bytes"`
	TargetArchiveBytes int64  `mapstructure:"target_archive_bytes"`
	Preserve           bool   `mapstructure:"preserve"`
}

// Config holds the tool configuration: destination profiles plus
// packaging knobs shared by all commands. Zero values defer to the
// planner and executor defaults.
type Config struct {
	Profiles    map[string]Profile
	Concurrency int
	ChunkSize   int
	Excludes    []string
}

// TargetFor derives the soft archive-size target from a hard per-item
// cap. Archives are planned against the target so the finished zip
// stays under the cap.
func TargetFor(maxItemBytes int64) int64 {
	return maxItemBytes * 92 / 100
}

// Builtins returns the built-in destination profiles.
func Builtins() map[string]Profile {
	return map[string]Profile{
		"zenodo": {
			Name:         "zenodo",
			MaxItems:     100,
			MaxItemBytes: zenodoMaxItemBytes,
			Preserve:     true,
		},
		"dataverse": {
			Name:               "dataverse",
			MaxItems:           100,
			MaxItemBytes:       dataverseMaxItemBytes,
			TargetArchiveBytes: TargetFor(dataverseMaxItemBytes),
			Preserve:           true,
		},
	}
}

// Load reads configuration from the given YAML file. An empty path
// searches the working directory for an optional depositpack.yaml;
// an explicit path must exist. Profiles from the file replace
// built-ins of the same name.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("depositpack")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		Profiles:    Builtins(),
		Concurrency: v.GetInt("concurrency"),
		ChunkSize:   v.GetInt("chunk_size"),
		Excludes:    v.GetStringSlice("excludes"),
	}

	var fileProfiles map[string]Profile
	if err := v.UnmarshalKey("profiles", &fileProfiles); err != nil {
		return nil, fmt.Errorf("parse profiles: %w", err)
	}
	for name, p := range fileProfiles {
		p.Name = name
		cfg.Profiles[name] = p
	}

	return cfg, nil
}

// Lookup returns the named destination profile.
func (c *Config) Lookup(name string) (Profile, error) {
	p, ok := c.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown profile %q (available: %s)", name, strings.Join(c.Names(), ", "))
	}
	return p, nil
}

// Names returns the profile names in sorted order.
func (c *Config) Names() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
