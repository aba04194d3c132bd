// Package config loads command-line defaults from YAML files.
//
// A file may set any flag by name at the top level, or under a section named after a command:
//
//	output: info
//	dig:
//	  lenient: true
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"
)

// DefaultPaths are searched, in order, for a configuration file. Missing files are skipped.
var DefaultPaths = []string{
	".textsteg.yaml",
	"~/.config/textsteg.yaml",
}

// YAML reads a configuration file into a kong resolver.
// It satisfies kong.ConfigurationLoader.
func YAML(r io.Reader) (kong.Resolver, error) {
	values := map[string]any{}
	if err := yaml.NewDecoder(r).Decode(&values); err != nil && err != io.EOF {
		return nil, fmt.Errorf("could not decode YAML configuration: %w", err)
	}

	var f kong.ResolverFunc = func(context *kong.Context, parent *kong.Path, flag *kong.Flag) (any, error) {
		name := strings.ReplaceAll(flag.Name, "-", "_")

		if context != nil {
			if cmd := context.Selected(); cmd != nil {
				if section, ok := values[cmd.Name].(map[string]any); ok {
					if raw, ok := lookup(section, flag.Name, name); ok {
						return raw, nil
					}
				}
			}
		}

		if raw, ok := lookup(values, flag.Name, name); ok {
			return raw, nil
		}
		return nil, nil
	}

	return f, nil
}

func lookup(values map[string]any, names ...string) (any, bool) {
	for _, name := range names {
		raw, ok := values[name]
		if !ok {
			continue
		}
		// Sections are not flag values
		if _, isSection := raw.(map[string]any); isSection {
			continue
		}
		return raw, true
	}
	return nil, false
}
