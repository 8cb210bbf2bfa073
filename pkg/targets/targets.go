// Package targets holds the known-targets table used by the run action.
package targets

import (
	"fmt"
	"os"
	"sort"

	"github.com/cnrancher/vmdemo/pkg/types"
	"github.com/cnrancher/vmdemo/pkg/utils"

	"github.com/imdario/mergo"
	"gopkg.in/yaml.v3"
)

// Table maps a short name to a target. It is read-only once built.
type Table struct {
	targets map[string]types.Target
}

// Defaults returns the built-in targets.
func Defaults() map[string]types.Target {
	return map[string]types.Target{
		"main": {
			Name: "main",
			Path: "node/main.go",
			Args: []string{"127.0.0.1:12345"},
		},
		"server": {
			Name: "server",
			Path: "server/server.go",
			Args: []string{"-c", "server/config.json"},
		},
	}
}

// New builds a table from the defaults with overrides merged over them.
func New(overrides map[string]types.Target) (*Table, error) {
	targets := Defaults()
	if len(overrides) > 0 {
		if err := mergo.Merge(&targets, overrides, mergo.WithOverride); err != nil {
			return nil, err
		}
	}
	for name, t := range targets {
		if t.Path == "" {
			return nil, &types.ConfigurationError{Reason: fmt.Sprintf("target %q has no path", name)}
		}
		t.Name = name
		targets[name] = t
	}
	return &Table{targets: targets}, nil
}

// Load merges the YAML file at path over the defaults. An empty path yields the defaults.
//
//	targets:
//	  client:
//	    path: client/client.go
//	    args: ["-v"]
func Load(path string) (*Table, error) {
	if path == "" {
		return New(nil)
	}
	b, err := os.ReadFile(utils.ExpandPath(path))
	if err != nil {
		return nil, &types.ConfigurationError{Reason: "read targets file", Err: err}
	}
	file := struct {
		Targets map[string]types.Target `yaml:"targets"`
	}{}
	if err := yaml.Unmarshal(b, &file); err != nil {
		return nil, &types.ConfigurationError{Reason: fmt.Sprintf("parse targets file %s", path), Err: err}
	}
	return New(file.Targets)
}

// Lookup returns types.ErrUnknownTarget for names not in the table.
func (t *Table) Lookup(name string) (types.Target, error) {
	target, ok := t.targets[name]
	if !ok {
		return types.Target{}, fmt.Errorf("%w %q, must be one of %v", types.ErrUnknownTarget, name, t.Names())
	}
	return target, nil
}

// Names returns the target names in sorted order.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.targets))
	for name := range t.targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List returns the targets sorted by name.
func (t *Table) List() []types.Target {
	list := make([]types.Target, 0, len(t.targets))
	for _, name := range t.Names() {
		list = append(list, t.targets[name])
	}
	return list
}
