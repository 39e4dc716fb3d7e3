// Package profile loads client writing profiles from YAML files.
package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"aivan/internal/core"

	"gopkg.in/yaml.v3"
)

// Load reads the named client profile from dir. The profile name maps
// to <dir>/<name>.yaml.
func Load(dir, name string) (*core.ClientProfile, error) {
	if name == "" {
		return nil, fmt.Errorf("client profile name is empty")
	}
	path := filepath.Join(dir, name+".yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read client profile %s: %w", name, err)
	}

	var p core.ClientProfile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse client profile %s: %w", name, err)
	}
	if p.Name == "" {
		p.Name = name
	}
	return &p, nil
}

// List returns the profile names available in dir, sorted.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list client profiles: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), ".yaml") {
			names = append(names, strings.TrimSuffix(entry.Name(), ".yaml"))
		}
	}
	sort.Strings(names)
	return names, nil
}
