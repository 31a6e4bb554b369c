package stack

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadStack reads a single stack from disk.
func LoadStack(path string) (*Stack, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("stack path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stack %s: %w", path, err)
	}

	st, err := parseStack(data)
	if err != nil {
		return nil, fmt.Errorf("parse stack %s: %w", path, err)
	}
	st.Source = path
	return st, nil
}

// LoadStacksFromDir loads all stacks from a directory.
func LoadStacksFromDir(dir string) ([]*Stack, error) {
	if strings.TrimSpace(dir) == "" {
		return []*Stack{}, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []*Stack{}, nil
		}
		return nil, fmt.Errorf("read stacks dir %s: %w", dir, err)
	}

	stacks := make([]*Stack, 0)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		st, err := LoadStack(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		stacks = append(stacks, st)
	}

	sort.Slice(stacks, func(i, j int) bool {
		return stacks[i].Name < stacks[j].Name
	})

	return stacks, nil
}

func parseStack(data []byte) (*Stack, error) {
	var st Stack
	if err := yaml.Unmarshal(data, &st); err != nil {
		return nil, err
	}

	st.Name = strings.TrimSpace(st.Name)
	if st.Name == "" {
		return nil, fmt.Errorf("stack name is required")
	}
	st.Description = strings.TrimSpace(st.Description)

	if st.Steps < 0 {
		return nil, fmt.Errorf("stack steps must be non-negative")
	}
	if len(st.Adapters) == 0 {
		return nil, fmt.Errorf("stack adapters are required")
	}

	seen := make(map[string]struct{})
	for i := range st.Adapters {
		if err := normalizeAdapter(&st.Adapters[i]); err != nil {
			return nil, fmt.Errorf("stack adapter %d: %w", i+1, err)
		}
		id := st.Adapters[i].Adapter
		if _, exists := seen[id]; exists {
			return nil, fmt.Errorf("duplicate stack adapter %q", id)
		}
		seen[id] = struct{}{}
	}

	return &st, nil
}
