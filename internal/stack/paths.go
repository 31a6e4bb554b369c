package stack

import (
	"os"
	"path/filepath"
)

// StackSearchPaths returns stack search directories in precedence order.
// Extra directories (from configuration) come first.
func StackSearchPaths(projectDir string, extra ...string) []string {
	paths := make([]string, 0, 3+len(extra))
	for _, dir := range extra {
		if dir != "" {
			paths = append(paths, dir)
		}
	}
	if projectDir != "" {
		paths = append(paths, filepath.Join(projectDir, ".lorasched", "stacks"))
	}

	if home, err := os.UserHomeDir(); err == nil && home != "" {
		paths = append(paths, filepath.Join(home, ".config", "lorasched", "stacks"))
	}

	paths = append(paths, filepath.Join(string(filepath.Separator), "usr", "share", "lorasched", "stacks"))
	return paths
}

// LoadStacksFromSearchPaths loads stacks from search paths with first-hit precedence.
func LoadStacksFromSearchPaths(projectDir string, extra ...string) ([]*Stack, error) {
	paths := StackSearchPaths(projectDir, extra...)
	seen := make(map[string]*Stack)
	order := make([]string, 0)

	for _, path := range paths {
		stacks, err := LoadStacksFromDir(path)
		if err != nil {
			return nil, err
		}
		for _, st := range stacks {
			if _, exists := seen[st.Name]; exists {
				continue
			}
			seen[st.Name] = st
			order = append(order, st.Name)
		}
	}

	builtins, err := LoadBuiltinStacks()
	if err != nil {
		return nil, err
	}
	for _, st := range builtins {
		if _, exists := seen[st.Name]; exists {
			continue
		}
		seen[st.Name] = st
		order = append(order, st.Name)
	}

	resolved := make([]*Stack, 0, len(order))
	for _, name := range order {
		resolved = append(resolved, seen[name])
	}

	return resolved, nil
}
