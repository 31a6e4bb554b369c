package stack

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// LoadBuiltinStacks returns the example stacks bundled with lorasched.
func LoadBuiltinStacks() ([]*Stack, error) {
	entries, err := fs.ReadDir(builtinFS, "builtin")
	if err != nil {
		return nil, fmt.Errorf("read builtin stacks: %w", err)
	}

	stacks := make([]*Stack, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := builtinFS.ReadFile("builtin/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read builtin stack %s: %w", entry.Name(), err)
		}
		st, err := parseStack(data)
		if err != nil {
			return nil, fmt.Errorf("parse builtin stack %s: %w", entry.Name(), err)
		}
		st.Source = "builtin"
		stacks = append(stacks, st)
	}

	sort.Slice(stacks, func(i, j int) bool {
		return stacks[i].Name < stacks[j].Name
	})

	return stacks, nil
}
