package rubric

import (
	"embed"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
)

//go:embed rubrics/*.yaml
var builtinFS embed.FS

// BuiltinNames lists the rubrics compiled into the binary.
func BuiltinNames() []string {
	entries, _ := builtinFS.ReadDir("rubrics")
	var names []string
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	sort.Strings(names)
	return names
}

// Builtin parses one of the rubrics compiled into the binary.
func Builtin(name string) (*Definition, error) {
	data, err := builtinFS.ReadFile("rubrics/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("no built-in rubric named %q (available: %s)", name, strings.Join(BuiltinNames(), ", "))
	}
	return Parse(name, data)
}

// Resolve loads a built-in rubric by name, or a rubric file if ref names an existing file.
func Resolve(ref string) (*Definition, error) {
	if _, err := os.Stat(ref); err == nil {
		return Load(ref)
	}
	return Builtin(ref)
}
