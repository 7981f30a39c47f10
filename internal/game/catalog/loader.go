package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadDir reads every *.yaml file in dir as one Class and builds a Catalog.
// Files are processed in lexical order.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns an error if any file fails to parse or validate, names a
// class outside the closed enumeration, or duplicates another file's class.
func LoadDir(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("catalog.LoadDir: reading %q: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	if len(names) == 0 {
		return nil, fmt.Errorf("catalog.LoadDir: no class files in %q", dir)
	}

	classes := make([]*Class, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("catalog.LoadDir: reading %s: %w", name, err)
		}
		var c Class
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("catalog.LoadDir: parsing %s: %w", name, err)
		}
		classes = append(classes, &c)
	}
	cat, err := New(classes...)
	if err != nil {
		return nil, fmt.Errorf("catalog.LoadDir: %w", err)
	}
	return cat, nil
}
