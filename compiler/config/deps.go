package config

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/syssam/protobuilder"
)

// NormalizeLabel expands a build label without explicit target name to its
// canonical form: "a/b" becomes "a/b:b".
func NormalizeLabel(label string) string {
	if strings.Contains(label, ":") {
		return label
	}
	return label + ":" + label[strings.LastIndexByte(label, '/')+1:]
}

// CheckConversionDependencies verifies that every dependency declared by
// the type map is listed in r, a newline separated list of build labels.
func (m *Manager) CheckConversionDependencies(r io.Reader) error {
	known := make(map[string]struct{})
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			known[NormalizeLabel(line)] = struct{}{}
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading conversion dependencies: %w", err)
	}
	for _, e := range m.config.TypeMap {
		for _, dep := range e.Value.Dependency {
			if _, ok := known[NormalizeLabel(dep)]; !ok {
				return fmt.Errorf("type %q has dependency %q which is not configured: %w",
					e.Key, dep, protobuilder.NewNotFoundError("dependency", dep))
			}
		}
	}
	return nil
}
