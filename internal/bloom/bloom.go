// Package bloom defines the cognitive-level taxonomy used by learning
// objectives, prompts and generated question metadata.
package bloom

import (
	"fmt"
	"strings"
)

// Level is one step of the revised Bloom taxonomy.
type Level string

const (
	Remember   Level = "Remember"
	Understand Level = "Understand"
	Apply      Level = "Apply"
	Analyze    Level = "Analyze"
	Evaluate   Level = "Evaluate"
	Create     Level = "Create"
)

// Levels returns all levels in ascending cognitive order.
func Levels() []Level {
	return []Level{Remember, Understand, Apply, Analyze, Evaluate, Create}
}

// Parse resolves a case-insensitive level name.
func Parse(s string) (Level, error) {
	name := strings.TrimSpace(s)
	for _, lvl := range Levels() {
		if strings.EqualFold(name, string(lvl)) {
			return lvl, nil
		}
	}
	return "", fmt.Errorf("unknown bloom level %q (want one of %s)", s, strings.Join(Names(), ", "))
}

// Names returns the level names in ascending order.
func Names() []string {
	levels := Levels()
	names := make([]string, len(levels))
	for i, lvl := range levels {
		names[i] = string(lvl)
	}
	return names
}

// Valid reports whether l is a defined level.
func (l Level) Valid() bool {
	for _, lvl := range Levels() {
		if l == lvl {
			return true
		}
	}
	return false
}

func (l Level) String() string { return string(l) }
