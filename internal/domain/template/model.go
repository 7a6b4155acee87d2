package template

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MaxNameLength caps a template name.
const MaxNameLength = 100

// Domain errors
var (
	ErrEmptyName     = errors.New("template name cannot be empty")
	ErrNameTooLong   = errors.New("template name cannot exceed 100 characters")
	ErrNoExercises   = errors.New("template needs at least one exercise")
	ErrBadExercise   = errors.New("exercise line must be: name | sets | reps | rest")
	ErrNotFound      = errors.New("template not found")
	ErrInvalidNumber = errors.New("sets must be a positive number")
)

// Exercise is one prescribed movement.
type Exercise struct {
	Name string `json:"name"`
	Sets int    `json:"sets"`
	Reps string `json:"reps"`
	Rest string `json:"rest"`
}

// Template is a reusable program a coach saved by name.
type Template struct {
	Name      string     `json:"name"`
	Notes     string     `json:"notes,omitempty"`
	Exercises []Exercise `json:"exercises"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Table maps template names to templates.
type Table map[string]Template

// Validate checks if the Template has valid data.
// PRE: Template struct is populated
// POST: Returns nil if valid, error otherwise
func (t *Template) Validate() error {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		return ErrEmptyName
	}
	if len([]rune(name)) > MaxNameLength {
		return ErrNameTooLong
	}
	if len(t.Exercises) == 0 {
		return ErrNoExercises
	}
	return nil
}

// ParseExercises reads one exercise per line in the form "name | sets | reps | rest".
// Reps and rest are kept as text so ranges like "8-12" and "90s" survive.
// Blank lines are skipped.
func ParseExercises(text string) ([]Exercise, error) {
	var out []Exercise
	for n, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.Split(line, "|")
		if len(parts) != 4 {
			return nil, fmt.Errorf("line %d: %w", n+1, ErrBadExercise)
		}
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if parts[0] == "" {
			return nil, fmt.Errorf("line %d: %w", n+1, ErrBadExercise)
		}
		sets, err := strconv.Atoi(parts[1])
		if err != nil || sets <= 0 {
			return nil, fmt.Errorf("line %d: %w", n+1, ErrInvalidNumber)
		}
		out = append(out, Exercise{Name: parts[0], Sets: sets, Reps: parts[2], Rest: parts[3]})
	}
	return out, nil
}

// FormatExercises is the inverse of ParseExercises.
func FormatExercises(exs []Exercise) string {
	var b strings.Builder
	for _, e := range exs {
		fmt.Fprintf(&b, "%s | %d | %s | %s\n", e.Name, e.Sets, e.Reps, e.Rest)
	}
	return b.String()
}

// Put validates and stores t under its trimmed name, replacing any prior template.
func (tb Table) Put(t Template) error {
	t.Name = strings.TrimSpace(t.Name)
	if err := t.Validate(); err != nil {
		return err
	}
	tb[t.Name] = t
	return nil
}

// Remove deletes the template called name.
func (tb Table) Remove(name string) error {
	name = strings.TrimSpace(name)
	if _, ok := tb[name]; !ok {
		return ErrNotFound
	}
	delete(tb, name)
	return nil
}
