package cms

import (
	"errors"
	"sort"
	"strings"
)

// Domain errors
var (
	ErrEmptyGroup   = errors.New("group cannot be empty")
	ErrEmptyName    = errors.New("name cannot be empty")
	ErrDuplicate    = errors.New("entry already exists in this group")
	ErrNotFound     = errors.New("entry not found")
	ErrNoDosage     = errors.New("supplement needs at least one dosage option")
	ErrUnknownGroup = errors.New("group not found")
)

// Exercises maps a muscle group to exercise names.
type Exercises map[string][]string

// SupplementItem is one catalogue supplement.
type SupplementItem struct {
	Name          string   `json:"name"`
	DosageOptions []string `json:"dosageOptions"`
	TimingOptions []string `json:"timingOptions"`
	Note          string   `json:"note"`
}

// Supplements maps a category to its supplements.
type Supplements map[string][]SupplementItem

// Sync log messages.
const (
	ExercisesSyncedMessage   = "Exercise database was synchronized."
	SupplementsSyncedMessage = "Supplement database was synchronized."
	ArticlesSeededMessage    = "Initial magazine articles were seeded."
)

// DefaultExercises returns the built-in exercise catalogue.
func DefaultExercises() Exercises {
	return Exercises{
		"Chest":     {"Barbell Bench Press", "Incline Dumbbell Press", "Cable Fly", "Push-up", "Chest Dip"},
		"Back":      {"Deadlift", "Pull-up", "Barbell Row", "Lat Pulldown", "Seated Cable Row"},
		"Shoulders": {"Overhead Press", "Lateral Raise", "Rear Delt Fly", "Arnold Press"},
		"Legs":      {"Back Squat", "Romanian Deadlift", "Leg Press", "Walking Lunge", "Leg Curl", "Calf Raise"},
		"Arms":      {"Barbell Curl", "Hammer Curl", "Triceps Pushdown", "Skull Crusher"},
		"Core":      {"Plank", "Hanging Leg Raise", "Cable Crunch", "Russian Twist"},
		"Cardio":    {"Treadmill Run", "Rowing Machine", "Jump Rope", "Stationary Bike"},
	}
}

// DefaultSupplements returns the built-in supplement catalogue.
func DefaultSupplements() Supplements {
	return Supplements{
		"Protein": {
			{Name: "Whey Protein", DosageOptions: []string{"1 scoop", "2 scoops"}, TimingOptions: []string{"Post-workout", "Morning"}, Note: "Fast-digesting protein."},
			{Name: "Casein Protein", DosageOptions: []string{"1 scoop"}, TimingOptions: []string{"Before bed"}, Note: "Slow-digesting protein."},
		},
		"Performance": {
			{Name: "Creatine Monohydrate", DosageOptions: []string{"3g", "5g"}, TimingOptions: []string{"Any time"}, Note: "Take daily; no loading needed."},
			{Name: "Caffeine", DosageOptions: []string{"100mg", "200mg"}, TimingOptions: []string{"Pre-workout"}, Note: "Avoid late in the day."},
			{Name: "Beta-Alanine", DosageOptions: []string{"3g"}, TimingOptions: []string{"Pre-workout"}, Note: "Tingling is harmless."},
		},
		"Health": {
			{Name: "Vitamin D3", DosageOptions: []string{"1000 IU", "2000 IU"}, TimingOptions: []string{"With a meal"}, Note: ""},
			{Name: "Omega-3", DosageOptions: []string{"1g", "2g"}, TimingOptions: []string{"With a meal"}, Note: ""},
			{Name: "Magnesium", DosageOptions: []string{"200mg", "400mg"}, TimingOptions: []string{"Before bed"}, Note: ""},
		},
	}
}

// SyncExercises merges the built-in catalogue into current.
// Entries the admin added are never removed; missing groups and names are appended.
// POST: changed is true iff any group or name was added; current is not mutated
func SyncExercises(current Exercises) (Exercises, bool) {
	out := make(Exercises, len(current))
	for g, names := range current {
		out[g] = append([]string(nil), names...)
	}
	changed := false
	defaults := DefaultExercises()
	for _, g := range sortedKeys(defaults) {
		names, ok := out[g]
		if !ok {
			names = []string{}
			changed = true
		}
		seen := make(map[string]bool, len(names))
		for _, n := range names {
			seen[n] = true
		}
		for _, n := range defaults[g] {
			if !seen[n] {
				names = append(names, n)
				seen[n] = true
				changed = true
			}
		}
		out[g] = names
	}
	return out, changed
}

// SyncSupplements merges the built-in catalogue into current, matching supplements by name.
// POST: changed is true iff any category or supplement was added; current is not mutated
func SyncSupplements(current Supplements) (Supplements, bool) {
	out := make(Supplements, len(current))
	for c, items := range current {
		out[c] = append([]SupplementItem(nil), items...)
	}
	changed := false
	defaults := DefaultSupplements()
	for _, c := range sortedKeys(defaults) {
		items, ok := out[c]
		if !ok {
			items = []SupplementItem{}
			changed = true
		}
		seen := make(map[string]bool, len(items))
		for _, it := range items {
			seen[it.Name] = true
		}
		for _, it := range defaults[c] {
			if !seen[it.Name] {
				items = append(items, it)
				seen[it.Name] = true
				changed = true
			}
		}
		out[c] = items
	}
	return out, changed
}

// AddExercise appends name to group, creating the group if needed.
func (e Exercises) AddExercise(group, name string) error {
	group, name = strings.TrimSpace(group), strings.TrimSpace(name)
	if group == "" {
		return ErrEmptyGroup
	}
	if name == "" {
		return ErrEmptyName
	}
	for _, n := range e[group] {
		if strings.EqualFold(n, name) {
			return ErrDuplicate
		}
	}
	e[group] = append(e[group], name)
	return nil
}

// RemoveExercise deletes name from group. An emptied group is kept.
func (e Exercises) RemoveExercise(group, name string) error {
	names, ok := e[group]
	if !ok {
		return ErrUnknownGroup
	}
	for i, n := range names {
		if n == name {
			e[group] = append(names[:i:i], names[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// Groups returns the group names in order.
func (e Exercises) Groups() []string { return sortedKeys(e) }

// AddSupplement appends item to category.
func (s Supplements) AddSupplement(category string, item SupplementItem) error {
	category = strings.TrimSpace(category)
	item.Name = strings.TrimSpace(item.Name)
	if category == "" {
		return ErrEmptyGroup
	}
	if item.Name == "" {
		return ErrEmptyName
	}
	if len(item.DosageOptions) == 0 {
		return ErrNoDosage
	}
	for _, it := range s[category] {
		if strings.EqualFold(it.Name, item.Name) {
			return ErrDuplicate
		}
	}
	s[category] = append(s[category], item)
	return nil
}

// RemoveSupplement deletes the named supplement from category.
func (s Supplements) RemoveSupplement(category, name string) error {
	items, ok := s[category]
	if !ok {
		return ErrUnknownGroup
	}
	for i, it := range items {
		if it.Name == name {
			s[category] = append(items[:i:i], items[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// Categories returns the category names in order.
func (s Supplements) Categories() []string { return sortedKeys(s) }

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
