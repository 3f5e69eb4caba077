package condition

import (
	"fmt"
	"strings"
)

// Mode combines the conditions of a Lock.
type Mode string

const (
	// ModeAll requires every condition to be met.
	ModeAll Mode = "all"
	// ModeAny requires at least one condition to be met.
	ModeAny Mode = "any"
)

// ParseMode reads "all"/"any" case-insensitively. Empty defaults to ModeAll.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeAll:
		return ModeAll, nil
	case ModeAny:
		return ModeAny, nil
	}
	return "", fmt.Errorf("unknown lock mode %q", s)
}

// Lock decides whether the option behind an option-lock node may be selected.
type Lock struct {
	Mode       Mode
	Conditions []Condition
	// Message is shown next to the option while it is locked.
	Message string
}

// IsUnlocked evaluates the conditions. A lock without conditions is unlocked.
func (l *Lock) IsUnlocked() bool {
	if l == nil || len(l.Conditions) == 0 {
		return true
	}
	if l.Mode == ModeAny {
		for _, c := range l.Conditions {
			if c != nil && c.IsMet() {
				return true
			}
		}
		return false
	}
	for _, c := range l.Conditions {
		if c == nil || !c.IsMet() {
			return false
		}
	}
	return true
}

// IsValid reports whether every condition is usable.
func (l *Lock) IsValid() bool {
	if l == nil {
		return true
	}
	for _, c := range l.Conditions {
		if c == nil || !c.IsValidCondition() {
			return false
		}
	}
	return true
}

func (l *Lock) String() string {
	if l == nil || len(l.Conditions) == 0 {
		return "unlocked"
	}
	parts := make([]string, len(l.Conditions))
	for i, c := range l.Conditions {
		if c == nil {
			parts[i] = "?"
			continue
		}
		parts[i] = c.String()
	}
	sep := " AND "
	if l.Mode == ModeAny {
		sep = " OR "
	}
	return strings.Join(parts, sep)
}
