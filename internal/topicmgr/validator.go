package topicmgr

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	namePattern   = regexp.MustCompile(`^[a-z][a-z0-9]*(\.[a-z][a-z0-9]*)*$`)
	modulePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

	reservedPrefixes  = []string{"system.", "internal.", "debug."}
	frameworkPrefixes = []string{"ws.", "server."}
)

// Validator checks topic definitions against the naming rules.
type Validator struct{}

// NewValidator returns a Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateDefinition checks the name, description, pattern and scope.
func (v *Validator) ValidateDefinition(topic Topic) error {
	if topic == nil {
		return fmt.Errorf("topic cannot be nil")
	}
	if err := v.ValidateName(topic.Name()); err != nil {
		return fmt.Errorf("invalid topic name: %w", err)
	}
	if strings.TrimSpace(topic.Description()) == "" {
		return fmt.Errorf("topic description cannot be empty")
	}
	if strings.TrimSpace(topic.Pattern()) == "" {
		return fmt.Errorf("topic pattern cannot be empty")
	}

	switch topic.Scope() {
	case ScopeFramework:
		if topic.Module() != "" {
			return fmt.Errorf("framework topics should not have a module")
		}
		if !hasPrefix(topic.Name(), frameworkPrefixes) {
			return fmt.Errorf("framework topic must start with one of %v", frameworkPrefixes)
		}
	case ScopeModule:
		if !modulePattern.MatchString(topic.Module()) || len(topic.Module()) > 50 {
			return fmt.Errorf("invalid module name %q", topic.Module())
		}
	default:
		return fmt.Errorf("invalid topic scope: %s", topic.Scope())
	}
	return nil
}

// ValidateName checks the hierarchical naming convention.
func (v *Validator) ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if len(name) > 100 {
		return fmt.Errorf("name too long (max 100 characters)")
	}
	if !namePattern.MatchString(name) {
		return fmt.Errorf("name must follow pattern: scope.module.action (lowercase, alphanumeric, dots only)")
	}
	if hasPrefix(name, reservedPrefixes) {
		return fmt.Errorf("name cannot start with a reserved prefix %v", reservedPrefixes)
	}
	return nil
}

func hasPrefix(name string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}
