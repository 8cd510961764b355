package topicmgr

import (
	"fmt"
	"slices"
	"strings"
)

// Manager validates and registers topics. The server owns one instance and
// hands it to modules during Register.
type Manager struct {
	registry  *Registry
	validator *Validator
}

// NewManager creates a manager with an empty registry.
func NewManager() *Manager {
	return &Manager{registry: NewRegistry(), validator: NewValidator()}
}

// Register validates topic and adds it to the registry.
func (m *Manager) Register(topic Topic) error {
	if err := m.validator.ValidateDefinition(topic); err != nil {
		te := &TopicError{Type: ErrorValidationFailed, Message: "topic validation failed", Cause: err}
		if topic != nil {
			te.Topic, te.Module = topic.Name(), topic.Module()
		}
		return te
	}
	return m.registry.Register(topic)
}

// MustRegister registers topic and panics on error.
func (m *Manager) MustRegister(topic Topic) {
	if err := m.Register(topic); err != nil {
		panic(fmt.Sprintf("failed to register topic %s: %v", topic.Name(), err))
	}
}

// Get looks a topic up by name.
func (m *Manager) Get(name string) (Topic, bool) {
	return m.registry.Get(name)
}

// Require returns the topic named name or a topic_not_found error.
func (m *Manager) Require(name string) (Topic, error) {
	t, ok := m.registry.Get(name)
	if !ok {
		return nil, &TopicError{Type: ErrorTopicNotFound, Topic: name, Message: "topic not registered: " + name}
	}
	return t, nil
}

// List returns all topics sorted by name.
func (m *Manager) List() []Topic {
	return m.registry.List(nil)
}

// ListByModule returns the topics owned by module.
func (m *Manager) ListByModule(module string) []Topic {
	return m.registry.List(func(t Topic) bool { return t.Module() == module })
}

// ListByScope returns the topics in scope.
func (m *Manager) ListByScope(scope TopicScope) []Topic {
	return m.registry.List(func(t Topic) bool { return t.Scope() == scope })
}

// FindTopics matches names against pattern. A trailing * matches any
// suffix and a lone * matches everything.
func (m *Manager) FindTopics(pattern string) []Topic {
	return m.registry.List(func(t Topic) bool { return matchesPattern(t.Name(), pattern) })
}

// ListModules returns the distinct owning modules, sorted.
func (m *Manager) ListModules() []string {
	var modules []string
	for _, t := range m.ListByScope(ScopeModule) {
		if !slices.Contains(modules, t.Module()) {
			modules = append(modules, t.Module())
		}
	}
	slices.Sort(modules)
	return modules
}

// Count returns the number of registered topics.
func (m *Manager) Count() int {
	return m.registry.Count()
}

func matchesPattern(name, pattern string) bool {
	if pattern == "*" {
		return true
	}
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return strings.HasPrefix(name, prefix)
	}
	return name == pattern
}
