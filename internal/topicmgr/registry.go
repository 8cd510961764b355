package topicmgr

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

// Registry stores registered topics by name.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*RegistryEntry
	now     func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*RegistryEntry), now: time.Now}
}

// Register adds topic. Names must be unique.
func (r *Registry) Register(topic Topic) error {
	if topic == nil {
		return &TopicError{Type: ErrorValidationFailed, Message: "cannot register nil topic"}
	}
	name := topic.Name()
	if name == "" {
		return &TopicError{Type: ErrorValidationFailed, Message: "topic name cannot be empty"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[name]; exists {
		return &TopicError{
			Type:    ErrorDuplicateRegistration,
			Topic:   name,
			Module:  topic.Module(),
			Message: fmt.Sprintf("topic already registered: %s", name),
		}
	}
	r.entries[name] = &RegistryEntry{Topic: topic, RegisteredAt: r.now(), Module: topic.Module()}
	return nil
}

// Get looks a topic up by name.
func (r *Registry) Get(name string) (Topic, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[name]
	if !ok {
		return nil, false
	}
	return entry.Topic, true
}

// Entry returns a copy of the registry entry for name.
func (r *Registry) Entry(name string) (RegistryEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[name]
	if !ok {
		return RegistryEntry{}, false
	}
	return *entry, true
}

// List returns every topic matching keep, sorted by name. A nil keep
// matches everything.
func (r *Registry) List(keep func(Topic) bool) []Topic {
	r.mu.RLock()
	defer r.mu.RUnlock()
	topics := make([]Topic, 0, len(r.entries))
	for _, entry := range r.entries {
		if keep == nil || keep(entry.Topic) {
			topics = append(topics, entry.Topic)
		}
	}
	slices.SortFunc(topics, func(a, b Topic) int { return strings.Compare(a.Name(), b.Name()) })
	return topics
}

// Count returns the number of registered topics.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
