// Package topicmgr keeps the catalog of event bus topics. Every topic is
// validated and registered explicitly against a Manager owned by the server;
// there is no package-level registry.
package topicmgr

import (
	"maps"
	"time"
)

// Topic describes one event bus topic.
type Topic interface {
	// Name is the unique bus identifier, e.g. "dungeon.match.event".
	Name() string
	// Module is the owning module, empty for framework topics.
	Module() string
	Description() string
	// Pattern is the routing pattern; usually the name itself.
	Pattern() string
	Example() string
	Metadata() map[string]any
	Scope() TopicScope
}

// TypedTopic is the Topic implementation built by DefineFramework and
// DefineModule.
type TypedTopic struct {
	name        string
	module      string
	description string
	pattern     string
	example     string
	metadata    map[string]any
	scope       TopicScope
}

var _ Topic = (*TypedTopic)(nil)

// TopicConfig holds the fields of a new topic.
type TopicConfig struct {
	Name        string         `json:"name"`
	Module      string         `json:"module"`
	Scope       TopicScope     `json:"scope"`
	Description string         `json:"description"`
	Pattern     string         `json:"pattern"`
	Example     string         `json:"example"`
	Metadata    map[string]any `json:"metadata"`
}

// TopicScope separates framework topics from module topics.
type TopicScope string

const (
	ScopeFramework TopicScope = "framework"
	ScopeModule    TopicScope = "module"
)

// RegistryEntry is a registered topic plus bookkeeping.
type RegistryEntry struct {
	Topic        Topic     `json:"topic"`
	RegisteredAt time.Time `json:"registered_at"`
	Module       string    `json:"module"`
}

// TopicError is the structured error returned by the manager.
type TopicError struct {
	Type    ErrorType `json:"type"`
	Topic   string    `json:"topic"`
	Module  string    `json:"module"`
	Message string    `json:"message"`
	Cause   error     `json:"cause,omitempty"`
}

// ErrorType classifies a TopicError.
type ErrorType string

const (
	ErrorTopicNotFound         ErrorType = "topic_not_found"
	ErrorDuplicateRegistration ErrorType = "duplicate_registration"
	ErrorValidationFailed      ErrorType = "validation_failed"
)

func (e *TopicError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *TopicError) Unwrap() error {
	return e.Cause
}

// Is matches another TopicError of the same type.
func (e *TopicError) Is(target error) bool {
	t, ok := target.(*TopicError)
	return ok && t.Type == e.Type
}

func (t *TypedTopic) Name() string        { return t.name }
func (t *TypedTopic) Module() string      { return t.module }
func (t *TypedTopic) Description() string { return t.description }
func (t *TypedTopic) Pattern() string     { return t.pattern }
func (t *TypedTopic) Example() string     { return t.example }
func (t *TypedTopic) Scope() TopicScope   { return t.scope }
func (t *TypedTopic) String() string      { return t.name }

// Metadata returns a copy of the topic metadata.
func (t *TypedTopic) Metadata() map[string]any {
	out := make(map[string]any, len(t.metadata))
	maps.Copy(out, t.metadata)
	return out
}

// DefineFramework builds a framework topic. Module is cleared.
func DefineFramework(config TopicConfig) Topic {
	config.Scope = ScopeFramework
	config.Module = ""
	return define(config)
}

// DefineModule builds a module-owned topic.
func DefineModule(config TopicConfig) Topic {
	config.Scope = ScopeModule
	return define(config)
}

func define(config TopicConfig) *TypedTopic {
	if config.Pattern == "" {
		config.Pattern = config.Name
	}
	return &TypedTopic{
		name:        config.Name,
		module:      config.Module,
		description: config.Description,
		pattern:     config.Pattern,
		example:     config.Example,
		metadata:    config.Metadata,
		scope:       config.Scope,
	}
}
