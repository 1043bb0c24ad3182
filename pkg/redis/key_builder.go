package redis

import "fmt"

// KeyBuilder provides environment-aware Redis key building functionality
type KeyBuilder struct {
	prefix string
}

// NewKeyBuilder creates a new key builder with environment-based prefix
func NewKeyBuilder(environment string) *KeyBuilder {
	prefix := "prod"
	switch environment {
	case "development", "local":
		prefix = "dev"
	case "staging":
		prefix = "staging"
	case "test":
		prefix = "test"
	}

	return &KeyBuilder{prefix: prefix}
}

// BuildKey constructs a Redis key with the environment prefix
func (kb *KeyBuilder) BuildKey(key string) string {
	return fmt.Sprintf("obi:%s:%s", kb.prefix, key)
}

// GetPrefix returns the current environment prefix
func (kb *KeyBuilder) GetPrefix() string {
	return kb.prefix
}

// KeySubmitLock is held while a form instance's submission is in flight
func (kb *KeyBuilder) KeySubmitLock(formID string) string {
	return kb.BuildKey(fmt.Sprintf(KeySubmitLock, formID))
}

// KeySubmitted marks a form instance whose enquiry was stored
func (kb *KeyBuilder) KeySubmitted(formID string) string {
	return kb.BuildKey(fmt.Sprintf(KeySubmitted, formID))
}
