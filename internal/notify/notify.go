// Package notify holds the transient toasts shown after a form submission.
package notify

import "sync"

// Variant selects the toast style
type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Toast is a single transient message
type Toast struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Variant     Variant `json:"variant"`
}

// Destructive reports whether the toast uses the error style
func (t Toast) Destructive() bool {
	return t.Variant == VariantDestructive
}

// Success returns a default-style toast
func Success(title, description string) Toast {
	return Toast{Title: title, Description: description, Variant: VariantDefault}
}

// Failure returns a destructive toast
func Failure(title, description string) Toast {
	return Toast{Title: title, Description: description, Variant: VariantDestructive}
}

// Notifier is anything that can display a toast
type Notifier interface {
	Show(t Toast)
}

// Center queues toasts until the page or response that displays them drains
// the queue. Each toast is handed out once.
type Center struct {
	mu     sync.Mutex
	toasts []Toast
}

// NewCenter creates an empty queue
func NewCenter() *Center {
	return &Center{}
}

// Show queues a toast
func (c *Center) Show(t Toast) {
	c.mu.Lock()
	c.toasts = append(c.toasts, t)
	c.mu.Unlock()
}

// Drain returns the queued toasts and empties the queue
func (c *Center) Drain() []Toast {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.toasts
	c.toasts = nil
	return out
}

// Len returns the number of queued toasts
func (c *Center) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.toasts)
}
