// internal/providers/provider.go

// Package providers defines the interface for text-completion backends.
// A backend receives a fully rendered prompt plus generation options and
// returns the generated text, regardless of the underlying server (llama.cpp, Ollama).
package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// ErrMalformedOutput is returned when a backend answers with a payload that
// does not carry the generated text where it is expected.
var ErrMalformedOutput = errors.New("malformed backend output")

// Options carries the generation settings sent with every completion.
type Options struct {
	// MaxTokens caps the number of generated tokens.
	MaxTokens int
	// Temperature controls sampling randomness; 0 is greedy.
	Temperature float64
	// Stop lists strings that end generation as soon as they are produced.
	// The backend truncates its output before the first match.
	Stop []string
}

// Completer is the interface all completion backends implement.
type Completer interface {
	// Complete issues one blocking completion request and returns the generated text.
	Complete(ctx context.Context, prompt string, opts Options) (string, error)
}

// CompleterFunc adapts a plain function to the Completer interface.
type CompleterFunc func(ctx context.Context, prompt string, opts Options) (string, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	return f(ctx, prompt, opts)
}

// Preparer is implemented by backends that can load the model ahead of the
// first completion.
type Preparer interface {
	EnsureModelReady(ctx context.Context) error
}

// ModelLister is implemented by backends that can report which models the
// server currently holds in memory.
type ModelLister interface {
	LoadedModels(ctx context.Context) ([]string, error)
}

// Find returns the first completer in the decorator chain starting at c that
// implements T. Decorators expose what they wrap through a Wrapped method.
func Find[T any](c Completer) (T, bool) {
	var zero T
	for c != nil {
		if v, ok := c.(T); ok {
			return v, true
		}
		wrapper, ok := c.(interface{ Wrapped() Completer })
		if !ok {
			return zero, false
		}
		next := wrapper.Wrapped()
		if next == c {
			break
		}
		c = next
	}
	return zero, false
}

// locked serializes access to a Completer that is not safe for concurrent use.
type locked struct {
	mu      sync.Mutex
	wrapped Completer
}

// Locked wraps c so that at most one Complete call is in flight at a time.
func Locked(c Completer) Completer {
	return &locked{wrapped: c}
}

func (l *locked) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.wrapped.Complete(ctx, prompt, opts)
}

// Wrapped returns the serialized completer.
func (l *locked) Wrapped() Completer {
	return l.wrapped
}

// ValidateShape checks body against a JSON Schema and returns an error
// wrapping ErrMalformedOutput listing every violation.
func ValidateShape(schema gojsonschema.JSONLoader, body []byte) error {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	if result.Valid() {
		return nil
	}
	var details []string
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}
	return fmt.Errorf("%w: %s", ErrMalformedOutput, strings.Join(details, "; "))
}
