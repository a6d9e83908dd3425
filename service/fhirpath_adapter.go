package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gofhir/fhirpath"
	"github.com/gofhir/fhirpath/types"
)

// FHIRPathAdapter evaluates FHIRPath expressions against resources,
// caching compiled expressions. The validator uses it to check the
// universal DomainResource invariants.
type FHIRPathAdapter struct {
	mu    sync.Mutex
	cache map[string]*fhirpath.Expression
}

// NewFHIRPathAdapter creates a new FHIRPath adapter.
func NewFHIRPathAdapter() *FHIRPathAdapter {
	return &FHIRPathAdapter{
		cache: make(map[string]*fhirpath.Expression),
	}
}

// Evaluate evaluates a FHIRPath expression against a resource.
// Returns true when the constraint is satisfied. A non-boolean result is
// converted using FHIRPath truthiness: an empty collection is false, a
// single boolean is its value, any other non-empty collection is true.
func (a *FHIRPathAdapter) Evaluate(ctx context.Context, expression string, resource any) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}

	resourceBytes, err := a.toJSON(resource)
	if err != nil {
		return false, fmt.Errorf("failed to convert resource to JSON: %w", err)
	}

	compiled, err := a.getOrCompile(expression)
	if err != nil {
		return false, fmt.Errorf("failed to compile FHIRPath expression %q: %w", expression, err)
	}

	result, err := compiled.Evaluate(resourceBytes)
	if err != nil {
		return false, fmt.Errorf("failed to evaluate FHIRPath expression %q: %w", expression, err)
	}

	return a.toBool(result), nil
}

func (a *FHIRPathAdapter) toJSON(resource any) ([]byte, error) {
	switch v := resource.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return json.Marshal(v)
	}
}

func (a *FHIRPathAdapter) getOrCompile(expression string) (*fhirpath.Expression, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if compiled, ok := a.cache[expression]; ok {
		return compiled, nil
	}
	compiled, err := fhirpath.Compile(expression)
	if err != nil {
		return nil, err
	}
	a.cache[expression] = compiled
	return compiled, nil
}

func (a *FHIRPathAdapter) toBool(result types.Collection) bool {
	if len(result) == 0 {
		return false
	}
	if len(result) == 1 {
		if b, ok := result[0].(types.Boolean); ok {
			return b.Bool()
		}
	}
	return true
}
