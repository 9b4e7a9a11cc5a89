package action

import (
	"fmt"
	"sync"
)

// Registry maps discriminator tags onto variant schemas. It is populated at
// startup and sealed before the store starts serving.
type Registry struct {
	mu       sync.RWMutex
	variants map[Kind]*Variant
	order    []Kind
	sealed   bool
}

func NewRegistry() *Registry {
	return &Registry{variants: make(map[Kind]*Variant)}
}

// Register adds a variant. Registering a tag twice fails with
// *DuplicateKindError.
func (r *Registry) Register(v Variant) error {
	if v.Kind == "" || v.Table == "" {
		return fmt.Errorf("register action variant: kind and table are required")
	}
	if v.New == nil || v.Encode == nil || v.Decode == nil {
		return fmt.Errorf("register %s: New, Encode and Decode are required", v.Kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return ErrRegistrySealed
	}
	if _, ok := r.variants[v.Kind]; ok {
		return &DuplicateKindError{Kind: v.Kind}
	}
	for _, other := range r.variants {
		if other.Table == v.Table {
			return fmt.Errorf("register %s: table %q already used by %s", v.Kind, v.Table, other.Kind)
		}
	}
	r.variants[v.Kind] = &v
	r.order = append(r.order, v.Kind)
	return nil
}

// MustRegister is Register for startup code where a conflict is fatal.
func (r *Registry) MustRegister(v Variant) {
	if err := r.Register(v); err != nil {
		panic(err)
	}
}

// Lookup returns the schema for kind or *UnknownVariantError.
func (r *Registry) Lookup(kind Kind) (*Variant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.variants[kind]
	if !ok {
		return nil, &UnknownVariantError{Kind: kind}
	}
	return v, nil
}

// Variants returns all variants in registration order.
func (r *Registry) Variants() []*Variant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Variant, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.variants[k])
	}
	return out
}

// Seal stops further registrations.
func (r *Registry) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}
