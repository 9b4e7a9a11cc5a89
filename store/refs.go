package store

import (
	"context"
	"fmt"

	"pycramdb/action"
)

// ValueCache is an optional read-through cache for value objects. Value
// objects are immutable once stored, so entries never need invalidation.
type ValueCache interface {
	Get(ctx context.Context, kind action.ValueKind, id int64, dst any) (bool, error)
	Put(ctx context.Context, kind action.ValueKind, id int64, v any) error
}

// Resolver turns references into stored ids on write and into value
// objects on demand.
type Resolver struct {
	db    *DB
	cache ValueCache
}

// EnsureID returns the id behind ref, inserting its raw value through q
// when it has no id yet. Each raw value is inserted exactly once.
func (r *Resolver) EnsureID(ctx context.Context, q querier, target action.ValueKind, ref action.Reference) (int64, error) {
	if ref == nil {
		return 0, ErrEmptyRef
	}
	if id := ref.RefID(); id != 0 {
		return id, nil
	}
	v := ref.RefValue()
	if v == nil {
		return 0, ErrEmptyRef
	}
	return r.db.insertValue(ctx, q, target, v)
}

// Fetch loads the value object of kind with the given id, consulting the
// cache first when one is configured. A cache failure falls back to the
// database.
func (r *Resolver) Fetch(ctx context.Context, kind action.ValueKind, id int64) (any, error) {
	if r.cache != nil {
		dst := action.NewValue(kind)
		if dst != nil {
			hit, err := r.cache.Get(ctx, kind, id, dst)
			if err != nil {
				log.WithError(err).WithField("kind", kind).Warn("value cache read failed")
			} else if hit {
				return dst, nil
			}
		}
	}
	v, err := r.db.GetValue(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if r.cache != nil {
		if err := r.cache.Put(ctx, kind, id, v); err != nil {
			log.WithError(err).WithField("kind", kind).Warn("value cache write failed")
		}
	}
	return v, nil
}

func fetchAs[T any](ctx context.Context, r *Resolver, kind action.ValueKind, id int64) (*T, error) {
	v, err := r.Fetch(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	t, ok := v.(*T)
	if !ok {
		return nil, fmt.Errorf("%s %d: unexpected value %T", kind, id, v)
	}
	return t, nil
}

func (r *Resolver) FetchPosition(ctx context.Context, ref action.Ref[action.Position]) (*action.Position, error) {
	if ref.Value != nil {
		return ref.Value, nil
	}
	return fetchAs[action.Position](ctx, r, action.ValuePosition, ref.ID)
}

func (r *Resolver) FetchQuaternion(ctx context.Context, ref action.Ref[action.Quaternion]) (*action.Quaternion, error) {
	if ref.Value != nil {
		return ref.Value, nil
	}
	return fetchAs[action.Quaternion](ctx, r, action.ValueQuaternion, ref.ID)
}

func (r *Resolver) FetchObject(ctx context.Context, ref action.Ref[action.ObjectDesignator]) (*action.ObjectDesignator, error) {
	if ref.Value != nil {
		return ref.Value, nil
	}
	return fetchAs[action.ObjectDesignator](ctx, r, action.ValueObject, ref.ID)
}

func (r *Resolver) FetchRobotState(ctx context.Context, ref action.Ref[action.RobotState]) (*action.RobotState, error) {
	if ref.Value != nil {
		return ref.Value, nil
	}
	return fetchAs[action.RobotState](ctx, r, action.ValueRobotState, ref.ID)
}
