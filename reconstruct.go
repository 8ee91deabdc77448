// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package ippc

import "fmt"

// reconstructObject rebuilds an instance from a decoded reconstruction
// tuple: new, then state, extend, and update in that fixed order. Any
// failure aborts and discards the partially built object.
func reconstructObject(reduced any) (any, error) {
	tup, ok := reduced.(Tuple)
	if !ok {
		return nil, fmt.Errorf("%w: instance payload decoded to %T, want a reconstruction tuple", ErrBadReconstruct, reduced)
	}
	if len(tup) < 2 || len(tup) > 5 {
		return nil, fmt.Errorf("%w: reconstruction tuple has %d elements, want 2..5", ErrBadReconstruct, len(tup))
	}

	cls, ok := tup[0].(Class)
	if !ok {
		return nil, fmt.Errorf("%w: reconstruction callable is %T, want Class", ErrBadReconstruct, tup[0])
	}
	args, ok := tup[1].(Tuple)
	if !ok {
		return nil, fmt.Errorf("%w: reconstruction args is %T, want Tuple", ErrBadReconstruct, tup[1])
	}

	obj, err := cls.New(args)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStateError, err)
	}

	slot := func(i int) any {
		if i >= len(tup) {
			return Unit{}
		}
		return tup[i]
	}

	if state := slot(2); !isUnit(state) {
		if err := applyState(obj, state); err != nil {
			return nil, err
		}
	}
	if extend := slot(3); !isUnit(extend) {
		if err := applyExtend(obj, extend); err != nil {
			return nil, err
		}
	}
	if update := slot(4); !isUnit(update) {
		if err := applyUpdate(obj, update); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

func isUnit(v any) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Unit)
	return ok
}

// applyState runs the reconstruction tuple's "state" phase: SetState if
// the object implements it, otherwise per-key SetAttr when state is a
// Dict.
func applyState(obj, state any) error {
	if ss, ok := obj.(StateSetter); ok {
		if err := ss.SetState(state); err != nil {
			return fmt.Errorf("%w: %v", ErrStateError, err)
		}
		return nil
	}
	dict, ok := state.(Dict)
	if !ok {
		return fmt.Errorf("%w: %T has no SetState and state is %T, not Dict", ErrStateError, obj, state)
	}
	setter, ok := obj.(AttrSetter)
	if !ok {
		return fmt.Errorf("%w: %T has neither SetState nor SetAttr", ErrStateError, obj)
	}
	for k, v := range dict {
		key, ok := k.(string)
		if !ok {
			return fmt.Errorf("%w: state key %v is not text", ErrStateError, k)
		}
		if err := setter.SetAttr(key, v); err != nil {
			return fmt.Errorf("%w: %v", ErrStateError, err)
		}
	}
	return nil
}

// applyExtend runs the "extend" phase. There is no stand-in for the source
// language's += operator dispatch once Extend is absent, so the fallback
// is a hard failure.
func applyExtend(obj, extend any) error {
	if ex, ok := obj.(Extender); ok {
		if err := ex.Extend(extend); err != nil {
			return fmt.Errorf("%w: %v", ErrStateError, err)
		}
		return nil
	}
	return fmt.Errorf("%w: cannot extend %T", ErrStateError, obj)
}

// applyUpdate runs the "update" phase: Update if implemented, else
// per-pair SetItem, accepting a Dict, Tuple, or List of length-2
// sequences as the pair source.
func applyUpdate(obj, update any) error {
	if up, ok := obj.(Updater); ok {
		if err := up.Update(update); err != nil {
			return fmt.Errorf("%w: %v", ErrStateError, err)
		}
		return nil
	}
	setter, ok := obj.(ItemSetter)
	if !ok {
		return fmt.Errorf("%w: %T has neither Update nor SetItem", ErrStateError, obj)
	}
	pairs, err := asPairs(update)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStateError, err)
	}
	for _, kv := range pairs {
		if err := setter.SetItem(kv[0], kv[1]); err != nil {
			return fmt.Errorf("%w: %v", ErrStateError, err)
		}
	}
	return nil
}

// asPairs normalizes the "update" slot into (key, value) pairs: a Dict's
// items, or a Tuple/List of length-2 Tuple/List sequences.
func asPairs(update any) ([][2]any, error) {
	switch u := update.(type) {
	case Dict:
		pairs := make([][2]any, 0, len(u))
		for k, v := range u {
			pairs = append(pairs, [2]any{k, v})
		}
		return pairs, nil
	case Tuple:
		return pairsFromSeq([]any(u))
	case List:
		return pairsFromSeq([]any(u))
	default:
		return nil, fmt.Errorf("update value %T is not iterable as pairs", update)
	}
}

func pairsFromSeq(items []any) ([][2]any, error) {
	pairs := make([][2]any, 0, len(items))
	for i, it := range items {
		switch kv := it.(type) {
		case Tuple:
			if len(kv) != 2 {
				return nil, fmt.Errorf("update item %d has %d elements, want 2", i, len(kv))
			}
			pairs = append(pairs, [2]any{kv[0], kv[1]})
		case List:
			if len(kv) != 2 {
				return nil, fmt.Errorf("update item %d has %d elements, want 2", i, len(kv))
			}
			pairs = append(pairs, [2]any{kv[0], kv[1]})
		default:
			return nil, fmt.Errorf("update item %d is %T, want a length-2 sequence", i, it)
		}
	}
	return pairs, nil
}
