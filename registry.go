// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package ippc

import "sync"

// registry is the process-wide identity -> object map. register populates
// it explicitly; lookup is the only way the decoder materializes a class or
// singleton. Registrations are expected during startup; steady state is
// read-only lookup, so a plain RWMutex is sufficient.
type registry struct {
	mu      sync.RWMutex
	objects map[string]any
}

var globalRegistry = &registry{objects: make(map[string]any)}

// Register adds obj, a Class or a Reducer whose Reduce returns a string, to
// the global identity registry. Re-registering the same identity overwrites
// the previous entry (last-writer-wins); re-registering the same object is
// a no-op.
func Register(obj any) error {
	identity, err := identityOf(obj)
	if err != nil {
		return err
	}
	key := string(identity)

	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	if existing, ok := globalRegistry.objects[key]; ok && existing == obj {
		return nil
	}
	globalRegistry.objects[key] = obj
	return nil
}

// Lookup resolves identity bytes to a previously registered object.
func Lookup(identity []byte) (any, bool) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	obj, ok := globalRegistry.objects[string(identity)]
	return obj, ok
}

// identityOf computes the encoded identity of a registrable object: a
// class's identity is its packed (module, qualname) text pair; a
// singleton's identity is its packed reconstruction string.
func identityOf(obj any) ([]byte, error) {
	if cls, ok := obj.(Class); ok {
		module, qualname := cls.ClassIdentity()
		return encodeClassIdentity(module, qualname), nil
	}
	if red, ok := obj.(Reducer); ok {
		reduced, err := red.Reduce()
		if err != nil {
			return nil, err
		}
		name, ok := reduced.(string)
		if !ok {
			return nil, ErrBadReconstruct
		}
		return encodeSingletonIdentity(name), nil
	}
	return nil, ErrUnencodableKind
}

// encodeClassIdentity packs module and qualname as two consecutive text
// values, matching the wire layout read back by the decoder's CLASS path.
func encodeClassIdentity(module, qualname string) []byte {
	buf := NewBuffer(0)
	packText(buf, module)
	packText(buf, qualname)
	return buf.Freeze()
}

// encodeSingletonIdentity packs name as a single text value.
func encodeSingletonIdentity(name string) []byte {
	buf := NewBuffer(0)
	packText(buf, name)
	return buf.Freeze()
}

// splitClassIdentity decodes a class identity back into its module and
// qualname, for error reporting on registry miss.
func splitClassIdentity(identity []byte) (module, qualname string, ok bool) {
	mod, n, err := decodePackedText(identity, 0)
	if err != nil {
		return "", "", false
	}
	qual, _, err := decodePackedText(identity, n)
	if err != nil {
		return "", "", false
	}
	return mod, qual, true
}

// decodeTextIdentity decodes a singleton identity back into its name, for
// error reporting on registry miss.
func decodeTextIdentity(identity []byte) (string, bool) {
	name, _, err := decodePackedText(identity, 0)
	if err != nil {
		return "", false
	}
	return name, true
}
