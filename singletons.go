// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package ippc

// notImplementedType and ellipsisType stand in for the source language's
// NotImplemented and Ellipsis singletons: values with no meaningful payload
// that are transmitted purely by registered identity.
type notImplementedType struct{}

func (notImplementedType) Reduce() (any, error) { return "NotImplemented", nil }

type ellipsisType struct{}

func (ellipsisType) Reduce() (any, error) { return "Ellipsis", nil }

// NotImplemented and Ellipsis are the two singletons the codec guarantees
// round-trip without any caller registration.
var (
	NotImplemented = notImplementedType{}
	Ellipsis       = ellipsisType{}
)

func init() {
	if err := Register(NotImplemented); err != nil {
		panic("ippc: failed to bootstrap NotImplemented: " + err.Error())
	}
	if err := Register(Ellipsis); err != nil {
		panic("ippc: failed to bootstrap Ellipsis: " + err.Error())
	}
}
