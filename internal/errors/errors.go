// Copyright (c) 2025 Modmeta
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package errors defines typed errors with categories for user-friendly reporting.
// It provides a structured approach to error handling with machine-readable error kinds
// and human-friendly messages, so callers can tell a hard "no metadata" failure apart
// from a recoverable fetch or disk problem without matching on strings.
//
// Errors keep their cause reachable through Unwrap, so errors.Is and errors.As from
// the standard library work across the wrapping.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// FetchFailed indicates a manifest could not be fetched or decoded from the network.
	FetchFailed Kind = "fetch_failed"
	// DecodeFailed indicates a cached file exists but does not hold a valid snapshot.
	DecodeFailed Kind = "decode_failed"
	// IOFailed indicates a disk read, write or copy failed.
	IOFailed Kind = "io_failed"
	// MetadataUnavailable indicates no tier could produce a metadata snapshot.
	MetadataUnavailable Kind = "metadata_unavailable"
	// BootstrapFailed indicates the registry could not be populated at startup.
	BootstrapFailed Kind = "bootstrap_failed"
	// ProfileInvalid indicates a profile request cannot be satisfied by the metadata.
	ProfileInvalid Kind = "profile_invalid"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// KindOf returns the kind of the outermost *E in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether any *E in err's tree carries the given kind. Joined errors
// are searched branch by branch.
func Is(err error, kind Kind) bool {
	switch x := err.(type) {
	case nil:
		return false
	case *E:
		if x.Kind == kind {
			return true
		}
		return Is(x.Err, kind)
	case interface{ Unwrap() []error }:
		for _, e := range x.Unwrap() {
			if Is(e, kind) {
				return true
			}
		}
		return false
	case interface{ Unwrap() error }:
		return Is(x.Unwrap(), kind)
	}
	return false
}
