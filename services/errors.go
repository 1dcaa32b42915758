package services

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound signals that a referenced post or comment does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrPermissionDenied signals a mutation attempt by a caller who is
	// neither the owner nor an administrator.
	ErrPermissionDenied = errors.New("permission denied")
)

// RuleError is a business-rule violation: the input is well-formed and the
// caller is authorized, but the operation is not allowed in the current
// state (liking a draft, replying across posts, slug conflict after retry).
type RuleError struct {
	Reason string
}

func (e *RuleError) Error() string { return e.Reason }

var (
	ErrPostNotPublished   = &RuleError{Reason: "post is not published"}
	ErrCommentNotApproved = &RuleError{Reason: "comment is not approved"}
	ErrParentMismatch     = &RuleError{Reason: "parent comment belongs to a different post"}
	ErrSlugConflict       = &RuleError{Reason: "could not generate a unique slug"}
)

// ValidationError reports every violated field, not just the first.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// fieldErrors accumulates per-field violations and converts to a
// ValidationError only when something was recorded.
type fieldErrors map[string]string

func (f fieldErrors) add(field, msg string) { f[field] = msg }

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}
