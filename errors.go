package vgcanvas

import (
	"errors"
	"strconv"
)

// Sentinel errors for the taxonomy spec.md §7 lists. Callers compare with
// errors.Is; wrapped instances carry context via fmt.Errorf("vgcanvas: ...: %w", ...).
var (
	// ErrOutOfAtlasSpace is returned by image registration when no page has
	// room and no page can be evicted to make room.
	ErrOutOfAtlasSpace = errors.New("vgcanvas: out of atlas space")

	// ErrStaleBakedGeometry is returned on submission when a BakedGeometry's
	// captured atlas version no longer matches its Storage's current
	// version. The caller must re-bake.
	ErrStaleBakedGeometry = errors.New("vgcanvas: baked geometry is stale, re-bake required")

	// ErrUnknownCustomDrawer is returned (and also logged) when a Custom
	// batch references a customDrawerId with no registered handler. The
	// canvas drops the batch rather than returning this to the submission
	// caller mid-frame; it surfaces only from explicit handler lookups.
	ErrUnknownCustomDrawer = errors.New("vgcanvas: unknown custom drawer id")

	// ErrSingularTransform is returned by Transform2D.Inverse's callers that
	// need to distinguish "no inverse" from a silently-substituted identity.
	ErrSingularTransform = errors.New("vgcanvas: transform has no inverse")
)

// EmptyScissor, InvalidPath, StackUnderflow and StackOverflow are not
// returned as errors (spec.md §7): an empty scissor silently suppresses
// emission, an invalid path op or a stack underflow is a no-op reported
// through Logger() at Warn, and a stack overflow is a programmer error that
// panics rather than propagating a recoverable error value.

// diagnostic logs a no-op condition (invalid path op, stack underflow) at
// Warn level without returning an error, per spec.md §7's "no-op with
// diagnostic" rule.
func diagnostic(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

// stackOverflowPanic is called when a bounded stack (transform, render
// state, style pivot, custom renderer) is pushed past its depth cap.
// spec.md §4.5 treats this as programmer error: it traps rather than
// returning a recoverable error.
func stackOverflowPanic(stackName string, depth int) {
	panic("vgcanvas: " + stackName + " stack overflow at depth " + strconv.Itoa(depth))
}
