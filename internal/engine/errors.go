// SPDX-License-Identifier: MIT
package engine

import "errors"

var (
	// ErrNotInitialized is returned by every processing or configuration
	// call made before Initialize succeeded (or after Close).
	ErrNotInitialized = errors.New("engine: not initialized")

	// ErrInvalidArgument reports an argument the engine cannot use.
	ErrInvalidArgument = errors.New("engine: invalid argument")

	// ErrInvalidSettings reports a sample rate or frame size that is not
	// positive. It is raised at configuration time, never per call.
	ErrInvalidSettings = errors.New("engine: invalid settings")

	// ErrEngineFailure wraps an error signalled by a backend capability.
	ErrEngineFailure = errors.New("engine: backend failure")

	// ErrReverbUnavailable is returned by reverb calls when the reverb could
	// not be acquired during Initialize.
	ErrReverbUnavailable = errors.New("engine: reverb unavailable")
)
