package align

import "fmt"

// ToolInvocationError reports that the external alignment tool could not be
// spawned, exited non-zero, or timed out. Recoverable by tier degradation.
type ToolInvocationError struct {
	Mode   RecognizerMode
	Stderr string
	Err    error
}

func (e *ToolInvocationError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("alignment tool failed (recognizer %s): %v: %s", e.Mode, e.Err, e.Stderr)
	}
	return fmt.Sprintf("alignment tool failed (recognizer %s): %v", e.Mode, e.Err)
}

func (e *ToolInvocationError) Unwrap() error { return e.Err }

// ToolOutputParseError reports that the tool produced output the adapter
// does not understand. Recoverable by tier degradation.
type ToolOutputParseError struct {
	Detail string
	Err    error
}

func (e *ToolOutputParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("alignment tool output unusable: %s: %v", e.Detail, e.Err)
	}
	return fmt.Sprintf("alignment tool output unusable: %s", e.Detail)
}

func (e *ToolOutputParseError) Unwrap() error { return e.Err }

// AudioReadError reports unreadable, corrupt, or unconvertible audio. Fatal:
// no recognizer tier can proceed without audio.
type AudioReadError struct {
	Path string
	Err  error
}

func (e *AudioReadError) Error() string {
	return fmt.Sprintf("audio unreadable: %s: %v", e.Path, e.Err)
}

func (e *AudioReadError) Unwrap() error { return e.Err }

// AllTiersExhaustedError reports that every recognizer tier failed. The last
// per-tier error of each attempt is retained for diagnostics.
type AllTiersExhaustedError struct {
	Attempts []RecognizerMode
	Errs     []error
}

func (e *AllTiersExhaustedError) Error() string {
	return fmt.Sprintf("all %d recognizer tiers failed: %v", len(e.Attempts), e.Attempts)
}

func (e *AllTiersExhaustedError) Unwrap() []error { return e.Errs }
