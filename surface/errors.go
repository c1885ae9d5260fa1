package surface

import (
	"errors"
	"fmt"
)

// ErrUnavailable is returned by Err when the host could not provide an
// accelerated rendering context.
var ErrUnavailable = errors.New("accelerated rendering context unavailable")

// Stage identifies which step of a program build failed.
type Stage string

const (
	StageVertex   Stage = "vertex"
	StageFragment Stage = "fragment"
	StageLink     Stage = "link"
	StageValidate Stage = "validate"
)

// BuildError is a shader compile, link or kernel validation failure.
type BuildError struct {
	Stage Stage
	Log   string
	Err   error
}

func (e *BuildError) Error() string {
	if e.Log == "" && e.Err != nil {
		return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s stage failed: %s", e.Stage, e.Log)
}

func (e *BuildError) Unwrap() error { return e.Err }
