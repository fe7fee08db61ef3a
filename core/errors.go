package core

import (
	"errors"
	"fmt"
)

var ErrTemplateNotFound = errors.New("orrery: template not found")

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrTemplateNotFound)
}

// RenderError reports a page that failed to parse or execute.
type RenderError struct {
	Page string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %q: %v", e.Page, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
