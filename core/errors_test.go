package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsNotFoundError_WithExactError(t *testing.T) {
	if !IsNotFoundError(ErrTemplateNotFound) {
		t.Error("expected true for ErrTemplateNotFound")
	}
}

func TestIsNotFoundError_WithWrappedError(t *testing.T) {
	err := &RenderError{Page: "index", Err: ErrTemplateNotFound}
	if !IsNotFoundError(err) {
		t.Error("expected true for RenderError wrapping ErrTemplateNotFound")
	}

	err2 := fmt.Errorf("serving page: %w", err)
	if !IsNotFoundError(err2) {
		t.Error("expected true through fmt.Errorf wrapping")
	}
}

func TestIsNotFoundError_WithSameMessageOnly(t *testing.T) {
	err := errors.New(ErrTemplateNotFound.Error())
	if IsNotFoundError(err) {
		t.Error("expected false for a distinct error with the same message")
	}
}

func TestIsNotFoundError_WithDifferentError(t *testing.T) {
	if IsNotFoundError(errors.New("some other error")) {
		t.Error("expected false for unrelated error")
	}
}

func TestIsNotFoundError_WithNil(t *testing.T) {
	if IsNotFoundError(nil) {
		t.Error("expected false for nil error")
	}
}

func TestRenderError_Message(t *testing.T) {
	err := &RenderError{Page: "sandbox", Err: errors.New("boom")}
	if got := err.Error(); got != `render "sandbox": boom` {
		t.Errorf("unexpected message %q", got)
	}
}
