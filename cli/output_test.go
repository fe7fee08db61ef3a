package cli

import (
	"bytes"
	"io"
	"os"
	"testing"
)

// captureOutput runs f with os.Stdout redirected and returns what it printed.
// The pipe is drained concurrently so large outputs cannot block f.
func captureOutput(t *testing.T, f func()) string {
	t.Helper()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		io.Copy(&buf, r)
		done <- buf.String()
	}()

	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	f()

	w.Close()
	out := <-done
	r.Close()
	return out
}
