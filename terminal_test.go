package autopage

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestIsTerminalWriter(t *testing.T) {
	t.Run("buffer", func(t *testing.T) {
		if isTerminalWriter(&bytes.Buffer{}) {
			t.Error("isTerminalWriter(buffer) = true, want false")
		}
	})

	t.Run("regular file", func(t *testing.T) {
		f, err := os.Create(filepath.Join(t.TempDir(), "out"))
		if err != nil {
			t.Fatal(err)
		}
		defer func() { _ = f.Close() }()

		if isTerminalWriter(f) {
			t.Error("isTerminalWriter(file) = true, want false")
		}
	})

	t.Run("pipe", func(t *testing.T) {
		pr, pw, err := os.Pipe()
		if err != nil {
			t.Fatal(err)
		}
		defer func() {
			_ = pr.Close()
			_ = pw.Close()
		}()

		if isTerminalWriter(pw) {
			t.Error("isTerminalWriter(pipe) = true, want false")
		}
	})

	t.Run("in-memory pipe", func(t *testing.T) {
		_, pw := io.Pipe()
		defer func() { _ = pw.Close() }()

		if isTerminalWriter(pw) {
			t.Error("isTerminalWriter(io.Pipe) = true, want false")
		}
	})
}

func TestLineBufferFromInput(t *testing.T) {
	t.Run("regular file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "in")
		if err := os.WriteFile(path, []byte("data\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		f, err := os.Open(path)
		if err != nil {
			t.Fatal(err)
		}
		defer func() { _ = f.Close() }()

		if LineBufferFromInput(f) {
			t.Error("LineBufferFromInput(file) = true, want false")
		}
	})

	t.Run("pipe", func(t *testing.T) {
		pr, pw, err := os.Pipe()
		if err != nil {
			t.Fatal(err)
		}
		defer func() {
			_ = pr.Close()
			_ = pw.Close()
		}()

		if !LineBufferFromInput(pr) {
			t.Error("LineBufferFromInput(pipe) = false, want true")
		}
	})

	t.Run("plain reader", func(t *testing.T) {
		// No Fd, no Seek: arrival order is all we know, so flush per line.
		r := io.MultiReader(strings.NewReader("data\n"))
		if !LineBufferFromInput(r) {
			t.Error("LineBufferFromInput(reader) = false, want true")
		}
	})

	t.Run("seekable reader", func(t *testing.T) {
		if LineBufferFromInput(strings.NewReader("data\n")) {
			t.Error("LineBufferFromInput(strings.Reader) = true, want false")
		}
	})
}
