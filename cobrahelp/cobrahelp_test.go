package cobrahelp

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/axondata/go-autopage"
)

func newRoot() *cobra.Command {
	return &cobra.Command{
		Use:   "mytool",
		Short: "A tool whose help runs long",
		Long:  strings.Repeat("Helpful explanation that keeps going.\n", 40),
		Run:   func(*cobra.Command, []string) {},
	}
}

func TestInstallPreservesHelpOutput(t *testing.T) {
	root := newRoot()
	Install(root)

	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"--help"})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute() = %v, want nil", err)
	}

	got := buf.String()
	if !strings.Contains(got, "Usage:") {
		t.Errorf("help output missing usage section:\n%s", got)
	}
	if !strings.Contains(got, "mytool") {
		t.Errorf("help output missing command name:\n%s", got)
	}
	if !strings.Contains(got, "Helpful explanation that keeps going.") {
		t.Errorf("help output missing long description:\n%s", got)
	}
	if root.OutOrStdout() != &buf {
		t.Error("explicitly set writer not restored after help")
	}
}

func TestInstallLeavesInheritedOutputUnpinned(t *testing.T) {
	root := newRoot()
	sub := &cobra.Command{
		Use:   "frob",
		Short: "Frobnicate something",
		Run:   func(*cobra.Command, []string) {},
	}
	root.AddCommand(sub)
	Install(root)

	var first bytes.Buffer
	root.SetOut(&first)
	root.SetArgs([]string{"frob", "--help"})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute() = %v, want nil", err)
	}
	if !strings.Contains(first.String(), "mytool frob") {
		t.Fatalf("help not rendered:\n%s", first.String())
	}

	// The subcommand borrowed root's writer for the help run; a later change
	// on root must still reach it.
	var second bytes.Buffer
	root.SetOut(&second)
	if got := sub.OutOrStdout(); got != &second {
		t.Error("subcommand pinned to the old writer instead of inheriting")
	}
}

func TestInstallCoversSubcommands(t *testing.T) {
	root := newRoot()
	root.AddCommand(&cobra.Command{
		Use:   "frob",
		Short: "Frobnicate something",
		Run:   func(*cobra.Command, []string) {},
	})
	Install(root)

	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"frob", "--help"})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute() = %v, want nil", err)
	}

	if !strings.Contains(buf.String(), "mytool frob") {
		t.Errorf("subcommand help not routed through the hook:\n%s", buf.String())
	}
}

func TestInstallAppliesOptions(t *testing.T) {
	transcriptPath := filepath.Join(t.TempDir(), "help.txt")
	root := newRoot()
	Install(root, autopage.WithTranscript(transcriptPath))

	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"--help"})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute() = %v, want nil", err)
	}

	data, err := os.ReadFile(transcriptPath)
	if err != nil {
		t.Fatalf("reading transcript: %v", err)
	}
	if string(data) != buf.String() {
		t.Errorf("transcript = %q, want the displayed help %q", string(data), buf.String())
	}
}

func TestInstallRunsCommandsUntouched(t *testing.T) {
	ran := false
	root := newRoot()
	root.Run = func(*cobra.Command, []string) { ran = true }
	Install(root)

	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs(nil)
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute() = %v, want nil", err)
	}
	if !ran {
		t.Error("command body did not run")
	}
	if buf.Len() != 0 {
		t.Errorf("unexpected output %q from a non-help invocation", buf.String())
	}
}

type failWriter struct {
	writes int
}

func (f *failWriter) Write(p []byte) (int, error) {
	f.writes++
	return 0, errors.New("reader went away")
}

func TestInstallReportsRenderFailure(t *testing.T) {
	root := newRoot()
	Install(root)

	var errOut bytes.Buffer
	root.SetOut(&failWriter{})
	root.SetErr(&errOut)
	root.SetArgs([]string{"--help"})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute() = %v, want nil", err)
	}

	// The help text was lost; the session outcome must not be.
	if !strings.Contains(errOut.String(), "reader went away") {
		t.Errorf("render failure not reported on the error stream: %q", errOut.String())
	}
}

func TestQuietWriterHoldsFirstError(t *testing.T) {
	fw := &failWriter{}
	q := &quietWriter{w: fw}

	if n, err := q.Write([]byte("first")); err != nil || n != len("first") {
		t.Errorf("Write() = (%d, %v), want full length and nil", n, err)
	}
	if q.err == nil {
		t.Fatal("first error not recorded")
	}
	if n, err := q.Write([]byte("second")); err != nil || n != len("second") {
		t.Errorf("Write() after error = (%d, %v), want full length and nil", n, err)
	}
	if fw.writes != 1 {
		t.Errorf("sink saw %d writes, want 1", fw.writes)
	}
}
