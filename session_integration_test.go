//go:build linux || darwin

package autopage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// SessionTestSuite provides common test infrastructure for sessions that
// run a real pager subprocess
type SessionTestSuite struct {
	suite.Suite
	tempDir string
}

func (s *SessionTestSuite) SetupSuite() {
	requireTool(s.T(), "cat")

	// Create a temporary directory for all tests
	var err error
	s.tempDir, err = os.MkdirTemp("", "go-autopage-test-*")
	require.NoError(s.T(), err, "Failed to create temp directory")
}

func (s *SessionTestSuite) TearDownSuite() {
	// Clean up temp directory
	if s.tempDir != "" {
		os.RemoveAll(s.tempDir)
	}
}

// destination creates a fresh destination file for one scenario
func (s *SessionTestSuite) destination(name string) (*os.File, string) {
	path := filepath.Join(s.tempDir, name)
	f, err := os.Create(path)
	require.NoError(s.T(), err, "Failed to create destination file")
	return f, path
}

// TestPagedSessionIntegration tests complete sessions against real pager
// subprocesses
func TestPagedSessionIntegration(t *testing.T) {
	suite.Run(t, new(PagedSessionTestSuite))
}

type PagedSessionTestSuite struct {
	SessionTestSuite
}

func (s *PagedSessionTestSuite) TestFullReport() {
	f, path := s.destination("report.txt")
	defer f.Close()

	p, err := New(WithOutput(f), WithPager(Custom("cat")))
	require.NoError(s.T(), err)
	p.tty = true

	out, err := p.Start(context.Background())
	require.NoError(s.T(), err)
	for i := 0; i < 500; i++ {
		_, err := fmt.Fprintf(out, "result row %04d\n", i)
		require.NoError(s.T(), err, "Write should succeed while the pager is reading")
	}
	require.NoError(s.T(), p.Close(nil))
	require.Equal(s.T(), ExitSuccess, p.ExitCode())

	data, err := os.ReadFile(path)
	require.NoError(s.T(), err)
	require.Equal(s.T(), 500, strings.Count(string(data), "\n"), "Every row should reach the destination")
	require.True(s.T(), strings.HasSuffix(string(data), "result row 0499\n"), "Rows should arrive in order")
}

func (s *PagedSessionTestSuite) TestTranscriptMatchesOutput() {
	f, path := s.destination("shown.txt")
	defer f.Close()
	transcriptPath := filepath.Join(s.tempDir, "session.transcript")

	p, err := New(
		WithOutput(f),
		WithPager(Custom("cat")),
		WithTranscript(transcriptPath),
	)
	require.NoError(s.T(), err)
	p.tty = true

	out, err := p.Start(context.Background())
	require.NoError(s.T(), err)
	for i := 0; i < 100; i++ {
		_, err := fmt.Fprintf(out, "audited line %d\n", i)
		require.NoError(s.T(), err)
	}
	require.NoError(s.T(), p.Close(nil))

	shown, err := os.ReadFile(path)
	require.NoError(s.T(), err)
	transcript, err := os.ReadFile(transcriptPath)
	require.NoError(s.T(), err)
	require.Equal(s.T(), string(shown), string(transcript), "Transcript should match what the pager displayed")
}

func (s *PagedSessionTestSuite) TestSanitizedSession() {
	f, path := s.destination("sanitized.txt")
	defer f.Close()

	p, err := New(
		WithOutput(f),
		WithPager(Custom("cat")),
		WithErrorStrategy(ErrorsBackslashReplace),
	)
	require.NoError(s.T(), err)
	p.tty = true

	out, err := p.Start(context.Background())
	require.NoError(s.T(), err)
	_, err = out.Write([]byte("binary \xff\xfe mixed in\n"))
	require.NoError(s.T(), err)
	require.NoError(s.T(), p.Close(nil))

	data, err := os.ReadFile(path)
	require.NoError(s.T(), err)
	require.Equal(s.T(), `binary \xff\xfe mixed in`+"\n", string(data), "Undecodable bytes should be escaped before the pager sees them")
}

func (s *PagedSessionTestSuite) TestConsecutiveSessions() {
	f, path := s.destination("consecutive.txt")
	defer f.Close()

	for round := 0; round < 3; round++ {
		p, err := New(WithOutput(f), WithPager(Custom("cat")))
		require.NoError(s.T(), err)
		p.tty = true

		out, err := p.Start(context.Background())
		require.NoError(s.T(), err)
		_, err = fmt.Fprintf(out, "round %d\n", round)
		require.NoError(s.T(), err)
		require.NoError(s.T(), p.Close(nil), "Each session should tear down cleanly")
	}

	data, err := os.ReadFile(path)
	require.NoError(s.T(), err)
	require.Equal(s.T(), "round 0\nround 1\nround 2\n", string(data), "Sessions should not interfere with one another")
}
