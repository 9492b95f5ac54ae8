package autopage

import (
	"fmt"

	"github.com/google/renameio/v2"
)

// transcriptMode is the permission mode for committed transcript files
const transcriptMode = 0o644

// transcript mirrors session output into a pending file that is renamed
// into place when the session closes, so readers never observe a partial
// transcript and an aborted process leaves any previous transcript intact.
type transcript struct {
	pending *renameio.PendingFile
}

// newTranscript opens a pending transcript for path
func newTranscript(path string) (*transcript, error) {
	pf, err := renameio.NewPendingFile(path, renameio.WithPermissions(transcriptMode))
	if err != nil {
		return nil, fmt.Errorf("autopage: creating transcript: %w", err)
	}
	return &transcript{pending: pf}, nil
}

// Write appends to the pending transcript
func (t *transcript) Write(p []byte) (int, error) {
	return t.pending.Write(p)
}

// commit renames the pending file into place
func (t *transcript) commit() error {
	if err := t.pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("autopage: committing transcript: %w", err)
	}
	return nil
}
