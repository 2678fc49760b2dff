package history

import (
	"fmt"
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"

	"github.com/mumblefish/noteflow/tone"
)

// Note is a saved raw/polished pair. Notes are immutable once created;
// "editing" deletes the original and inserts a replacement with a fresh
// ID and timestamp.
type Note struct {
	ID           string    `json:"id"`
	RawText      string    `json:"rawText"`
	PolishedText string    `json:"polishedText"`
	Style        string    `json:"style"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NewNote creates a Note with a fresh ID and the current time.
func NewNote(rawText, polishedText string, style tone.Style) (Note, error) {
	id, err := nanoid.New()
	if err != nil {
		return Note{}, fmt.Errorf("generate note id: %w", err)
	}

	return Note{
		ID:           "note_" + id,
		RawText:      rawText,
		PolishedText: polishedText,
		Style:        style.Label(),
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// ToneStyle resolves the note's stored style string. Unknown or legacy
// values return ok=false and are treated as no selection by callers.
func (n Note) ToneStyle() (tone.Style, bool) {
	return tone.Parse(n.Style)
}
