package editor

import (
	"fmt"

	"github.com/google/uuid"
)

// LocalID identifies a draft row inside one editing session. It is never
// stored.
type LocalID string

func newLocalID() LocalID { return LocalID(uuid.NewString()) }

// PersistedID is an id assigned by the store. Lecture PersistedIDs are
// discarded and regenerated on every save.
type PersistedID string

func (p PersistedID) Persisted() bool { return p != "" }

// MaxChildren is the most children a parent can number with two digits.
// Keeping ids the same width keeps their lexical order equal to position.
const MaxChildren = 99

// ChildID builds <parentID>-NN with a 1-based position, zero-padded to two
// digits.
func ChildID(parentID string, position int) string {
	return fmt.Sprintf("%s-%02d", parentID, position)
}
