package store

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalErrors "github.com/notabase/search/internal/errors"
	"github.com/notabase/search/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "notes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func textNote(id, title string) model.Note {
	return model.Note{NoteID: id, Title: title, Type: model.NoteTypeText}
}

func TestOpenCreatesRoots(t *testing.T) {
	st := newTestStore(t)

	root, err := st.GetNote(model.RootID)
	require.NoError(t, err)
	assert.Equal(t, model.RootID, root.NoteID)

	hidden, err := st.GetNote(model.HiddenRootID)
	require.NoError(t, err)
	assert.Equal(t, model.HiddenRootID, hidden.NoteID)
}

func TestCreateAndGetNote(t *testing.T) {
	st := newTestStore(t)

	require.NoError(t, st.CreateNote(textNote("n1", "Alpha"), model.RootID, "note content"))

	note, err := st.GetNote("n1")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", note.Title)
	assert.NotEmpty(t, note.BlobID)

	// Empty content means no blob.
	require.NoError(t, st.CreateNote(textNote("n2", "Beta"), model.RootID, ""))
	note, err = st.GetNote("n2")
	require.NoError(t, err)
	assert.Empty(t, note.BlobID)
}

func TestCreateNoteRequiresID(t *testing.T) {
	st := newTestStore(t)

	err := st.CreateNote(textNote("", "Alpha"), model.RootID, "")
	assert.ErrorIs(t, err, internalErrors.ErrInvalidInput)
}

func TestUpdateNote(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.CreateNote(textNote("n1", "Alpha"), model.RootID, "content"))

	note, err := st.GetNote("n1")
	require.NoError(t, err)
	note.Title = "Renamed"
	require.NoError(t, st.UpdateNote(note))

	updated, err := st.GetNote("n1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, note.BlobID, updated.BlobID)

	err = st.UpdateNote(textNote("missing", "X"))
	assert.ErrorIs(t, err, internalErrors.ErrNoteNotFound)
}

func TestUpdateNoteContentCreatesBlobOnDemand(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.CreateNote(textNote("n1", "Alpha"), model.RootID, ""))

	require.NoError(t, st.UpdateNoteContent("n1", "late content"))
	note, err := st.GetNote("n1")
	require.NoError(t, err)
	assert.NotEmpty(t, note.BlobID)

	// A second update reuses the blob.
	require.NoError(t, st.UpdateNoteContent("n1", "revised content"))
	again, err := st.GetNote("n1")
	require.NoError(t, err)
	assert.Equal(t, note.BlobID, again.BlobID)

	err = st.UpdateNoteContent("missing", "x")
	assert.ErrorIs(t, err, internalErrors.ErrNoteNotFound)
}

func TestDeleteNoteIsSoft(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.CreateNote(textNote("n1", "Alpha"), model.RootID, "content"))

	require.NoError(t, st.DeleteNote("n1"))

	note, err := st.GetNote("n1")
	require.NoError(t, err)
	assert.True(t, note.IsDeleted)

	err = st.DeleteNote("missing")
	assert.ErrorIs(t, err, internalErrors.ErrNoteNotFound)
}

func TestSnapshotReflectsGraph(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.CreateNote(textNote("folder", "Projects"), model.RootID, ""))
	require.NoError(t, st.CreateNote(textNote("n1", "Alpha"), "folder", "alpha content"))
	require.NoError(t, st.CreateNote(textNote("h1", "Secret"), model.HiddenRootID, "hidden content"))

	snap, err := st.Snapshot()
	require.NoError(t, err)

	content, ok := snap.Content("n1")
	require.True(t, ok)
	assert.Equal(t, "alpha content", content)

	_, ok = snap.Content("folder")
	assert.False(t, ok)

	assert.Equal(t, []string{model.RootID, "folder", "n1"}, snap.BestPath("n1"))
	assert.False(t, snap.IsHidden("n1"))
	assert.True(t, snap.IsHidden("h1"))
}

type failingObserver struct{}

func (failingObserver) OnNoteMutated(tx *sql.Tx, m Mutation) error {
	return errors.New("derived state write failed")
}

func TestObserverFailureAbortsMutation(t *testing.T) {
	st := newTestStore(t)
	st.RegisterObserver(failingObserver{})

	err := st.CreateNote(textNote("n1", "Alpha"), model.RootID, "content")
	require.Error(t, err)

	// The note insert rolled back together with the observer failure.
	_, err = st.GetNote("n1")
	assert.ErrorIs(t, err, internalErrors.ErrNoteNotFound)
}

type recordingObserver struct {
	mutations []Mutation
}

func (r *recordingObserver) OnNoteMutated(tx *sql.Tx, m Mutation) error {
	r.mutations = append(r.mutations, m)
	return nil
}

func TestMutationEvents(t *testing.T) {
	st := newTestStore(t)
	rec := &recordingObserver{}
	st.RegisterObserver(rec)

	require.NoError(t, st.CreateNote(textNote("n1", "Alpha"), model.RootID, "content"))
	require.NoError(t, st.UpdateNoteContent("n1", "new content"))
	note, err := st.GetNote("n1")
	require.NoError(t, err)
	note.Title = "Renamed"
	require.NoError(t, st.UpdateNote(note))
	require.NoError(t, st.DeleteNote("n1"))

	require.Len(t, rec.mutations, 4)
	assert.Equal(t, NoteCreated, rec.mutations[0].Kind)
	assert.Equal(t, BlobUpserted, rec.mutations[1].Kind)
	assert.Equal(t, NoteUpdated, rec.mutations[2].Kind)
	assert.Equal(t, NoteDeleted, rec.mutations[3].Kind)
	assert.Equal(t, "n1", rec.mutations[0].NoteID)
	assert.NotEmpty(t, rec.mutations[1].BlobID)
}
