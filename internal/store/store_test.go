package store_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiknote-be/internal/entity"
	"quiknote-be/internal/pkg/logger"
	"quiknote-be/internal/remote"
	"quiknote-be/internal/remote/memory"
	"quiknote-be/internal/store"
)

type fixture struct {
	srv    *memory.Server
	client *memory.Client
	store  *store.Store
	sink   *recordingSink
	userId string
}

type recordingSink struct {
	mu      sync.Mutex
	changes []store.Change
}

func (r *recordingSink) Publish(ctx context.Context, change store.Change) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, change)
	return nil
}

func (r *recordingSink) kinds() []store.ChangeKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]store.ChangeKind, 0, len(r.changes))
	for _, c := range r.changes {
		kinds = append(kinds, c.Kind)
	}
	return kinds
}

func setup(t *testing.T, srvOpts []memory.Option, opts ...store.Option) *fixture {
	t.Helper()
	ctx := context.Background()

	srv := memory.NewServer(srvOpts...)
	client := srv.NewClient()
	_, err := client.Account().Register(ctx, "a@x.com", "pw", "Ann")
	require.NoError(t, err)
	auth, _, err := client.Account().Login(ctx, "a@x.com", "pw")
	require.NoError(t, err)

	sink := &recordingSink{}
	opts = append([]store.Option{store.WithEventSink(sink)}, opts...)
	st := store.New(client, store.OwnerFunc(func() string { return auth.UserId }), logger.NewNopLogger(), opts...)
	return &fixture{srv: srv, client: client, store: st, sink: sink, userId: auth.UserId}
}

func (f *fixture) note(t *testing.T, title string, notebook entity.NotebookRef) *entity.Note {
	t.Helper()
	n, err := f.store.CreateNote(context.Background(), store.NoteInput{Title: title, Content: title + " body", Notebook: notebook})
	require.NoError(t, err)
	return n
}

func (f *fixture) notebook(t *testing.T, name string) *entity.Notebook {
	t.Helper()
	nb, err := f.store.CreateNotebook(context.Background(), name)
	require.NoError(t, err)
	return nb
}

var errBoom = errors.New("backend unavailable")

func TestCreateNote_RoundTrip(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()
	nb := f.notebook(t, "Work")

	created, err := f.store.CreateNote(ctx, store.NoteInput{
		Title:    "T1",
		Content:  "C1",
		Notebook: entity.SomeNotebook(nb.Id),
	})
	require.NoError(t, err)

	f.store.FetchAll(ctx)

	notes := f.store.Notes()
	require.Len(t, notes, 1)
	assert.Equal(t, created.Id, notes[0].Id)
	assert.Equal(t, "T1", notes[0].Title)
	assert.Equal(t, "C1", notes[0].Content)
	assert.True(t, notes[0].Notebook.Is(nb.Id))
	assert.Equal(t, f.userId, notes[0].UserId)
	assert.False(t, notes[0].IsFavorite)
	assert.False(t, notes[0].IsTrashed)
	assert.Nil(t, notes[0].TrashedAt)
}

func TestCreateNote_PrependsNewest(t *testing.T) {
	f := setup(t, nil)
	first := f.note(t, "first", entity.NoNotebook)
	second := f.note(t, "second", entity.NoNotebook)

	notes := f.store.Notes()
	require.Len(t, notes, 2)
	assert.Equal(t, second.Id, notes[0].Id)
	assert.Equal(t, first.Id, notes[1].Id)
}

func TestCreateNote_RequiresTitle(t *testing.T) {
	f := setup(t, nil)

	for _, title := range []string{"", "   "} {
		_, err := f.store.CreateNote(context.Background(), store.NoteInput{Title: title})
		assert.ErrorIs(t, err, store.ErrTitleRequired)
	}
	assert.Equal(t, 0, f.srv.Calls("notes.create"))
	assert.Empty(t, f.store.Notes())
}

func TestCreateNote_FailureInsertsNothing(t *testing.T) {
	f := setup(t, nil)
	f.srv.FailOn("notes.create", "", errBoom)

	_, err := f.store.CreateNote(context.Background(), store.NoteInput{Title: "T1"})

	var opErr *store.OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "create note", opErr.Op)
	assert.Equal(t, "Failed to create note", opErr.Message())
	assert.ErrorIs(t, err, errBoom)
	assert.Empty(t, f.store.Notes())
	assert.Empty(t, f.sink.kinds())
}

func TestRestoreNote_TwiceStaysRestored(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()
	n := f.note(t, "T1", entity.NoNotebook)

	_, err := f.store.TrashNote(ctx, n.Id)
	require.NoError(t, err)
	got, _ := f.store.Note(n.Id)
	require.True(t, got.IsTrashed)
	require.NotNil(t, got.TrashedAt)

	for i := 0; i < 2; i++ {
		restored, err := f.store.RestoreNote(ctx, n.Id)
		require.NoError(t, err)
		assert.False(t, restored.IsTrashed)
		assert.Nil(t, restored.TrashedAt)
	}

	got, _ = f.store.Note(n.Id)
	assert.False(t, got.IsTrashed)
	assert.Nil(t, got.TrashedAt)
}

func TestTrashNote_KeepsRelationWhenResponseOmitsIt(t *testing.T) {
	f := setup(t, []memory.Option{memory.WithoutRelationEcho()})
	nb := f.notebook(t, "Work")
	n := f.note(t, "T1", entity.SomeNotebook(nb.Id))

	trashed, err := f.store.TrashNote(context.Background(), n.Id)
	require.NoError(t, err)
	assert.True(t, trashed.Notebook.Is(nb.Id))
}

func TestUpdateNote_MergeKeepsRelationWithoutRefetch(t *testing.T) {
	f := setup(t, []memory.Option{memory.WithoutRelationEcho()})
	ctx := context.Background()
	nb := f.notebook(t, "Work")
	n := f.note(t, "T1", entity.SomeNotebook(nb.Id))
	f.srv.ResetCalls()

	updated, err := f.store.UpdateNote(ctx, n.Id, store.NotePatch{Title: remote.String("T2")})
	require.NoError(t, err)

	assert.Equal(t, "T2", updated.Title)
	assert.True(t, updated.Notebook.Is(nb.Id))
	assert.Equal(t, 0, f.srv.Calls("notes.list"))
	assert.Equal(t, 0, f.srv.Calls("notes.get"))
}

func TestUpdateNote_MergeReResolvesChangedRelation(t *testing.T) {
	f := setup(t, []memory.Option{memory.WithoutRelationEcho()})
	ctx := context.Background()
	work := f.notebook(t, "Work")
	home := f.notebook(t, "Home")
	n := f.note(t, "T1", entity.SomeNotebook(work.Id))
	f.srv.ResetCalls()

	updated, err := f.store.UpdateNote(ctx, n.Id, store.NotePatch{Notebook: remote.NotebookPtr(entity.SomeNotebook(home.Id))})
	require.NoError(t, err)

	assert.True(t, updated.Notebook.Is(home.Id))
	assert.Equal(t, 1, f.srv.Calls("notes.get"))
	assert.Equal(t, 0, f.srv.Calls("notes.list"))
	assert.Len(t, f.store.NotesByNotebook(home.Id), 1)
	assert.Empty(t, f.store.NotesByNotebook(work.Id))
}

func TestUpdateNote_MergeCanDetachFromNotebook(t *testing.T) {
	f := setup(t, nil)
	nb := f.notebook(t, "Work")
	n := f.note(t, "T1", entity.SomeNotebook(nb.Id))

	updated, err := f.store.UpdateNote(context.Background(), n.Id, store.NotePatch{Notebook: remote.NotebookPtr(entity.NoNotebook)})
	require.NoError(t, err)

	assert.True(t, updated.Notebook.IsNone())
	assert.Equal(t, "", f.srv.StoredNotebookId(n.Id))
}

func TestUpdateNote_RefetchPolicyReloadsCollections(t *testing.T) {
	f := setup(t, nil, store.WithSyncPolicy(store.SyncRefetch))
	ctx := context.Background()
	n := f.note(t, "T1", entity.NoNotebook)
	f.srv.ResetCalls()

	updated, err := f.store.UpdateNote(ctx, n.Id, store.NotePatch{Content: remote.String("new body")})
	require.NoError(t, err)

	assert.Equal(t, "new body", updated.Content)
	assert.Equal(t, 1, f.srv.Calls("notes.list"))
	assert.Equal(t, 1, f.srv.Calls("notebooks.list"))
}

func TestUpdateNote_RefetchFailureMergesResponse(t *testing.T) {
	f := setup(t, nil, store.WithSyncPolicy(store.SyncRefetch))
	ctx := context.Background()
	n := f.note(t, "T1", entity.NoNotebook)
	f.srv.FailOn("notes.list", "", errBoom)

	updated, err := f.store.UpdateNote(ctx, n.Id, store.NotePatch{Title: remote.String("T2")})
	require.NoError(t, err)

	assert.Equal(t, "T2", updated.Title)
	local, ok := f.store.Note(n.Id)
	require.True(t, ok)
	assert.Equal(t, "T2", local.Title)
}

func TestUpdateNote_RejectsBlankTitle(t *testing.T) {
	f := setup(t, nil)
	n := f.note(t, "T1", entity.NoNotebook)

	_, err := f.store.UpdateNote(context.Background(), n.Id, store.NotePatch{Title: remote.String(" ")})
	assert.ErrorIs(t, err, store.ErrTitleRequired)
	assert.Equal(t, 0, f.srv.Calls("notes.update"))
}

func TestUpdateNote_FailureLeavesNoteUntouched(t *testing.T) {
	f := setup(t, nil)
	n := f.note(t, "T1", entity.NoNotebook)
	f.srv.FailOn("notes.update", n.Id, errBoom)

	_, err := f.store.UpdateNote(context.Background(), n.Id, store.NotePatch{Title: remote.String("T2")})
	require.Error(t, err)

	got, ok := f.store.Note(n.Id)
	require.True(t, ok)
	assert.Equal(t, "T1", got.Title)
}

func TestToggleFavorite(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()
	n := f.note(t, "T1", entity.NoNotebook)

	on, err := f.store.ToggleFavorite(ctx, n.Id, true)
	require.NoError(t, err)
	assert.True(t, on.IsFavorite)

	again, err := f.store.ToggleFavorite(ctx, n.Id, true)
	require.NoError(t, err)
	assert.True(t, again.IsFavorite)

	off, err := f.store.ToggleFavorite(ctx, n.Id, false)
	require.NoError(t, err)
	assert.False(t, off.IsFavorite)
}

func TestToggleFavorite_UnknownNoteFails(t *testing.T) {
	f := setup(t, nil)

	_, err := f.store.ToggleFavorite(context.Background(), "note_missing", true)
	assert.ErrorIs(t, err, remote.ErrNotFound)
	assert.Empty(t, f.store.Notes())
}

func TestDeleteNote_RemovesLocally(t *testing.T) {
	f := setup(t, nil)
	n := f.note(t, "T1", entity.NoNotebook)

	require.NoError(t, f.store.DeleteNote(context.Background(), n.Id))

	_, ok := f.store.Note(n.Id)
	assert.False(t, ok)
	assert.Equal(t, 0, f.srv.NoteCount())
}

func TestDeleteNotebook_LeavesNotesAlone(t *testing.T) {
	f := setup(t, nil)
	nb := f.notebook(t, "Work")
	n := f.note(t, "T1", entity.SomeNotebook(nb.Id))

	require.NoError(t, f.store.DeleteNotebook(context.Background(), nb.Id))

	assert.Empty(t, f.store.Notebooks())
	got, ok := f.store.Note(n.Id)
	require.True(t, ok)
	assert.True(t, got.Notebook.Is(nb.Id))
}

func TestUpdateNotebook(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()
	nb := f.notebook(t, "Work")

	_, err := f.store.UpdateNotebook(ctx, nb.Id, "")
	assert.ErrorIs(t, err, store.ErrNameRequired)

	renamed, err := f.store.UpdateNotebook(ctx, nb.Id, "Office")
	require.NoError(t, err)
	assert.Equal(t, "Office", renamed.Name)
	got, _ := f.store.Notebook(nb.Id)
	assert.Equal(t, "Office", got.Name)
}

func TestFetchAll_FailedCollectionKeepsPreviousContents(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()
	f.note(t, "T1", entity.NoNotebook)
	f.store.FetchAll(ctx)
	require.Len(t, f.store.Notes(), 1)

	// Written behind the store's back.
	_, err := f.client.Notebooks().Create(ctx, f.userId, remote.NotebookFields{Name: remote.String("Elsewhere")})
	require.NoError(t, err)
	_, err = f.client.Notes().Create(ctx, f.userId, remote.NoteFields{Title: remote.String("T2")})
	require.NoError(t, err)

	f.srv.FailOn("notes.list", "", errBoom)
	f.store.FetchAll(ctx)

	assert.Len(t, f.store.Notes(), 1)
	assert.Len(t, f.store.Notebooks(), 1)
	assert.False(t, f.store.Loading())
}

func TestFetchAll_SignedOutIsNoop(t *testing.T) {
	srv := memory.NewServer()
	st := store.New(srv.NewClient(), store.OwnerFunc(func() string { return "" }), logger.NewNopLogger())

	st.FetchAll(context.Background())

	assert.Equal(t, 0, srv.Calls("notes.list"))
	assert.Equal(t, 0, srv.Calls("notebooks.list"))
}

func TestMutations_RequireSignedInUser(t *testing.T) {
	srv := memory.NewServer()
	st := store.New(srv.NewClient(), store.OwnerFunc(func() string { return "" }), logger.NewNopLogger())
	ctx := context.Background()

	_, err := st.CreateNote(ctx, store.NoteInput{Title: "T1"})
	assert.ErrorIs(t, err, store.ErrNotAuthenticated)
	_, err = st.CreateNotebook(ctx, "Work")
	assert.ErrorIs(t, err, store.ErrNotAuthenticated)
	_, err = st.TrashNotebook(ctx, "nb")
	assert.ErrorIs(t, err, store.ErrNotAuthenticated)
	_, err = st.EmptyTrash(ctx)
	assert.ErrorIs(t, err, store.ErrNotAuthenticated)
}

func TestClear_DropsEverything(t *testing.T) {
	f := setup(t, nil)
	f.notebook(t, "Work")
	f.note(t, "T1", entity.NoNotebook)

	f.store.Clear()

	assert.Empty(t, f.store.Notes())
	assert.Empty(t, f.store.Notebooks())
}

func TestChanges_PublishedAfterSuccessOnly(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()
	n := f.note(t, "T1", entity.NoNotebook)

	f.srv.FailOn("notes.update", n.Id, errBoom)
	_, err := f.store.TrashNote(ctx, n.Id)
	require.Error(t, err)
	f.srv.Heal()

	_, err = f.store.TrashNote(ctx, n.Id)
	require.NoError(t, err)

	assert.Equal(t, []store.ChangeKind{store.NoteCreated, store.NoteTrashed}, f.sink.kinds())
	assert.Equal(t, f.userId, f.sink.changes[1].UserId)
	assert.Equal(t, []string{n.Id}, f.sink.changes[1].EntityIds)
}
