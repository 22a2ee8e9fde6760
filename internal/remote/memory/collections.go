package memory

import (
	"context"

	"quiknote-be/internal/remote"
)

// ==================== NOTES ====================

type noteCollection struct{ c *Client }

func (n *noteCollection) Create(ctx context.Context, ownerId string, fields remote.NoteFields) (*remote.NoteRecord, error) {
	srv := n.c.server
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if err := srv.enter("notes.create", ""); err != nil {
		return nil, err
	}
	uid, err := n.c.userId()
	if err != nil {
		return nil, err
	}
	if ownerId != uid {
		return nil, remote.ErrUnauthorized
	}

	row := &noteRow{
		id:        srv.nextId("note"),
		userId:    ownerId,
		createdAt: srv.now(),
	}
	applyNoteFields(row, fields)
	srv.notes[row.id] = row
	return srv.noteRecord(row, true), nil
}

func (n *noteCollection) ListByOwner(ctx context.Context, ownerId string) ([]*remote.NoteRecord, error) {
	srv := n.c.server
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if err := srv.enter("notes.list", ownerId); err != nil {
		return nil, err
	}
	uid, err := n.c.userId()
	if err != nil {
		return nil, err
	}
	if ownerId != uid {
		return []*remote.NoteRecord{}, nil
	}

	rows := make([]*noteRow, 0)
	for _, row := range srv.notes {
		if row.userId == ownerId {
			rows = append(rows, row)
		}
	}
	sortedNotes(rows)

	result := make([]*remote.NoteRecord, 0, len(rows))
	for _, row := range rows {
		result = append(result, srv.noteRecord(row, true))
	}
	return result, nil
}

func (n *noteCollection) Get(ctx context.Context, id string) (*remote.NoteRecord, error) {
	srv := n.c.server
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if err := srv.enter("notes.get", id); err != nil {
		return nil, err
	}
	row, err := n.owned(id)
	if err != nil {
		return nil, err
	}
	return srv.noteRecord(row, true), nil
}

func (n *noteCollection) Update(ctx context.Context, id string, fields remote.NoteFields) (*remote.NoteRecord, error) {
	srv := n.c.server
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if err := srv.enter("notes.update", id); err != nil {
		return nil, err
	}
	row, err := n.owned(id)
	if err != nil {
		return nil, err
	}
	applyNoteFields(row, fields)
	now := srv.now()
	row.updatedAt = &now
	return srv.noteRecord(row, srv.echoRelations), nil
}

func (n *noteCollection) Delete(ctx context.Context, id string) error {
	srv := n.c.server
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if err := srv.enter("notes.delete", id); err != nil {
		return err
	}
	if _, err := n.owned(id); err != nil {
		return err
	}
	delete(srv.notes, id)
	return nil
}

// owned returns the row when it belongs to the signed-in user. Caller holds mu.
func (n *noteCollection) owned(id string) (*noteRow, error) {
	uid, err := n.c.userId()
	if err != nil {
		return nil, err
	}
	row, ok := n.c.server.notes[id]
	if !ok || row.userId != uid {
		return nil, remote.ErrNotFound
	}
	return row, nil
}

func applyNoteFields(row *noteRow, f remote.NoteFields) {
	if f.Title != nil {
		row.title = *f.Title
	}
	if f.Content != nil {
		row.content = *f.Content
	}
	if f.Notebook != nil {
		id, _ := f.Notebook.ID()
		row.notebookId = id
	}
	if f.IsFavorite != nil {
		row.isFavorite = *f.IsFavorite
	}
	if f.IsTrashed != nil {
		row.isTrashed = *f.IsTrashed
	}
	if f.TrashedAt != nil {
		row.trashedAt = copyTime(f.TrashedAt)
	}
	if f.ClearTrashedAt {
		row.trashedAt = nil
	}
}

// ==================== NOTEBOOKS ====================

type notebookCollection struct{ c *Client }

func (n *notebookCollection) Create(ctx context.Context, ownerId string, fields remote.NotebookFields) (*remote.NotebookRecord, error) {
	srv := n.c.server
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if err := srv.enter("notebooks.create", ""); err != nil {
		return nil, err
	}
	uid, err := n.c.userId()
	if err != nil {
		return nil, err
	}
	if ownerId != uid {
		return nil, remote.ErrUnauthorized
	}

	row := &notebookRow{
		id:        srv.nextId("notebook"),
		userId:    ownerId,
		createdAt: srv.now(),
	}
	applyNotebookFields(row, fields)
	srv.notebooks[row.id] = row
	return notebookRecord(row), nil
}

func (n *notebookCollection) ListByOwner(ctx context.Context, ownerId string) ([]*remote.NotebookRecord, error) {
	srv := n.c.server
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if err := srv.enter("notebooks.list", ownerId); err != nil {
		return nil, err
	}
	uid, err := n.c.userId()
	if err != nil {
		return nil, err
	}
	if ownerId != uid {
		return []*remote.NotebookRecord{}, nil
	}

	rows := make([]*notebookRow, 0)
	for _, row := range srv.notebooks {
		if row.userId == ownerId {
			rows = append(rows, row)
		}
	}
	sortedNotebooks(rows)

	result := make([]*remote.NotebookRecord, 0, len(rows))
	for _, row := range rows {
		result = append(result, notebookRecord(row))
	}
	return result, nil
}

func (n *notebookCollection) Get(ctx context.Context, id string) (*remote.NotebookRecord, error) {
	srv := n.c.server
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if err := srv.enter("notebooks.get", id); err != nil {
		return nil, err
	}
	row, err := n.owned(id)
	if err != nil {
		return nil, err
	}
	return notebookRecord(row), nil
}

func (n *notebookCollection) Update(ctx context.Context, id string, fields remote.NotebookFields) (*remote.NotebookRecord, error) {
	srv := n.c.server
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if err := srv.enter("notebooks.update", id); err != nil {
		return nil, err
	}
	row, err := n.owned(id)
	if err != nil {
		return nil, err
	}
	applyNotebookFields(row, fields)
	now := srv.now()
	row.updatedAt = &now
	return notebookRecord(row), nil
}

func (n *notebookCollection) Delete(ctx context.Context, id string) error {
	srv := n.c.server
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if err := srv.enter("notebooks.delete", id); err != nil {
		return err
	}
	if _, err := n.owned(id); err != nil {
		return err
	}
	delete(srv.notebooks, id)
	return nil
}

func (n *notebookCollection) owned(id string) (*notebookRow, error) {
	uid, err := n.c.userId()
	if err != nil {
		return nil, err
	}
	row, ok := n.c.server.notebooks[id]
	if !ok || row.userId != uid {
		return nil, remote.ErrNotFound
	}
	return row, nil
}

func applyNotebookFields(row *notebookRow, f remote.NotebookFields) {
	if f.Name != nil {
		row.name = *f.Name
	}
	if f.IsTrashed != nil {
		row.isTrashed = *f.IsTrashed
	}
	if f.TrashedAt != nil {
		row.trashedAt = copyTime(f.TrashedAt)
	}
	if f.ClearTrashedAt {
		row.trashedAt = nil
	}
}
