package supabase

import (
	"context"

	"github.com/supabase-community/postgrest-go"

	"quiknote-be/internal/remote"
)

const returnRepresentation = "representation"

type noteCollection struct {
	c     *Client
	table string
}

func (n *noteCollection) Create(ctx context.Context, ownerId string, fields remote.NoteFields) (*remote.NoteRecord, error) {
	api, uid, err := n.c.authed(ctx)
	if err != nil {
		return nil, err
	}
	if ownerId != uid {
		return nil, remote.ErrUnauthorized
	}

	payload := notePayload(fields)
	payload[colUserId] = ownerId
	var rows []noteRow
	if _, err := api.From(n.table).Insert(payload, false, "", returnRepresentation, "").ExecuteTo(&rows); err != nil {
		return nil, err
	}
	return firstNote(rows)
}

func (n *noteCollection) ListByOwner(ctx context.Context, ownerId string) ([]*remote.NoteRecord, error) {
	api, _, err := n.c.authed(ctx)
	if err != nil {
		return nil, err
	}

	var rows []noteRow
	_, err = api.From(n.table).
		Select("*", "", false).
		Eq(colUserId, ownerId).
		Order(colCreatedAt, &postgrest.OrderOpts{Ascending: false}).
		ExecuteTo(&rows)
	if err != nil {
		return nil, err
	}

	records := make([]*remote.NoteRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.record())
	}
	return records, nil
}

func (n *noteCollection) Get(ctx context.Context, id string) (*remote.NoteRecord, error) {
	api, uid, err := n.c.authed(ctx)
	if err != nil {
		return nil, err
	}
	var rows []noteRow
	_, err = api.From(n.table).
		Select("*", "", false).
		Eq(colId, id).
		Eq(colUserId, uid).
		ExecuteTo(&rows)
	if err != nil {
		return nil, err
	}
	return firstNote(rows)
}

func (n *noteCollection) Update(ctx context.Context, id string, fields remote.NoteFields) (*remote.NoteRecord, error) {
	api, uid, err := n.c.authed(ctx)
	if err != nil {
		return nil, err
	}
	var rows []noteRow
	_, err = api.From(n.table).
		Update(notePayload(fields), returnRepresentation, "").
		Eq(colId, id).
		Eq(colUserId, uid).
		ExecuteTo(&rows)
	if err != nil {
		return nil, err
	}
	return firstNote(rows)
}

func (n *noteCollection) Delete(ctx context.Context, id string) error {
	api, uid, err := n.c.authed(ctx)
	if err != nil {
		return err
	}
	var rows []noteRow
	_, err = api.From(n.table).
		Delete(returnRepresentation, "").
		Eq(colId, id).
		Eq(colUserId, uid).
		ExecuteTo(&rows)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return remote.ErrNotFound
	}
	return nil
}

func firstNote(rows []noteRow) (*remote.NoteRecord, error) {
	if len(rows) == 0 {
		return nil, remote.ErrNotFound
	}
	return rows[0].record(), nil
}

type notebookCollection struct {
	c     *Client
	table string
}

func (n *notebookCollection) Create(ctx context.Context, ownerId string, fields remote.NotebookFields) (*remote.NotebookRecord, error) {
	api, uid, err := n.c.authed(ctx)
	if err != nil {
		return nil, err
	}
	if ownerId != uid {
		return nil, remote.ErrUnauthorized
	}

	payload := notebookPayload(fields)
	payload[colUserId] = ownerId
	var rows []notebookRow
	if _, err := api.From(n.table).Insert(payload, false, "", returnRepresentation, "").ExecuteTo(&rows); err != nil {
		return nil, err
	}
	return firstNotebook(rows)
}

func (n *notebookCollection) ListByOwner(ctx context.Context, ownerId string) ([]*remote.NotebookRecord, error) {
	api, _, err := n.c.authed(ctx)
	if err != nil {
		return nil, err
	}

	var rows []notebookRow
	_, err = api.From(n.table).
		Select("*", "", false).
		Eq(colUserId, ownerId).
		Order(colCreatedAt, &postgrest.OrderOpts{Ascending: false}).
		ExecuteTo(&rows)
	if err != nil {
		return nil, err
	}

	records := make([]*remote.NotebookRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.record())
	}
	return records, nil
}

func (n *notebookCollection) Get(ctx context.Context, id string) (*remote.NotebookRecord, error) {
	api, uid, err := n.c.authed(ctx)
	if err != nil {
		return nil, err
	}
	var rows []notebookRow
	_, err = api.From(n.table).
		Select("*", "", false).
		Eq(colId, id).
		Eq(colUserId, uid).
		ExecuteTo(&rows)
	if err != nil {
		return nil, err
	}
	return firstNotebook(rows)
}

func (n *notebookCollection) Update(ctx context.Context, id string, fields remote.NotebookFields) (*remote.NotebookRecord, error) {
	api, uid, err := n.c.authed(ctx)
	if err != nil {
		return nil, err
	}
	var rows []notebookRow
	_, err = api.From(n.table).
		Update(notebookPayload(fields), returnRepresentation, "").
		Eq(colId, id).
		Eq(colUserId, uid).
		ExecuteTo(&rows)
	if err != nil {
		return nil, err
	}
	return firstNotebook(rows)
}

func (n *notebookCollection) Delete(ctx context.Context, id string) error {
	api, uid, err := n.c.authed(ctx)
	if err != nil {
		return err
	}
	var rows []notebookRow
	_, err = api.From(n.table).
		Delete(returnRepresentation, "").
		Eq(colId, id).
		Eq(colUserId, uid).
		ExecuteTo(&rows)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return remote.ErrNotFound
	}
	return nil
}

func firstNotebook(rows []notebookRow) (*remote.NotebookRecord, error) {
	if len(rows) == 0 {
		return nil, remote.ErrNotFound
	}
	return rows[0].record(), nil
}
