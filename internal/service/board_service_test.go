package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiknote-be/internal/board"
	"quiknote-be/internal/dto"
	"quiknote-be/internal/store"
)

func TestBoard_LayoutPlacesNewCards(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	first := f.note(t, "first", nil)
	second := f.note(t, "second", nil)

	cards, err := f.board.Layout(ctx, f.sid)
	require.NoError(t, err)
	require.Len(t, cards, 2)

	// Older notes sit lower in the stack.
	assert.Equal(t, first.Id, cards[0].NoteId)
	assert.Equal(t, second.Id, cards[1].NoteId)
	assert.Less(t, cards[0].ZIndex, cards[1].ZIndex)
	for _, c := range cards {
		assert.Equal(t, 50.0, c.X)
		assert.Equal(t, 50.0, c.Y)
		assert.Equal(t, board.DefaultColor, c.Color)
		assert.Equal(t, string(board.ToneDark), c.TextTone)
	}

	// A second layout reuses the stored placements.
	again, err := f.board.Layout(ctx, f.sid)
	require.NoError(t, err)
	assert.Equal(t, cards, again)
}

func TestBoard_MoveIsClamped(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	n := f.note(t, "card", nil)

	card, err := f.board.Move(ctx, f.sid, &dto.MoveCardRequest{NoteId: n.Id, DX: 5000, DY: -5000, Width: 800, Height: 600})
	require.NoError(t, err)
	assert.Equal(t, 800.0-board.CardWidth, card.X)
	assert.Equal(t, 0.0, card.Y)

	card, err = f.board.Move(ctx, f.sid, &dto.MoveCardRequest{NoteId: n.Id, DX: -100, DY: 30, Width: 800, Height: 600})
	require.NoError(t, err)
	assert.Equal(t, 800.0-board.CardWidth-100, card.X)
	assert.Equal(t, 30.0, card.Y)
}

func TestBoard_BringToFrontAndPaint(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	bottom := f.note(t, "bottom", nil)
	f.note(t, "top", nil)

	cards, err := f.board.Layout(ctx, f.sid)
	require.NoError(t, err)
	topZ := cards[len(cards)-1].ZIndex

	front, err := f.board.BringToFront(ctx, f.sid, bottom.Id)
	require.NoError(t, err)
	assert.Equal(t, topZ+1, front.ZIndex)

	// Already on top: unchanged.
	front, err = f.board.BringToFront(ctx, f.sid, bottom.Id)
	require.NoError(t, err)
	assert.Equal(t, topZ+1, front.ZIndex)

	painted, err := f.board.Paint(ctx, f.sid, &dto.PaintCardRequest{NoteId: bottom.Id, Color: "#000"})
	require.NoError(t, err)
	assert.Equal(t, "#000000", painted.Color)
	assert.Equal(t, string(board.ToneLight), painted.TextTone)

	_, err = f.board.Paint(ctx, f.sid, &dto.PaintCardRequest{NoteId: bottom.Id, Color: "blue"})
	assert.ErrorIs(t, err, board.ErrInvalidColor)
}

func TestBoard_TrashedNotesAreNotCards(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	n := f.note(t, "card", nil)
	_, err := f.notes.Trash(ctx, f.sid, n.Id)
	require.NoError(t, err)

	cards, err := f.board.Layout(ctx, f.sid)
	require.NoError(t, err)
	assert.Empty(t, cards)

	_, err = f.board.Move(ctx, f.sid, &dto.MoveCardRequest{NoteId: n.Id, Width: 800, Height: 600})
	assert.ErrorIs(t, err, store.ErrNoteNotFound)
}
