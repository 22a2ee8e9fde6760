package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiknote-be/internal/entity"
	"quiknote-be/internal/remote/memory"
	"quiknote-be/internal/store"
)

func TestScenario_FavoriteNoteInNotebook(t *testing.T) {
	shapes := map[string]memory.RelationShape{
		"scalar":      memory.ShapeScalar,
		"object":      memory.ShapeObject,
		"list":        memory.ShapeList,
		"object list": memory.ShapeObjectList,
	}

	for name, shape := range shapes {
		t.Run(name, func(t *testing.T) {
			f := setup(t, []memory.Option{memory.WithRelationShape(shape)})
			ctx := context.Background()

			work, err := f.store.CreateNotebook(ctx, "Work")
			require.NoError(t, err)
			note, err := f.store.CreateNote(ctx, store.NoteInput{
				Title:    "T1",
				Content:  "C1",
				Notebook: entity.SomeNotebook(work.Id),
			})
			require.NoError(t, err)
			_, err = f.store.ToggleFavorite(ctx, note.Id, true)
			require.NoError(t, err)

			favorites := f.store.FavoriteNotes()
			require.Len(t, favorites, 1)
			assert.Equal(t, "T1", favorites[0].Title)
			assert.True(t, favorites[0].Notebook.Is(work.Id))

			f.store.FetchAll(ctx)
			favorites = f.store.FavoriteNotes()
			require.Len(t, favorites, 1)
			assert.True(t, favorites[0].Notebook.Is(work.Id))
		})
	}
}
