package store

import (
	"encoding/json"
	"strings"
	"time"

	"quiknote-be/internal/entity"
	"quiknote-be/internal/remote"
)

// NormalizeNotebookRef flattens the relationship value returned by the backend
// into a NotebookRef. It accepts a bare id, an object carrying "$id" or "id",
// a list of either (first element wins), raw JSON of any of those, or nil.
// Applying it to its own output returns the same value.
func NormalizeNotebookRef(raw interface{}) entity.NotebookRef {
	switch v := raw.(type) {
	case []interface{}:
		if len(v) == 0 {
			return entity.NoNotebook
		}
		return normalizeElement(v[0])
	case []string:
		if len(v) == 0 {
			return entity.NoNotebook
		}
		return normalizeElement(v[0])
	case []map[string]interface{}:
		if len(v) == 0 {
			return entity.NoNotebook
		}
		return normalizeElement(v[0])
	case json.RawMessage:
		return normalizeJSON(v)
	case []byte:
		return normalizeJSON(v)
	default:
		return normalizeElement(raw)
	}
}

func normalizeElement(raw interface{}) entity.NotebookRef {
	switch v := raw.(type) {
	case nil:
		return entity.NoNotebook
	case entity.NotebookRef:
		return v
	case *entity.NotebookRef:
		if v == nil {
			return entity.NoNotebook
		}
		return *v
	case string:
		return refFromString(v)
	case *string:
		if v == nil {
			return entity.NoNotebook
		}
		return refFromString(*v)
	case map[string]interface{}:
		for _, key := range []string{"$id", "id"} {
			if id, ok := v[key].(string); ok && id != "" {
				return refFromString(id)
			}
		}
		return entity.NoNotebook
	case map[string]string:
		for _, key := range []string{"$id", "id"} {
			if id := v[key]; id != "" {
				return refFromString(id)
			}
		}
		return entity.NoNotebook
	default:
		return entity.NoNotebook
	}
}

func normalizeJSON(data []byte) entity.NotebookRef {
	var decoded interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return entity.NoNotebook
	}
	return NormalizeNotebookRef(decoded)
}

func refFromString(id string) entity.NotebookRef {
	id = strings.TrimSpace(id)
	if id == "" {
		return entity.NoNotebook
	}
	return entity.SomeNotebook(id)
}

// noteFromRecord builds a complete note from a full read.
func noteFromRecord(rec *remote.NoteRecord) entity.Note {
	n := entity.Note{
		Id:        rec.Id,
		UserId:    rec.UserId,
		Notebook:  NormalizeNotebookRef(rec.Notebooks),
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
	if rec.Title != nil {
		n.Title = *rec.Title
	}
	if rec.Content != nil {
		n.Content = *rec.Content
	}
	if rec.IsFavorite != nil {
		n.IsFavorite = *rec.IsFavorite
	}
	if rec.IsTrashed != nil && *rec.IsTrashed {
		n.MarkTrashed(trashedAtOr(rec.TrashedAt, rec.UpdatedAt, &rec.CreatedAt))
	}
	return n
}

// mergeNote overwrites only the fields present in rec. With keepRelation the
// local notebook reference survives a response that does not carry one.
func mergeNote(local entity.Note, rec *remote.NoteRecord, keepRelation bool, now time.Time) entity.Note {
	merged := local
	if rec.UserId != "" {
		merged.UserId = rec.UserId
	}
	if rec.Title != nil {
		merged.Title = *rec.Title
	}
	if rec.Content != nil {
		merged.Content = *rec.Content
	}
	if rec.IsFavorite != nil {
		merged.IsFavorite = *rec.IsFavorite
	}
	if rec.IsTrashed != nil {
		if *rec.IsTrashed {
			fallback := now
			if local.TrashedAt != nil {
				fallback = *local.TrashedAt
			}
			merged.MarkTrashed(trashedAtOr(rec.TrashedAt, &fallback))
		} else {
			merged.MarkRestored()
		}
	}
	if rec.UpdatedAt != nil {
		merged.UpdatedAt = rec.UpdatedAt
	}

	ref := NormalizeNotebookRef(rec.Notebooks)
	if !ref.IsNone() || !keepRelation {
		merged.Notebook = ref
	}
	return merged
}

func notebookFromRecord(rec *remote.NotebookRecord) entity.Notebook {
	nb := entity.Notebook{
		Id:        rec.Id,
		UserId:    rec.UserId,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
	if rec.Name != nil {
		nb.Name = *rec.Name
	}
	if rec.IsTrashed != nil && *rec.IsTrashed {
		nb.MarkTrashed(trashedAtOr(rec.TrashedAt, rec.UpdatedAt, &rec.CreatedAt))
	}
	return nb
}

func mergeNotebook(local entity.Notebook, rec *remote.NotebookRecord, now time.Time) entity.Notebook {
	merged := local
	if rec.UserId != "" {
		merged.UserId = rec.UserId
	}
	if rec.Name != nil {
		merged.Name = *rec.Name
	}
	if rec.IsTrashed != nil {
		if *rec.IsTrashed {
			fallback := now
			if local.TrashedAt != nil {
				fallback = *local.TrashedAt
			}
			merged.MarkTrashed(trashedAtOr(rec.TrashedAt, &fallback))
		} else {
			merged.MarkRestored()
		}
	}
	if rec.UpdatedAt != nil {
		merged.UpdatedAt = rec.UpdatedAt
	}
	return merged
}

func trashedAtOr(candidates ...*time.Time) time.Time {
	for _, c := range candidates {
		if c != nil && !c.IsZero() {
			return *c
		}
	}
	return time.Time{}
}
