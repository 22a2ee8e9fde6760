package service

import (
	"context"
	"strings"

	"quiknote-be/internal/dto"
	"quiknote-be/internal/entity"
	"quiknote-be/internal/session"
	"quiknote-be/internal/workspace"
)

// WorkspaceRegistry is the part of workspace.Registry the services use.
type WorkspaceRegistry interface {
	Login(ctx context.Context, email, password string) (*workspace.Workspace, error)
	Register(ctx context.Context, email, password, name string) (*workspace.Workspace, error)
	Get(ctx context.Context, id string) (*workspace.Workspace, error)
	Logout(ctx context.Context, id string) error
	Each(fn func(*workspace.Workspace))
}

func toProfileResponse(sess *session.Session) *dto.ProfileResponse {
	p := sess.Profile()
	if p == nil {
		return nil
	}
	return &dto.ProfileResponse{
		Id:        p.Id,
		Name:      p.Name,
		Email:     p.Email,
		Username:  p.Username(),
		Phone:     p.Phone(),
		FullName:  p.Pref(entity.PrefFullName),
		AvatarURL: sess.AvatarURL(),
	}
}

// notebookRef turns an optional request id into a relation; blank is None.
func notebookRef(id *string) entity.NotebookRef {
	if id == nil || strings.TrimSpace(*id) == "" {
		return entity.NoNotebook
	}
	return entity.SomeNotebook(strings.TrimSpace(*id))
}
