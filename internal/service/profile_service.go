package service

import (
	"context"

	"quiknote-be/internal/dto"
	"quiknote-be/internal/session"
)

type IProfileService interface {
	Show(ctx context.Context, sessionId string) (*dto.ProfileResponse, error)
	Update(ctx context.Context, sessionId string, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error)
	UploadAvatar(ctx context.Context, sessionId string, upload session.Upload) (*dto.ProfileResponse, error)
}

type profileService struct {
	registry WorkspaceRegistry
}

func NewProfileService(registry WorkspaceRegistry) IProfileService {
	return &profileService{registry: registry}
}

func (s *profileService) session(ctx context.Context, sessionId string) (*session.Session, error) {
	ws, err := s.registry.Get(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	if ws.Session.Profile() == nil {
		return nil, session.ErrNotAuthenticated
	}
	return ws.Session, nil
}

func (s *profileService) Show(ctx context.Context, sessionId string) (*dto.ProfileResponse, error) {
	sess, err := s.session(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	return toProfileResponse(sess), nil
}

func (s *profileService) Update(ctx context.Context, sessionId string, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	sess, err := s.session(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	if _, err := sess.UpdateProfile(ctx, session.ProfileChanges{
		Name:            req.Name,
		Email:           req.Email,
		Username:        req.Username,
		Phone:           req.Phone,
		FullName:        req.FullName,
		CurrentPassword: req.CurrentPassword,
	}); err != nil {
		return nil, err
	}
	return toProfileResponse(sess), nil
}

func (s *profileService) UploadAvatar(ctx context.Context, sessionId string, upload session.Upload) (*dto.ProfileResponse, error) {
	sess, err := s.session(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	if _, err := sess.UploadAvatar(ctx, upload); err != nil {
		return nil, err
	}
	return toProfileResponse(sess), nil
}
