package service

import (
	"context"
	"errors"

	"quiknote-be/internal/dto"
	"quiknote-be/internal/pkg/logger"
	"quiknote-be/internal/pkg/serverutils"
	"quiknote-be/internal/workspace"
)

type IAuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Logout(ctx context.Context, sessionId string) error
	Status(ctx context.Context, sessionId string) (*dto.StatusResponse, error)
}

type authService struct {
	registry WorkspaceRegistry
	issuer   *serverutils.TokenIssuer
	log      logger.ILogger
}

func NewAuthService(registry WorkspaceRegistry, issuer *serverutils.TokenIssuer, log logger.ILogger) IAuthService {
	return &authService{registry: registry, issuer: issuer, log: log}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	ws, err := s.registry.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return s.issue(ws)
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	ws, err := s.registry.Register(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		return nil, err
	}
	return s.issue(ws)
}

func (s *authService) issue(ws *workspace.Workspace) (*dto.AuthResponse, error) {
	token, exp, err := s.issuer.Issue(ws.Id, ws.UserID())
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{
		Token:     token,
		ExpiresAt: exp,
		Profile:   toProfileResponse(ws.Session),
	}, nil
}

// Logout reports a backend failure but the workspace is gone either way.
func (s *authService) Logout(ctx context.Context, sessionId string) error {
	err := s.registry.Logout(ctx, sessionId)
	if errors.Is(err, workspace.ErrSessionExpired) {
		return nil
	}
	if err != nil {
		s.log.Warn("AuthService", "Backend logout failed, local session cleared", map[string]interface{}{
			"session_id": sessionId,
			"error":      err,
		})
	}
	return err
}

// Status re-checks the backend session. An expired workspace is reported as
// signed out rather than as an error.
func (s *authService) Status(ctx context.Context, sessionId string) (*dto.StatusResponse, error) {
	ws, err := s.registry.Get(ctx, sessionId)
	if errors.Is(err, workspace.ErrSessionExpired) {
		return &dto.StatusResponse{Authenticated: false}, nil
	}
	if err != nil {
		return nil, err
	}
	if ws.Session.CheckStatus(ctx) == nil {
		return &dto.StatusResponse{Authenticated: false}, nil
	}
	return &dto.StatusResponse{Authenticated: true, Profile: toProfileResponse(ws.Session)}, nil
}
