package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/bookclub-server/internal/auth"
	"github.com/listenupapp/bookclub-server/internal/domain"
	"github.com/listenupapp/bookclub-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "register",
		Method:        http.MethodPost,
		Path:          "/auth/register",
		Summary:       "Register new user",
		Description:   "Creates an account. Usernames and emails are unique ignoring case.",
		Tags:          []string{"Authentication"},
		DefaultStatus: http.StatusCreated,
	}, s.handleRegister)

	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/auth/login",
		Summary:     "User login",
		Description: "Authenticates a user and returns a session token",
		Tags:        []string{"Authentication"},
	}, s.handleLogin)

	huma.Register(s.api, huma.Operation{
		OperationID:   "logout",
		Method:        http.MethodPost,
		Path:          "/auth/logout",
		Summary:       "Logout",
		Description:   "Revokes the current session. Succeeds without a session too.",
		Tags:          []string{"Authentication"},
		DefaultStatus: http.StatusNoContent,
		Security:      bearerAuth,
	}, s.handleLogout)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-current-user",
		Method:      http.MethodGet,
		Path:        "/auth/me",
		Summary:     "Current user",
		Description: "Returns the signed-in user",
		Tags:        []string{"Authentication"},
		Security:    bearerAuth,
	}, s.handleMe)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-profile",
		Method:      http.MethodGet,
		Path:        "/profile",
		Summary:     "Profile",
		Description: "Returns the signed-in user with their books and activity counts",
		Tags:        []string{"Authentication"},
		Security:    bearerAuth,
	}, s.handleProfile)
}

// === DTOs ===

// RegisterInput wraps the register request for Huma.
type RegisterInput struct {
	Body struct {
		Username string `json:"username" maxLength:"250" doc:"Display name, unique ignoring case"`
		Email    string `json:"email" maxLength:"250" doc:"Email address, unique ignoring case"`
		Password string `json:"password" maxLength:"1024" doc:"Password"`
	}
}

// UserOutput wraps a user for Huma.
type UserOutput struct {
	Body *domain.User
}

// LoginInput wraps the login request for Huma.
type LoginInput struct {
	Body struct {
		Email    string `json:"email" doc:"User email"`
		Password string `json:"password" doc:"User password"`
	}
}

// AuthOutput wraps the login response for Huma.
type AuthOutput struct {
	Body *service.AuthResponse
}

// ProfileOutput wraps a profile for Huma.
type ProfileOutput struct {
	Body *domain.Profile
}

// === Handlers ===

func (s *Server) handleRegister(ctx context.Context, input *RegisterInput) (*UserOutput, error) {
	user, err := s.services.Auth.Register(ctx, service.RegisterRequest{
		Username: input.Body.Username,
		Email:    input.Body.Email,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, s.toAPIError(err)
	}
	return &UserOutput{Body: user}, nil
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*AuthOutput, error) {
	resp, err := s.services.Auth.Login(ctx, service.LoginRequest{
		Email:    input.Body.Email,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, s.toAPIError(err)
	}
	return &AuthOutput{Body: resp}, nil
}

func (s *Server) handleLogout(ctx context.Context, _ *struct{}) (*struct{}, error) {
	if err := s.services.Auth.Logout(ctx, auth.IdentityFromContext(ctx)); err != nil {
		return nil, s.toAPIError(err)
	}
	return nil, nil
}

func (s *Server) handleMe(ctx context.Context, _ *struct{}) (*UserOutput, error) {
	user, err := s.services.Auth.Me(ctx, auth.IdentityFromContext(ctx))
	if err != nil {
		return nil, s.toAPIError(err)
	}
	return &UserOutput{Body: user}, nil
}

func (s *Server) handleProfile(ctx context.Context, _ *struct{}) (*ProfileOutput, error) {
	profile, err := s.services.Profiles.GetProfile(ctx, auth.IdentityFromContext(ctx))
	if err != nil {
		return nil, s.toAPIError(err)
	}
	return &ProfileOutput{Body: profile}, nil
}
