package web

import (
	"errors"
	"net/http"

	"github.com/listenupapp/bookclub-server/internal/auth"
	domainerrors "github.com/listenupapp/bookclub-server/internal/errors"
	"github.com/listenupapp/bookclub-server/internal/service"
)

// loginForm re-populates the login form after a failed attempt.
type loginForm struct {
	Email string
}

// GET /register
func (s *Server) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "register.html", "Register", nil)
}

// POST /register
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	_, err := s.services.Auth.Register(r.Context(), service.RegisterRequest{
		Username: r.PostFormValue("username"),
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	})
	if err != nil {
		s.handleError(w, r, err, "/register")
		return
	}
	s.redirect(w, r, "/login", FlashSuccess, "Account created successfully!")
}

// GET /login
func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "login.html", "Log In", loginForm{})
}

// POST /login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	email := r.PostFormValue("email")
	resp, err := s.services.Auth.Login(r.Context(), service.LoginRequest{
		Email:    email,
		Password: r.PostFormValue("password"),
	})
	if err != nil {
		var domainErr *domainerrors.Error
		if errors.As(err, &domainErr) && domainErr.Code == domainerrors.CodeInvalidCredentials {
			s.renderWithFlash(w, r, http.StatusUnauthorized, "login.html", "Log In", loginForm{Email: email},
				&Flash{Category: FlashDanger, Message: domainErr.Message})
			return
		}
		s.handleError(w, r, err, "/login")
		return
	}

	s.setSessionCookie(w, resp.Token, resp.ExpiresAt)
	s.redirect(w, r, "/", FlashSuccess, "Logged in successfully!")
}

// GET /logout
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.services.Auth.Logout(r.Context(), auth.IdentityFromContext(r.Context())); err != nil {
		s.logger.Warn("logout failed", "error", err)
	}
	s.clearSessionCookie(w)
	s.redirect(w, r, "/login", FlashInfo, "You have been logged out.")
}

// GET /profile
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.services.Profiles.GetProfile(r.Context(), auth.IdentityFromContext(r.Context()))
	if err != nil {
		s.handleError(w, r, err, "")
		return
	}
	s.render(w, r, http.StatusOK, "profile.html", "Profile", profile)
}
