package web

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	domainerrors "github.com/listenupapp/bookclub-server/internal/errors"
	"github.com/listenupapp/bookclub-server/internal/http/response"
)

// handleError turns a service error into a notice plus redirect. back is the
// form to return to for CONFLICT and VALIDATION. Anything uncoded is a 500
// for this request only. Clients asking for JSON get the error envelope instead.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error, back string) {
	if wantsJSON(r) {
		response.HandleError(w, err, s.logger)
		return
	}

	var domainErr *domainerrors.Error
	if !errors.As(err, &domainErr) || domainErr.Code == domainerrors.CodeInternal {
		s.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		s.render(w, r, http.StatusInternalServerError, "error.html", "Error", nil)
		return
	}

	switch domainErr.Code {
	case domainerrors.CodeUnauthenticated:
		s.redirect(w, r, "/login", FlashDanger, domainErr.Message)
	case domainerrors.CodeForbidden, domainerrors.CodeNotFound:
		s.redirect(w, r, "/", FlashDanger, domainErr.Message)
	default:
		if back == "" {
			back = "/"
		}
		s.redirect(w, r, back, FlashDanger, domainErr.Message)
	}
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// sameSiteReferer returns the referring path when it points back at this
// host, or "" so the caller falls back to home.
func sameSiteReferer(r *http.Request) string {
	u, err := url.Parse(r.Referer())
	if err != nil || u.Host != r.Host || u.Path == "" {
		return ""
	}
	return u.Path
}
