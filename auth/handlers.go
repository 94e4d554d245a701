package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/plannerhq/planner/core/binder"
	"github.com/plannerhq/planner/core/cookie"
	"github.com/plannerhq/planner/core/handler"
	"github.com/plannerhq/planner/core/response"
	"github.com/plannerhq/planner/middleware"
	"github.com/plannerhq/planner/user"
)

// Handler serves the /api/auth surface.
type Handler struct {
	svc     *Service
	cookies *cookie.Manager
}

// NewHandler creates the authentication handler.
func NewHandler(svc *Service, cookies *cookie.Manager) *Handler {
	return &Handler{svc: svc, cookies: cookies}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// tokenResponse is the success shape for login, register and refresh.
// ExpiresIn is in milliseconds, matching the TTL configuration unit.
type tokenResponse struct {
	Token     string `json:"token"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	ExpiresIn int64  `json:"expiresIn"`
}

func (h *Handler) tokenResponse(u user.User, token string) tokenResponse {
	return tokenResponse{
		Token:     token,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		ExpiresIn: h.svc.Tokens().AccessTTL().Milliseconds(),
	}
}

// setAuthCookie writes the session cookie alongside the JSON body.
func (h *Handler) setAuthCookie(resp handler.Response, token string) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		if err := h.cookies.Set(w, middleware.AuthCookieName, token,
			cookie.WithHTTPOnly(true),
			cookie.WithSameSite(http.SameSiteLaxMode),
			cookie.WithMaxAge(int(h.svc.Tokens().AccessTTL().Seconds())),
		); err != nil {
			return err
		}
		return resp(w, r)
	}
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(ctx *handler.Context) handler.Response {
	var req credentialsRequest
	if err := binder.JSON(ctx.Request(), &req); err != nil {
		return response.Error(response.ErrBadRequest.WithError(err))
	}

	u, token, err := h.svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return response.Error(response.ErrUnauthorized.WithError(err))
		}
		return response.Error(err)
	}

	return h.setAuthCookie(response.JSON(h.tokenResponse(u, token)), token)
}

// Register handles POST /api/auth/register.
func (h *Handler) Register(ctx *handler.Context) handler.Response {
	var req registerRequest
	if err := binder.JSON(ctx.Request(), &req); err != nil {
		return response.Error(response.ErrBadRequest.WithError(err))
	}

	u, token, err := h.svc.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		return response.Error(projectRegisterError(err))
	}

	return h.setAuthCookie(
		response.JSONWithStatus(h.tokenResponse(u, token), http.StatusCreated),
		token,
	)
}

// projectRegisterError maps registration failures to their wire shapes:
// validation messages pass through as 400, uniqueness conflicts become 409.
func projectRegisterError(err error) error {
	switch {
	case errors.Is(err, user.ErrUsernameTaken), errors.Is(err, user.ErrEmailTaken):
		return response.ErrConflict.WithMessage(err.Error()).WithError(err)
	case errors.Is(err, user.ErrInvalidUsername),
		errors.Is(err, user.ErrInvalidEmail),
		errors.Is(err, ErrInvalidPassword):
		return response.ErrBadRequest.WithMessage(err.Error()).WithError(err)
	default:
		return err
	}
}

// Refresh handles POST /api/auth/refresh. The presented token is taken from
// the same locations the authentication middleware searches.
func (h *Handler) Refresh(ctx *handler.Context) handler.Response {
	token := bearerToken(ctx.Request())
	if token == "" {
		return response.Error(response.ErrUnauthorized)
	}

	u, fresh, err := h.svc.Refresh(ctx, token)
	if err != nil {
		return response.Error(response.ErrUnauthorized.WithError(err))
	}

	return h.setAuthCookie(response.JSON(h.tokenResponse(u, fresh)), fresh)
}

// Logout handles POST /api/auth/logout.
func (h *Handler) Logout(ctx *handler.Context) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		h.cookies.Delete(w, middleware.AuthCookieName)
		return response.NoContent()(w, r)
	}
}

// csrfTokenResponse mirrors the shape SPAs expect from the bootstrap
// endpoint: the masked token plus where to echo it.
type csrfTokenResponse struct {
	Token         string `json:"token"`
	HeaderName    string `json:"headerName"`
	ParameterName string `json:"parameterName"`
}

// CSRFToken handles GET /api/auth/csrf-token. The CSRF middleware delivers
// the cookie; the body carries only the masked form.
func (h *Handler) CSRFToken(ctx *handler.Context) handler.Response {
	token, ok := middleware.CSRFToken(ctx)
	if !ok {
		return response.Error(response.ErrInternalServerError)
	}
	return response.JSON(csrfTokenResponse{
		Token:         middleware.MaskCSRFToken(token),
		HeaderName:    middleware.CSRFHeaderName,
		ParameterName: middleware.CSRFFormField,
	})
}

// bearerToken extracts the session token from the auth cookie, falling back
// to the Authorization header.
func bearerToken(r *http.Request) string {
	if c, err := r.Cookie(middleware.AuthCookieName); err == nil {
		if v := strings.TrimSpace(c.Value); v != "" {
			return v
		}
	}
	if authz := r.Header.Get("Authorization"); strings.HasPrefix(authz, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
	}
	return ""
}
