package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tetgift/commerce/internal/auth/service"
	"github.com/tetgift/commerce/pkg/httpx"
	"github.com/tetgift/commerce/pkg/slogx"
)

// refreshTokenHeader carries the refresh token for the refresh and logout
// endpoints. The access token stays in Authorization, so the two never
// collide.
const refreshTokenHeader = "x-refresh-token"

type AuthHandler struct {
	AuthService     *service.AuthenticationService
	RegisterService *service.RegistrationService
}

type registerRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	FullName        string `json:"fullName"`
}

func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	log := slogx.FromContext(r.Context())

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request_body")
		return
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "missing_required_fields")
		return
	}
	if req.Password != req.ConfirmPassword {
		httpx.WriteError(w, http.StatusBadRequest, service.ErrPasswordMismatch.Error())
		return
	}

	user, err := h.RegisterService.Register(r.Context(), service.RegisterParams{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteOK(w, http.StatusCreated, "registered", map[string]any{
		"userId":   user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	log := slogx.FromContext(r.Context())

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request_body")
		return
	}
	if req.Username == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "missing_required_fields")
		return
	}

	result, err := h.AuthService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteOK(w, http.StatusOK, "login_success", result)
}

func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	log := slogx.FromContext(r.Context())

	pair, err := h.AuthService.Refresh(r.Context(), r.Header.Get(refreshTokenHeader))
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteOK(w, http.StatusOK, "token_refreshed", pair)
}

func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	log := slogx.FromContext(r.Context())

	if err := h.AuthService.Logout(r.Context(), r.Header.Get(refreshTokenHeader)); err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteOK(w, http.StatusOK, "logged_out", nil)
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

func (h *AuthHandler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	log := slogx.FromContext(r.Context())

	var req forgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request_body")
		return
	}
	if req.Email == "" {
		httpx.WriteError(w, http.StatusBadRequest, "missing_required_fields")
		return
	}

	token, err := h.AuthService.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteOK(w, http.StatusOK, "reset_email_sent", map[string]string{
		"resetToken": token,
	})
}

type resetPasswordRequest struct {
	Token           string `json:"token"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (h *AuthHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	log := slogx.FromContext(r.Context())

	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request_body")
		return
	}
	if req.Token == "" || req.NewPassword == "" {
		httpx.WriteError(w, http.StatusBadRequest, "missing_required_fields")
		return
	}

	err := h.AuthService.ResetPassword(r.Context(), req.Token, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteOK(w, http.StatusOK, "password_reset", nil)
}

type changePasswordRequest struct {
	OldPassword     string `json:"oldPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (h *AuthHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	log := slogx.FromContext(r.Context())

	username := httpx.UsernameFromContext(r.Context())
	if username == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request_body")
		return
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		httpx.WriteError(w, http.StatusBadRequest, "missing_required_fields")
		return
	}

	err := h.AuthService.ChangePassword(r.Context(), username, req.OldPassword, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteOK(w, http.StatusOK, "password_changed", nil)
}

// writeServiceError maps service sentinel errors onto HTTP status codes.
// Anything unmapped is logged and surfaced as a bare 500 so internals
// never leak to the client.
func writeServiceError(w http.ResponseWriter, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken):
		httpx.WriteError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrAccountNotActivated):
		httpx.WriteError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrOtpNotFound):
		httpx.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrEmailTaken):
		httpx.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrMissingRefreshToken),
		errors.Is(err, service.ErrPasswordMismatch),
		errors.Is(err, service.ErrIncorrectOldPassword),
		errors.Is(err, service.ErrInvalidOtp),
		errors.Is(err, service.ErrMissingPaymentID),
		errors.Is(err, service.ErrInvalidAmount):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		log.Error("unhandled service error", slog.Any("err", err))
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error")
	}
}
