package http

import (
	"encoding/json"
	"net/http"

	"github.com/tetgift/commerce/internal/auth/service"
	"github.com/tetgift/commerce/pkg/httpx"
	"github.com/tetgift/commerce/pkg/slogx"
)

type OtpHandler struct {
	OtpService *service.OtpService
}

type verifyOtpRequest struct {
	Email string `json:"email"`
	Otp   string `json:"otp"`
}

func (h *OtpHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	log := slogx.FromContext(r.Context())

	var req verifyOtpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request_body")
		return
	}
	if req.Email == "" || req.Otp == "" {
		httpx.WriteError(w, http.StatusBadRequest, "missing_required_fields")
		return
	}

	if err := h.OtpService.Verify(r.Context(), req.Email, req.Otp); err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteOK(w, http.StatusOK, "account_verified", nil)
}

type resendOtpRequest struct {
	Email string `json:"email"`
}

func (h *OtpHandler) HandleResend(w http.ResponseWriter, r *http.Request) {
	log := slogx.FromContext(r.Context())

	var req resendOtpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request_body")
		return
	}
	if req.Email == "" {
		httpx.WriteError(w, http.StatusBadRequest, "missing_required_fields")
		return
	}

	if err := h.OtpService.Resend(r.Context(), req.Email); err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteOK(w, http.StatusOK, "otp_sent", nil)
}
