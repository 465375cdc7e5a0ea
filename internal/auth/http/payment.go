package http

import (
	"net/http"
	"strconv"

	"github.com/tetgift/commerce/internal/auth/service"
	"github.com/tetgift/commerce/pkg/httpx"
	"github.com/tetgift/commerce/pkg/slogx"
)

type PaymentHandler struct {
	PaymentService *service.PaymentService
}

// HandleCheckoutURL builds a signed gateway redirect for the given payment.
// The client IP goes into the signed payload, so it is taken from the same
// place the rate limiter reads it.
func (h *PaymentHandler) HandleCheckoutURL(w http.ResponseWriter, r *http.Request) {
	log := slogx.FromContext(r.Context())

	paymentID := r.URL.Query().Get("paymentId")
	rawAmount := r.URL.Query().Get("amount")

	amount, err := strconv.ParseFloat(rawAmount, 64)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_amount")
		return
	}

	checkoutURL, err := h.PaymentService.CheckoutURL(r.Context(), paymentID, amount, httpx.IPKeyExtractor(r))
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteOK(w, http.StatusOK, "checkout_url_created", map[string]string{
		"paymentUrl": checkoutURL,
	})
}
