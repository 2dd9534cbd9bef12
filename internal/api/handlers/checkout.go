package handlers

import (
	"net/http"

	"github.com/stylemate/platform/internal/api/middleware"
	service "github.com/stylemate/platform/internal/services"
	"github.com/stylemate/platform/internal/utils/response"
)

type CheckoutHandler struct {
	checkoutService service.CheckoutService
}

func NewCheckoutHandler(checkoutService service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

func (h *CheckoutHandler) Checkout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := claimsOrFail(w, r)
		if !ok {
			return
		}

		summary, err := h.checkoutService.Checkout(r.Context(), claims.UserID)
		if err != nil {
			middleware.LoggerFromContext(r.Context()).Warn("Checkout failed", "error", err.Error())
			response.WriteGatewayError(w, err)
			return
		}

		middleware.LoggerFromContext(r.Context()).Info("Checkout completed",
			"total", summary.Total, "paymentIntentId", summary.PaymentIntentID)
		response.WriteJson(w, http.StatusOK, summary)
	}
}
