package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/stylemate/platform/internal/api/middleware"
	"github.com/stylemate/platform/internal/errors"
	"github.com/stylemate/platform/internal/models"
	service "github.com/stylemate/platform/internal/services"
	"github.com/stylemate/platform/internal/utils"
	"github.com/stylemate/platform/internal/utils/response"
)

type CartHandler struct {
	cartService service.CartService
	validator   *validator.Validate
}

func NewCartHandler(cartService service.CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		validator:   validator.New(),
	}
}

// GetCart serves GET /customer/cart with the bare { "cart": { "items": [...] } }
// gateway shape.
func (h *CartHandler) GetCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := claimsOrFail(w, r)
		if !ok {
			return
		}

		cart, err := h.cartService.GetCart(r.Context(), claims.UserID)
		if err != nil {
			middleware.LoggerFromContext(r.Context()).Error("Cart lookup failed", "error", err.Error())
			response.WriteGatewayError(w, err)
			return
		}

		response.WriteJson(w, http.StatusOK, models.CartResponse{Cart: *cart})
	}
}

func (h *CartHandler) AddItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := claimsOrFail(w, r)
		if !ok {
			return
		}

		var req models.AddCartItemRequest
		if err := utils.DecodeJSONBody(r, &req); err != nil {
			response.WriteGatewayError(w, errors.BadRequestError(err.Error()))
			return
		}

		if err := utils.ValidateStruct(h.validator, req); err != nil {
			response.WriteGatewayError(w, errors.ValidationError("productId and quantity are required"))
			return
		}

		item, err := h.cartService.AddItem(r.Context(), claims.UserID, &req)
		if err != nil {
			middleware.LoggerFromContext(r.Context()).Warn("Add to cart failed",
				"productId", req.ProductID.String(), "error", err.Error())
			response.WriteGatewayError(w, err)
			return
		}

		response.WriteJson(w, http.StatusCreated, item)
	}
}

func (h *CartHandler) UpdateItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := claimsOrFail(w, r)
		if !ok {
			return
		}

		itemID, ok := pathUUID(w, r, "itemId")
		if !ok {
			return
		}

		var req models.UpdateCartItemRequest
		if err := utils.DecodeJSONBody(r, &req); err != nil {
			response.WriteGatewayError(w, errors.BadRequestError(err.Error()))
			return
		}

		item, err := h.cartService.UpdateItem(r.Context(), claims.UserID, itemID, &req)
		if err != nil {
			response.WriteGatewayError(w, err)
			return
		}

		// A non-positive quantity removes the line instead of zeroing it.
		if item == nil {
			response.WriteJson(w, http.StatusOK, map[string]bool{"removed": true})
			return
		}

		response.WriteJson(w, http.StatusOK, item)
	}
}

func (h *CartHandler) RemoveItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := claimsOrFail(w, r)
		if !ok {
			return
		}

		itemID, ok := pathUUID(w, r, "itemId")
		if !ok {
			return
		}

		if err := h.cartService.RemoveItem(r.Context(), claims.UserID, itemID); err != nil {
			response.WriteGatewayError(w, err)
			return
		}

		response.WriteJson(w, http.StatusOK, map[string]bool{"removed": true})
	}
}

func (h *CartHandler) ApplyCoupon() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := claimsOrFail(w, r)
		if !ok {
			return
		}

		var req models.ApplyCouponRequest
		if err := utils.DecodeJSONBody(r, &req); err != nil {
			response.WriteGatewayError(w, errors.BadRequestError(err.Error()))
			return
		}

		if err := utils.ValidateStruct(h.validator, req); err != nil {
			response.WriteGatewayError(w, errors.ValidationError("code is required"))
			return
		}

		result, err := h.cartService.ApplyCoupon(r.Context(), claims.UserID, &req)
		if err != nil {
			middleware.LoggerFromContext(r.Context()).Info("Coupon rejected",
				"code", req.Code, "error", err.Error())
			response.WriteGatewayError(w, err)
			return
		}

		response.WriteJson(w, http.StatusOK, result)
	}
}
