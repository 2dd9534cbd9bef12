package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/stylemate/platform/internal/api/middleware"
	"github.com/stylemate/platform/internal/models"
	service "github.com/stylemate/platform/internal/services"
	"github.com/stylemate/platform/internal/utils"
	"github.com/stylemate/platform/internal/utils/response"
)

type UserHandler struct {
	userService service.UserService
	validator   *validator.Validate
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
		validator:   validator.New(),
	}
}

func (h *UserHandler) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		var req models.RegisterRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		user, err := h.userService.Register(r.Context(), &req)
		if err != nil {
			middleware.LoggerFromContext(r.Context()).Warn("Registration failed",
				"email", req.Email, "error", err.Error())
			response.Error(w, err)
			return
		}

		middleware.LoggerFromContext(r.Context()).Info("User registered", "userId", user.ID.String())
		response.Success(w, http.StatusCreated, user)
	}
}

func (h *UserHandler) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		var req models.LoginRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		result, err := h.userService.Login(r.Context(), &req)
		if err != nil {
			response.Error(w, err)
			return
		}

		if !result.Success {
			// Rate limited or bad credentials; the body carries retry info.
			response.WriteJson(w, http.StatusUnauthorized, result)
			return
		}

		response.Success(w, http.StatusOK, result)
	}
}

func (h *UserHandler) Profile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := claimsOrFail(w, r)
		if !ok {
			return
		}

		user, err := h.userService.GetUserByID(r.Context(), claims.UserID)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, user)
	}
}

func (h *UserHandler) RequestOTP() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		var req models.OTPRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		if err := h.userService.RequestOTP(r.Context(), &req); err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, map[string]string{"message": "Verification code sent"})
	}
}

func (h *UserHandler) VerifyOTP() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		var req models.OTPVerifyRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		verified, err := h.userService.VerifyOTP(r.Context(), &req)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, map[string]bool{"verified": verified})
	}
}
