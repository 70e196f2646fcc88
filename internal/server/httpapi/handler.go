// Package httpapi exposes the auth workflows over HTTP. Handlers only
// shape requests and map taxonomy errors to status codes; all policy
// lives in the services layer.
package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tripstack/identity/internal/common"
	"github.com/tripstack/identity/internal/logging"
	"github.com/tripstack/identity/internal/server/idp"
	"github.com/tripstack/identity/internal/server/models"
	"github.com/tripstack/identity/internal/server/services"
)

// AuthService is the slice of the services layer the handlers need.
type AuthService interface {
	SignUp(ctx context.Context, req services.SignUpRequest) (*models.User, error)
	SignIn(ctx context.Context, email, password string) (*services.SignInResult, error)
	RequestReset(ctx context.Context, email string) (*idp.CodeDelivery, error)
	ConfirmReset(ctx context.Context, email, code, newPassword string) error
	ServiceToken() (string, error)
}

type Handler struct {
	svc    AuthService
	logger logging.Logger
}

func NewHandler(svc AuthService, logger logging.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// NewRouter builds the gin engine with the auth routes mounted.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/signup", h.SignUp)
		authGroup.POST("/signin", h.SignIn)
		authGroup.POST("/forgot-password", h.ForgotPassword)
		authGroup.POST("/reset-password", h.ResetPassword)
		authGroup.GET("/generate-token", h.GenerateToken)
	}

	return r
}

type signUpRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Role        string `json:"role"`
	AgencyID    int64  `json:"agency_id"`
}

func (h *Handler) SignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.svc.SignUp(c.Request.Context(), services.SignUpRequest{
		Email:       req.Email,
		Password:    req.Password,
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Role:        req.Role,
		AgencyID:    req.AgencyID,
	})
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully.",
		"user": gin.H{
			"id":            user.ID,
			"firstName":     user.FirstName,
			"lastName":      user.LastName,
			"email":         user.Email,
			"role":          user.Role,
			"agencyId":      user.AgencyID,
			"emailVerified": user.EmailVerified,
		},
	})
}

type signInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) SignIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	result, err := h.svc.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accessToken": result.AccessToken,
		"id":          result.ID,
		"firstName":   result.FirstName,
		"lastName":    result.LastName,
	})
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (h *Handler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	delivery, err := h.svc.RequestReset(c.Request.Context(), req.Email)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Password reset code sent to your email",
		"codeDeliveryDetails": gin.H{
			"destination":    delivery.Destination,
			"deliveryMedium": delivery.Medium,
			"attributeName":  delivery.Attribute,
		},
	})
}

type resetPasswordRequest struct {
	Email            string `json:"email" binding:"required,email"`
	VerificationCode string `json:"verificationCode" binding:"required"`
	NewPassword      string `json:"newPassword" binding:"required"`
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.svc.ConfirmReset(c.Request.Context(), req.Email, req.VerificationCode, req.NewPassword); err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Password has been reset successfully",
	})
}

func (h *Handler) GenerateToken(c *gin.Context) {
	token, err := h.svc.ServiceToken()
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": token})
}

// renderError maps taxonomy kinds onto the HTTP surface. Authorization
// failures never echo a reason beyond the fixed message, and persistence
// failures hide the diagnostic entirely.
func (h *Handler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrAuthorizationFailure):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
	case errors.Is(err, common.ErrDuplicateAccount):
		c.JSON(http.StatusBadRequest, gin.H{"error": "User already exists"})
	case errors.Is(err, common.ErrPersistenceFailure):
		h.logger.Error(c.Request.Context(), "request failed on persistence", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Please try again later"})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
