package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"worklog/internal/model"
	"worklog/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FullName    string `json:"full_name"`
	Role        string `json:"role"`
	SubCategory string `json:"sub_category"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse keeps token and user at the top level of the envelope.
type loginResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Token   string          `json:"token"`
	User    model.LoginUser `json:"user"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, MsgInvalidBody)
		return
	}

	u, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		FullName:    req.FullName,
		Role:        req.Role,
		SubCategory: req.SubCategory,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("User registered", zap.Int64("user_id", u.ID), zap.String("role", u.Role))
	Success(c, http.StatusCreated, "User registered successfully. Please login to continue.", gin.H{"user": u})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, MsgInvalidBody)
		return
	}

	token, u, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, loginResponse{
		Success: true,
		Message: "Login successful",
		Token:   token,
		User:    u.LoginView(),
	})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	id, ok := mustIdentity(c)
	if !ok {
		return
	}

	u, err := h.authService.Me(c.Request.Context(), id.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	Success(c, http.StatusOK, "User retrieved successfully", gin.H{"user": u})
}

// Verify handles GET /api/auth/verify and echoes the token identity.
func (h *AuthHandler) Verify(c *gin.Context) {
	id, ok := mustIdentity(c)
	if !ok {
		return
	}
	Success(c, http.StatusOK, "Token is valid", gin.H{"user": id})
}
