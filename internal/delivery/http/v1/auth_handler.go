package v1

import (
	"net/http"
	"time"

	"go-jobseeker-backend/internal/delivery/http/middleware"
	"go-jobseeker-backend/internal/delivery/http/response"
	"go-jobseeker-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authUC        domain.AuthUsecase
	secureCookies bool
}

func NewAuthHandler(public, protected *gin.RouterGroup, authUC domain.AuthUsecase, secureCookies bool, limit gin.HandlerFunc) {
	handler := &AuthHandler{authUC: authUC, secureCookies: secureCookies}

	publicAuth := public.Group("/auth")
	if limit != nil {
		publicAuth.Use(limit)
	}
	{
		publicAuth.POST("/register", handler.Register)
		publicAuth.POST("/login", handler.Login)
		publicAuth.POST("/logout", handler.Logout)
		publicAuth.POST("/forgot-password", handler.ForgotPassword)
		publicAuth.POST("/reset-password", handler.ResetPassword)
	}

	protected.GET("/auth/me", handler.Me)
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"omitempty,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required,len=6,numeric"`
	NewPassword string `json:"new_password" binding:"required"`
}

func (h *AuthHandler) setSession(c *gin.Context, result *domain.AuthResult) {
	maxAge := int(time.Until(result.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AuthCookieName, result.Token, maxAge, "/", "", h.secureCookies, true)
}

// Register godoc
// @Summary      Register
// @Description  Create an account and return an access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      RegisterRequest  true  "Account details"
// @Success      201  {object}  response.Response{data=domain.AuthResult}
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authUC.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Account created", result)
}

// Login godoc
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      LoginRequest  true  "Credentials"
// @Success      200  {object}  response.Response{data=domain.AuthResult}
// @Failure      401  {object}  response.Response
// @Failure      429  {object}  response.Response
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authUC.Login(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		c.Error(err)
		return
	}

	h.setSession(c, result)
	response.Success(c, http.StatusOK, "Login successful", result)
}

// Logout godoc
// @Summary      Logout
// @Description  Clear the session cookie. Bearer tokens expire on their own.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AuthCookieName, "", -1, "/", "", h.secureCookies, true)
	response.Success(c, http.StatusOK, "Logged out", nil)
}

// ForgotPassword godoc
// @Summary      Request a password reset code
// @Description  Always succeeds so that registered emails cannot be discovered
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      ForgotPasswordRequest  true  "Account email"
// @Success      200  {object}  response.Response
// @Router       /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authUC.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "If the email is registered, a reset code has been sent", nil)
}

// ResetPassword godoc
// @Summary      Reset password with a code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      ResetPasswordRequest  true  "Code and new password"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authUC.ResetPassword(c.Request.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Password updated", nil)
}

// Me godoc
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.User}
// @Failure      401  {object}  response.Response
// @Router       /auth/me [get]
// @Security     BearerAuth
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authUC.Me(c.Request.Context(), middleware.Identity(c))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Current user", user)
}
