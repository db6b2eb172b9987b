package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gestion-comercial/backoffice/internal/core/domain"
	"github.com/gestion-comercial/backoffice/internal/core/ports"
)

const (
	msgTooManyAttempts = "Demasiados intentos fallidos. Cuenta bloqueada temporalmente."
	msgBadCredentials  = "Credenciales invalidas"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	AccessToken string  `json:"accessToken"`
	TokenType   string  `json:"tokenType"`
	Role        string  `json:"role" example:"ROLE_ADMIN"`
	Email       string  `json:"email"`
	Nombre      *string `json:"nombre,omitempty"`
	UserID      *int    `json:"userId,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type meResponse struct {
	Email string `json:"email"`
	Role  string `json:"role" example:"ROLE_CLIENTE"`
}

// Login authenticates an employee or client and returns a bearer token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Failure      429   {object}  messageResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	res, err := h.authService.Login(c.Request().Context(), ports.LoginInput{
		Identifier: req.Email,
		Password:   req.Password,
		Origin:     c.RealIP(),
	})
	switch {
	case errors.Is(err, domain.ErrTooManyAttempts):
		return c.JSON(http.StatusTooManyRequests, messageResponse{Message: msgTooManyAttempts})
	case errors.Is(err, domain.ErrBadCredentials):
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": msgBadCredentials})
	case err != nil:
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{
		AccessToken: res.Token,
		TokenType:   res.TokenType,
		Role:        res.Role.Authority(),
		Email:       res.LoginID,
		Nombre:      res.DisplayName,
		UserID:      res.SubjectID,
	})
}

// Me returns the identity asserted by the request's bearer token.
//
// @Summary      Current principal
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200   {object}  meResponse
// @Failure      401   {object}  map[string]string
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, meResponse{Email: id.LoginID, Role: id.Role.Authority()})
}
