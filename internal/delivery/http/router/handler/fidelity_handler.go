// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"

	"fidelity/internal/delivery/http/response"
	domainerrors "fidelity/internal/domain/errors"
	"fidelity/internal/domain/service"
	"fidelity/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// FidelityHandler holds dependencies for the fidelity-card endpoints.
type FidelityHandler struct {
	verification usecase.VerificationUsecase
	profile      usecase.ProfileUsecase
	registration usecase.RegistrationUsecase
	cacheAdmin   usecase.CacheAdminUsecase
	qr           service.QRCodeService
	logger       *slog.Logger
}

// NewFidelityHandler is the constructor for FidelityHandler, injected by Fx.
func NewFidelityHandler(
	verification usecase.VerificationUsecase,
	profile usecase.ProfileUsecase,
	registration usecase.RegistrationUsecase,
	cacheAdmin usecase.CacheAdminUsecase,
	qr service.QRCodeService,
	logger *slog.Logger,
) *FidelityHandler {
	return &FidelityHandler{
		verification: verification,
		profile:      profile,
		registration: registration,
		cacheAdmin:   cacheAdmin,
		qr:           qr,
		logger:       logger,
	}
}

// EmailValidation runs the verification flow for an address and reports
// whether the user already exists.
func (h *FidelityHandler) EmailValidation(c echo.Context) error {
	input := &usecase.ValidateEmailInput{
		Email: c.QueryParam("email"),
		Store: c.QueryParam("store"),
	}

	output, err := h.verification.ValidateEmail(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return c.JSON(http.StatusOK, output)
}

// EmailConfirmation resolves a confirmation token to its raw payload.
// Unknown or expired tokens yield an empty body, matching the link
// handling in the registration frontend.
func (h *FidelityHandler) EmailConfirmation(c echo.Context) error {
	payload := h.verification.ConfirmToken(c.Request().Context(), c.QueryParam("token"))

	return c.String(http.StatusOK, payload)
}

// GetProfile resolves a profile token into the member's full profile.
func (h *FidelityHandler) GetProfile(c echo.Context) error {
	record, err := h.profile.GetProfile(c.Request().Context(), c.QueryParam("token"))
	if err != nil {
		return errors.WithStack(err)
	}

	return c.JSON(http.StatusOK, record)
}

// GetQRCode renders a loyalty code as a PNG image.
func (h *FidelityHandler) GetQRCode(c echo.Context) error {
	code := c.Param("code")
	if code == "" {
		return errors.WithStack(domainerrors.ErrCodeRequired)
	}

	png, err := h.qr.GenerateCodeQR(code)
	if err != nil {
		return errors.WithStack(err)
	}

	return c.Blob(http.StatusOK, "image/png", png)
}

// Create finalizes a card registration from the submitted profile body.
func (h *FidelityHandler) Create(c echo.Context) error {
	input := new(usecase.RegisterInput)
	if err := c.Bind(input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid registration body")
	}
	if err := c.Validate(input); err != nil {
		return errors.WithStack(err)
	}

	record, err := h.registration.Register(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return c.JSON(http.StatusOK, record)
}

// CacheStatus reports the identity cache size.
func (h *FidelityHandler) CacheStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, h.cacheAdmin.Status(c.Request().Context()))
}

// ClearEmailFromCache removes one entry from the identity cache.
func (h *FidelityHandler) ClearEmailFromCache(c echo.Context) error {
	output, err := h.cacheAdmin.ClearEmail(c.Request().Context(), c.QueryParam("email"))
	if err != nil {
		return errors.WithStack(err)
	}

	return c.JSON(http.StatusOK, output)
}
