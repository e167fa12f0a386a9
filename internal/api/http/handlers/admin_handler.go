package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/shipment-service/internal/api/dto"
	"github.com/spec-kit/shipment-service/internal/auth"
	"github.com/spec-kit/shipment-service/internal/domain"
	"github.com/spec-kit/shipment-service/internal/service"
	apperrors "github.com/spec-kit/shipment-service/pkg/util"
)

// AdminHandler exposes the admin-only shipment mutations: pricing, delivery
// status and delivery date.
type AdminHandler struct {
	service *service.ShipmentService
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(shipmentService *service.ShipmentService) *AdminHandler {
	return &AdminHandler{service: shipmentService}
}

// UpdateDeliveryStatus handles PUT /api/update_delivery_status/:id.
func (h *AdminHandler) UpdateDeliveryStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateDeliveryStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.service.UpdateDeliveryStatus(c.Context(), principal.User, id, req.DeliveryStatus); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Delivery status updated successfully to '" + req.DeliveryStatus + "'",
	})
}

// UpdateAmount handles POST /api/update_amount/:id. Setting the amount always
// re-opens payment.
func (h *AdminHandler) UpdateAmount(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateAmountRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Amount == nil {
		return apperrors.NewValidationError("missing amount", nil)
	}
	if err := h.service.UpdateAmount(c.Context(), principal.User, id, *req.Amount); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message":         "Amount updated successfully",
		"id":              id,
		"amount":          strconv.FormatFloat(*req.Amount, 'f', -1, 64),
		"internal_status": domain.InternalStatusPaymentPending,
	})
}

// UpdateDeliveryDate handles POST and PUT /api/update_delivery_date/:id.
func (h *AdminHandler) UpdateDeliveryDate(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateDeliveryDateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	record, err := h.service.UpdateDeliveryDate(c.Context(), principal.User, id, req.DeliveryDate)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message":        "Delivery date updated successfully",
		"transaction_id": id,
		"delivery_date":  record.DeliveryDate,
		"user":           record.OwnerUsername,
		"user_id":        record.UserID,
	})
}
