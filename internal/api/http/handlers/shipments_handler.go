package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/shipment-service/internal/api/dto"
	"github.com/spec-kit/shipment-service/internal/auth"
	"github.com/spec-kit/shipment-service/internal/service"
	apperrors "github.com/spec-kit/shipment-service/pkg/util"
)

// ShipmentsHandler manages the user-facing shipment endpoints.
type ShipmentsHandler struct {
	service *service.ShipmentService
}

// NewShipmentsHandler constructs the handler.
func NewShipmentsHandler(shipmentService *service.ShipmentService) *ShipmentsHandler {
	return &ShipmentsHandler{service: shipmentService}
}

// List handles GET /api/get. Admins see every shipment, other callers only
// their own.
func (h *ShipmentsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	records, err := h.service.List(c.Context(), principal.User)
	if err != nil {
		return err
	}
	views := make([]dto.ShipmentView, 0, len(records))
	for i := range records {
		views = append(views, dto.NewShipmentView(&records[i]))
	}
	return c.JSON(views)
}

// Create handles POST /api/create.
func (h *ShipmentsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateShipmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	shipment, err := h.service.Create(c.Context(), principal.User, service.ShipmentCreateInput{
		Name:            req.Name,
		Type:            req.Type,
		Date:            req.Date,
		SourceCity:      req.SourceCity,
		DestinationCity: req.DestinationCity,
		Description:     req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message":        "Transaction created successfully",
		"transaction_id": shipment.ID,
	})
}

// Update handles PUT /api/update/:id.
func (h *ShipmentsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateShipmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	err = h.service.Update(c.Context(), principal.User, id, service.ShipmentUpdateInput{
		Name:            req.Name,
		Type:            req.Type,
		Date:            req.Date,
		SourceCity:      req.SourceCity,
		DestinationCity: req.DestinationCity,
		Description:     req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Transaction updated successfully"})
}

// Delete handles DELETE /api/delete/:id.
func (h *ShipmentsHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Context(), principal.User, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Transaction deleted successfully"})
}

// Pay handles GET /api/pay/:id.
func (h *ShipmentsHandler) Pay(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.service.Pay(c.Context(), principal.User, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Transaction paid successfully"})
}

// Review handles GET /api/review_transaction/:id.
func (h *ShipmentsHandler) Review(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	record, err := h.service.Review(c.Context(), principal.User, id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewShipmentView(record))
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewNotFound("transaction", nil)
	}
	return id, nil
}
