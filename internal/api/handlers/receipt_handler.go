package handlers

import (
	"errors"

	"Receipt-Scan-Backend/domain"
	"Receipt-Scan-Backend/internal/api/presenters"
	"Receipt-Scan-Backend/internal/utils/storage"
	"Receipt-Scan-Backend/pkg/receipt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

type (
	ReceiptHandler interface {
		ProcessReceipt(c *fiber.Ctx) error
		SaveReceipt(c *fiber.Ctx) error
		LoadReceipt(c *fiber.Ctx) error
		UpdateReceipt(c *fiber.Ctx) error
		UploadReceiptImage(c *fiber.Ctx) error
		ShareReceipt(c *fiber.Ctx) error
	}

	receiptHandler struct {
		receiptService receipt.ReceiptService
		validator      *validator.Validate
	}
)

func NewReceiptHandler(receiptService receipt.ReceiptService, validator *validator.Validate) ReceiptHandler {
	return &receiptHandler{
		receiptService: receiptService,
		validator:      validator,
	}
}

func (h *receiptHandler) ProcessReceipt(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.ProcessReceiptRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedProcessReceipt, err)
	}

	res, err := h.receiptService.ProcessReceipt(c.Context(), *req, userID)
	if err != nil {
		log.Errorf("[%s] process receipt: %v", requestID(c), err)
		return presenters.ErrorResponse(c, statusFromError(err), domain.MessageFailedProcessReceipt, err)
	}

	return presenters.SuccessResponse(c, fiber.StatusOK, fiber.Map(res))
}

func (h *receiptHandler) SaveReceipt(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.SaveReceiptRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedSaveReceipt, err)
	}

	res, err := h.receiptService.SaveReceipt(c.Context(), *req, userID)
	if err != nil {
		log.Errorf("[%s] save receipt: %v", requestID(c), err)
		return presenters.ErrorResponse(c, statusFromError(err), domain.MessageFailedSaveReceipt, err)
	}

	return presenters.SuccessResponse(c, fiber.StatusCreated, fiber.Map{"id": res.ID})
}

func (h *receiptHandler) LoadReceipt(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	receiptID := c.Params("id")

	if receiptID == "" {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageMissingReceiptID, nil)
	}

	doc, err := h.receiptService.LoadReceipt(c.Context(), receiptID, userID)
	if err != nil {
		log.Errorf("[%s] load receipt %s: %v", requestID(c), receiptID, err)
		return presenters.ErrorResponse(c, statusFromError(err), domain.MessageFailedLoadReceipt, err)
	}

	return presenters.SuccessResponse(c, fiber.StatusOK, fiber.Map(doc))
}

func (h *receiptHandler) UpdateReceipt(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	receiptID := c.Params("id")

	if receiptID == "" {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageMissingReceiptID, nil)
	}

	patch := map[string]interface{}{}
	if err := c.BodyParser(&patch); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if len(patch) == 0 {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, nil)
	}

	if err := h.receiptService.UpdateReceipt(c.Context(), receiptID, patch, userID); err != nil {
		log.Errorf("[%s] update receipt %s: %v", requestID(c), receiptID, err)
		return presenters.ErrorResponse(c, statusFromError(err), domain.MessageFailedUpdateReceipt, err)
	}

	return presenters.SuccessResponse(c, fiber.StatusOK, fiber.Map{"id": receiptID})
}

func (h *receiptHandler) UploadReceiptImage(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	file, err := c.FormFile("receipt_image")
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	res, err := h.receiptService.UploadReceiptImage(c.Context(), file, userID)
	if err != nil {
		log.Errorf("[%s] upload receipt image: %v", requestID(c), err)
		return presenters.ErrorResponse(c, statusFromError(err), domain.MessageFailedUploadImage, err)
	}

	return presenters.SuccessResponse(c, fiber.StatusOK, fiber.Map{"imageUrl": res.ImageURL})
}

func (h *receiptHandler) ShareReceipt(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	receiptID := c.Params("id")

	if receiptID == "" {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageMissingReceiptID, nil)
	}

	req := new(domain.ShareReceiptRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedShareReceipt, err)
	}

	if err := h.receiptService.ShareReceipt(c.Context(), receiptID, *req, userID); err != nil {
		log.Errorf("[%s] share receipt %s: %v", requestID(c), receiptID, err)
		return presenters.ErrorResponse(c, statusFromError(err), domain.MessageFailedShareReceipt, err)
	}

	return presenters.SuccessResponse(c, fiber.StatusOK, fiber.Map{})
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals("requestid").(string)
	return id
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, domain.ErrMissingImage),
		errors.Is(err, domain.ErrInvalidImageEncoding),
		errors.Is(err, domain.ErrEmptyReceiptPayload),
		errors.Is(err, domain.ErrMissingItems),
		errors.Is(err, domain.ErrNothingToShare),
		errors.Is(err, storage.ErrFileTypeNotAllowed):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrReceiptNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}
