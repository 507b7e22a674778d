package domain

import (
	"errors"

	"Receipt-Scan-Backend/entities"
)

var (
	MessageSuccessProcessReceipt = "receipt processed successfully"
	MessageSuccessSaveReceipt    = "receipt saved successfully"
	MessageSuccessLoadReceipt    = "receipt loaded successfully"
	MessageSuccessUpdateReceipt  = "receipt updated successfully"
	MessageSuccessUploadImage    = "receipt image uploaded successfully"
	MessageSuccessShareReceipt   = "receipt shared successfully"

	MessageFailedProcessReceipt = "failed to process receipt"
	MessageFailedSaveReceipt    = "failed to save receipt"
	MessageFailedLoadReceipt    = "failed to load receipt"
	MessageFailedUpdateReceipt  = "failed to update receipt"
	MessageFailedUploadImage    = "failed to upload receipt image"
	MessageFailedShareReceipt   = "failed to share receipt"
	MessageReceiptNotFound      = "receipt not found"
	MessageMissingReceiptID     = "missing receipt id"

	ErrMissingImage         = errors.New("no image provided")
	ErrInvalidImageEncoding = errors.New("image is not valid base64")
	ErrEmptyReceiptPayload  = errors.New("receipt must contain originalData, processedData or shareData")
	ErrMissingItems         = errors.New("items is required when processedData or shareData is present")
	ErrReceiptNotFound      = errors.New("receipt not found")
	ErrNothingToShare       = errors.New("receipt has no shareable data")
	ErrExtractionFailed     = errors.New("extraction failed")
)

type (
	ProcessReceiptRequest struct {
		Image string `json:"image" validate:"required"`
		Type  string `json:"type" validate:"omitempty"`
	}

	SaveReceiptRequest struct {
		OriginalData       map[string]interface{}       `json:"originalData" validate:"omitempty"`
		ProcessedData      *entities.ReceiptData        `json:"processedData" validate:"omitempty"`
		ShareData          *entities.ReceiptData        `json:"shareData" validate:"omitempty"`
		ProcessingMetadata *entities.ProcessingMetadata `json:"processingMetadata" validate:"omitempty"`
	}

	SaveReceiptResponse struct {
		ID string `json:"id"`
	}

	UploadReceiptImageResponse struct {
		ImageURL string `json:"imageUrl"`
	}

	ShareReceiptRequest struct {
		Email string `json:"email" validate:"required,email"`
	}
)
