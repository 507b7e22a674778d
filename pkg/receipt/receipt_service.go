package receipt

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"Receipt-Scan-Backend/domain"
	"Receipt-Scan-Backend/entities"
	"Receipt-Scan-Backend/internal/utils/mailing"
	"Receipt-Scan-Backend/internal/utils/storage"
	"Receipt-Scan-Backend/pkg/extraction"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const defaultSource = "mobile-app"

type (
	ReceiptService interface {
		ProcessReceipt(ctx context.Context, req domain.ProcessReceiptRequest, userID string) (map[string]interface{}, error)
		SaveReceipt(ctx context.Context, req domain.SaveReceiptRequest, userID string) (domain.SaveReceiptResponse, error)
		LoadReceipt(ctx context.Context, id string, userID string) (map[string]interface{}, error)
		UpdateReceipt(ctx context.Context, id string, patch map[string]interface{}, userID string) error
		UploadReceiptImage(ctx context.Context, image *multipart.FileHeader, userID string) (domain.UploadReceiptImageResponse, error)
		ShareReceipt(ctx context.Context, id string, req domain.ShareReceiptRequest, userID string) error
	}

	receiptService struct {
		receiptRepository ReceiptRepository
		extraction        extraction.ExtractionService
		s3                storage.AwsS3
		policy            AccessPolicy
	}
)

func NewReceiptService(
	receiptRepository ReceiptRepository,
	extractionService extraction.ExtractionService,
	s3 storage.AwsS3,
	policy AccessPolicy,
) ReceiptService {
	return &receiptService{
		receiptRepository: receiptRepository,
		extraction:        extractionService,
		s3:                s3,
		policy:            policy,
	}
}

// ProcessReceipt runs the extraction only; nothing is persisted so the caller
// can inspect and edit the result before committing it with SaveReceipt.
func (s *receiptService) ProcessReceipt(ctx context.Context, req domain.ProcessReceiptRequest, userID string) (map[string]interface{}, error) {
	if req.Image == "" {
		return nil, domain.ErrMissingImage
	}

	if _, err := base64.StdEncoding.DecodeString(req.Image); err != nil {
		return nil, domain.ErrInvalidImageEncoding
	}

	result, err := s.extraction.ExtractReceipt(ctx, req.Image, req.Type)
	if err != nil {
		return nil, err
	}

	result["userId"] = userID
	return result, nil
}

func (s *receiptService) SaveReceipt(ctx context.Context, req domain.SaveReceiptRequest, userID string) (domain.SaveReceiptResponse, error) {
	if req.OriginalData == nil && req.ProcessedData == nil && req.ShareData == nil {
		return domain.SaveReceiptResponse{}, domain.ErrEmptyReceiptPayload
	}
	if req.ProcessedData != nil && req.ProcessedData.Items == nil {
		return domain.SaveReceiptResponse{}, domain.ErrMissingItems
	}
	if req.ShareData != nil && req.ShareData.Items == nil {
		return domain.SaveReceiptResponse{}, domain.ErrMissingItems
	}

	now := time.Now().UTC()
	metadata := req.ProcessingMetadata
	if metadata == nil {
		metadata = &entities.ProcessingMetadata{
			ProcessedAt: now,
			UpdatedAt:   now,
			Source:      defaultSource,
			UpdatedBy:   []string{userID},
		}
	}
	metadata.UserID = userID

	receipt := &entities.Receipt{
		OriginalData:       req.OriginalData,
		ProcessedData:      req.ProcessedData,
		ShareData:          req.ShareData,
		ProcessingMetadata: metadata,
	}

	id, err := s.receiptRepository.Create(ctx, receipt)
	if err != nil {
		return domain.SaveReceiptResponse{}, err
	}

	return domain.SaveReceiptResponse{ID: id}, nil
}

func (s *receiptService) LoadReceipt(ctx context.Context, id string, userID string) (map[string]interface{}, error) {
	doc, err := s.receiptRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrReceiptNotFound
	}
	if !s.policy.MayAccess(userID, doc) {
		return nil, domain.ErrReceiptNotFound
	}

	return decorateDocument(doc), nil
}

func (s *receiptService) UpdateReceipt(ctx context.Context, id string, patch map[string]interface{}, userID string) error {
	existing, err := s.receiptRepository.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.ErrReceiptNotFound
	}
	if !s.policy.MayAccess(userID, existing) {
		return domain.ErrReceiptNotFound
	}

	merged := bson.M{}
	for key, value := range patch {
		merged[key] = value
	}
	merged["processingMetadata"] = mergeProcessingMetadata(existing, patch, userID)

	ok, err := s.receiptRepository.UpdateByID(ctx, id, merged)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrReceiptNotFound
	}
	return nil
}

func (s *receiptService) UploadReceiptImage(ctx context.Context, image *multipart.FileHeader, userID string) (domain.UploadReceiptImageResponse, error) {
	fileName := fmt.Sprintf("receipt-%s", uuid.New().String())
	objectKey, err := s.s3.UploadFile(fileName, image, "receipts", storage.AllowImage...)
	if err != nil {
		return domain.UploadReceiptImageResponse{}, err
	}

	return domain.UploadReceiptImageResponse{
		ImageURL: s.s3.GetPublicLinkKey(objectKey),
	}, nil
}

func (s *receiptService) ShareReceipt(ctx context.Context, id string, req domain.ShareReceiptRequest, userID string) error {
	doc, err := s.receiptRepository.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if doc == nil {
		return domain.ErrReceiptNotFound
	}

	data, ok := doc["shareData"].(bson.M)
	if !ok {
		data, ok = doc["processedData"].(bson.M)
	}
	if !ok {
		return domain.ErrNothingToShare
	}

	subject := "A receipt was shared with you"
	if meta, ok := data["meta_data"].(bson.M); ok {
		if restaurant, ok := meta["restaurant"].(string); ok && restaurant != "" {
			subject = fmt.Sprintf("Receipt from %s", restaurant)
		}
	}

	return mailing.SendMail(req.Email, subject, renderShareEmail(data))
}

// mergeProcessingMetadata overlays the caller-supplied metadata on the stored
// one, then stamps the current caller. UpdatedBy is reset to the latest caller
// only; multi-editor history does not accumulate.
func mergeProcessingMetadata(existing bson.M, patch map[string]interface{}, userID string) bson.M {
	metadata := bson.M{}
	if stored, ok := existing["processingMetadata"].(bson.M); ok {
		for key, value := range stored {
			metadata[key] = value
		}
	}
	if supplied, ok := patch["processingMetadata"].(map[string]interface{}); ok {
		for key, value := range supplied {
			metadata[key] = value
		}
	}

	metadata["userId"] = userID
	metadata["updatedBy"] = []string{userID}
	metadata["updatedAt"] = time.Now().UTC()
	return metadata
}

// decorateDocument exposes the store-native identifier as its string form and
// echoes it everywhere a consumer expects to find it.
func decorateDocument(doc bson.M) bson.M {
	hex := ""
	if oid, ok := doc["_id"].(primitive.ObjectID); ok {
		hex = oid.Hex()
	}
	delete(doc, "_id")

	doc["id"] = hex
	doc["documentId"] = hex
	if processed, ok := doc["processedData"].(bson.M); ok {
		processed["documentId"] = hex
	}
	if shared, ok := doc["shareData"].(bson.M); ok {
		shared["documentId"] = hex
	}
	return doc
}

func renderShareEmail(data bson.M) string {
	var b strings.Builder
	b.WriteString("<h2>Shared receipt</h2>")

	if meta, ok := data["meta_data"].(bson.M); ok {
		if restaurant, ok := meta["restaurant"].(string); ok && restaurant != "" {
			b.WriteString(fmt.Sprintf("<p><b>%s</b></p>", restaurant))
		}
		if address, ok := meta["address"].(string); ok && address != "" {
			b.WriteString(fmt.Sprintf("<p>%s</p>", address))
		}
	}

	if items, ok := data["items"].(bson.A); ok && len(items) > 0 {
		b.WriteString("<ul>")
		for _, entry := range items {
			item, ok := entry.(bson.M)
			if !ok {
				continue
			}
			name, _ := item["name"].(string)
			b.WriteString(fmt.Sprintf("<li>%s: %v</li>", name, item["total"]))
		}
		b.WriteString("</ul>")
	}

	if payment, ok := data["payment"].(bson.M); ok {
		b.WriteString(fmt.Sprintf("<p>Total: %v</p>", payment["total"]))
	}

	return b.String()
}
