package receipt

import (
	"context"
	"mime/multipart"
	"testing"
	"time"

	"Receipt-Scan-Backend/domain"
	"Receipt-Scan-Backend/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeRepository struct {
	docs      map[string]bson.M
	created   []*entities.Receipt
	lastPatch bson.M
	createErr error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{docs: map[string]bson.M{}}
}

func (f *fakeRepository) Create(_ context.Context, receipt *entities.Receipt) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created = append(f.created, receipt)
	return primitive.NewObjectID().Hex(), nil
}

func (f *fakeRepository) GetByID(_ context.Context, id string) (bson.M, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, nil
	}
	return doc, nil
}

func (f *fakeRepository) UpdateByID(_ context.Context, id string, patch bson.M) (bool, error) {
	if _, ok := f.docs[id]; !ok {
		return false, nil
	}
	f.lastPatch = patch
	return true, nil
}

type fakeExtraction struct {
	result map[string]interface{}
	err    error
	calls  int
}

func (f *fakeExtraction) ExtractReceipt(_ context.Context, _ string, _ string) (map[string]interface{}, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeS3 struct {
	uploadedKey string
}

func (f *fakeS3) UploadFile(fileName string, _ *multipart.FileHeader, dir string, _ ...string) (string, error) {
	f.uploadedKey = dir + "/" + fileName + ".jpg"
	return f.uploadedKey, nil
}

func (f *fakeS3) UpdateFile(objectKey string, _ *multipart.FileHeader, _ ...string) (string, error) {
	return objectKey, nil
}

func (f *fakeS3) DeleteFile(string) error { return nil }

func (f *fakeS3) GetPublicLinkKey(objectKey string) string {
	return "https://bucket.s3.region.amazonaws.com/" + objectKey
}

func (f *fakeS3) GetObjectKeyFromLink(string) string { return "" }

func newTestService(repo *fakeRepository, ext *fakeExtraction) ReceiptService {
	return NewReceiptService(repo, ext, &fakeS3{}, NewAllowAllPolicy())
}

func TestProcessReceipt(t *testing.T) {
	repo := newFakeRepository()
	ext := &fakeExtraction{result: map[string]interface{}{
		"meta_data": map[string]interface{}{"restaurant": "Cafe X"},
		"items":     []interface{}{},
	}}
	service := newTestService(repo, ext)

	t.Run("missing image", func(t *testing.T) {
		_, err := service.ProcessReceipt(context.Background(), domain.ProcessReceiptRequest{}, "user-1")
		assert.ErrorIs(t, err, domain.ErrMissingImage)
	})

	t.Run("invalid base64", func(t *testing.T) {
		_, err := service.ProcessReceipt(context.Background(), domain.ProcessReceiptRequest{Image: "%%%not-base64%%%"}, "user-1")
		assert.ErrorIs(t, err, domain.ErrInvalidImageEncoding)
	})

	t.Run("annotates extraction with caller", func(t *testing.T) {
		res, err := service.ProcessReceipt(context.Background(), domain.ProcessReceiptRequest{
			Image: "aGVsbG8gcmVjZWlwdA==",
			Type:  "image/jpeg",
		}, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "user-1", res["userId"])
		assert.Contains(t, res, "meta_data")
	})

	t.Run("nothing is persisted", func(t *testing.T) {
		assert.Empty(t, repo.created)
	})
}

func TestSaveReceiptValidation(t *testing.T) {
	service := newTestService(newFakeRepository(), &fakeExtraction{})

	t.Run("empty payload rejected", func(t *testing.T) {
		_, err := service.SaveReceipt(context.Background(), domain.SaveReceiptRequest{}, "user-1")
		assert.ErrorIs(t, err, domain.ErrEmptyReceiptPayload)
	})

	t.Run("processedData without items rejected", func(t *testing.T) {
		_, err := service.SaveReceipt(context.Background(), domain.SaveReceiptRequest{
			ProcessedData: &entities.ReceiptData{},
		}, "user-1")
		assert.ErrorIs(t, err, domain.ErrMissingItems)
	})

	t.Run("shareData without items rejected", func(t *testing.T) {
		_, err := service.SaveReceipt(context.Background(), domain.SaveReceiptRequest{
			ShareData: &entities.ReceiptData{},
		}, "user-1")
		assert.ErrorIs(t, err, domain.ErrMissingItems)
	})

	t.Run("empty items accepted", func(t *testing.T) {
		res, err := service.SaveReceipt(context.Background(), domain.SaveReceiptRequest{
			ProcessedData: &entities.ReceiptData{Items: []entities.ReceiptItem{}},
		}, "user-1")
		require.NoError(t, err)
		assert.NotEmpty(t, res.ID)
	})

	t.Run("originalData alone accepted", func(t *testing.T) {
		res, err := service.SaveReceipt(context.Background(), domain.SaveReceiptRequest{
			OriginalData: map[string]interface{}{"imageUrl": "https://example.com/r.jpg"},
		}, "user-1")
		require.NoError(t, err)
		assert.NotEmpty(t, res.ID)
	})
}

func TestSaveReceiptProcessingMetadata(t *testing.T) {
	t.Run("synthesized when absent", func(t *testing.T) {
		repo := newFakeRepository()
		service := newTestService(repo, &fakeExtraction{})

		_, err := service.SaveReceipt(context.Background(), domain.SaveReceiptRequest{
			ProcessedData: &entities.ReceiptData{Items: []entities.ReceiptItem{
				{Name: "Latte", Quantity: 1, Total: 4.5},
			}},
		}, "user-1")
		require.NoError(t, err)

		require.Len(t, repo.created, 1)
		metadata := repo.created[0].ProcessingMetadata
		require.NotNil(t, metadata)
		assert.Equal(t, "user-1", metadata.UserID)
		assert.Equal(t, []string{"user-1"}, metadata.UpdatedBy)
		assert.Equal(t, "mobile-app", metadata.Source)
		assert.False(t, metadata.ProcessedAt.IsZero())
	})

	t.Run("caller injected into supplied metadata", func(t *testing.T) {
		repo := newFakeRepository()
		service := newTestService(repo, &fakeExtraction{})

		_, err := service.SaveReceipt(context.Background(), domain.SaveReceiptRequest{
			ProcessedData: &entities.ReceiptData{Items: []entities.ReceiptItem{}},
			ProcessingMetadata: &entities.ProcessingMetadata{
				Source: "import",
				UserID: "someone-else",
			},
		}, "user-1")
		require.NoError(t, err)

		require.Len(t, repo.created, 1)
		metadata := repo.created[0].ProcessingMetadata
		assert.Equal(t, "user-1", metadata.UserID)
		assert.Equal(t, "import", metadata.Source)
	})
}

func TestLoadReceipt(t *testing.T) {
	repo := newFakeRepository()
	service := newTestService(repo, &fakeExtraction{})

	t.Run("unknown id is not found", func(t *testing.T) {
		_, err := service.LoadReceipt(context.Background(), primitive.NewObjectID().Hex(), "user-1")
		assert.ErrorIs(t, err, domain.ErrReceiptNotFound)
	})

	t.Run("document id echoed everywhere", func(t *testing.T) {
		oid := primitive.NewObjectID()
		repo.docs[oid.Hex()] = bson.M{
			"_id": oid,
			"processedData": bson.M{
				"items": bson.A{bson.M{"name": "Latte", "quantity": 1.0, "total": 4.5}},
			},
			"shareData": bson.M{"items": bson.A{}},
			"createdAt": time.Now().UTC(),
		}

		doc, err := service.LoadReceipt(context.Background(), oid.Hex(), "user-1")
		require.NoError(t, err)

		assert.Equal(t, oid.Hex(), doc["id"])
		assert.Equal(t, oid.Hex(), doc["documentId"])
		assert.NotContains(t, doc, "_id")
		assert.Equal(t, oid.Hex(), doc["processedData"].(bson.M)["documentId"])
		assert.Equal(t, oid.Hex(), doc["shareData"].(bson.M)["documentId"])
	})
}

func TestUpdateReceipt(t *testing.T) {
	t.Run("missing document is not created", func(t *testing.T) {
		repo := newFakeRepository()
		service := newTestService(repo, &fakeExtraction{})

		err := service.UpdateReceipt(context.Background(), primitive.NewObjectID().Hex(), map[string]interface{}{
			"shareData": map[string]interface{}{"items": []interface{}{}},
		}, "user-2")
		assert.ErrorIs(t, err, domain.ErrReceiptNotFound)
		assert.Nil(t, repo.lastPatch)
	})

	t.Run("metadata merged and restamped", func(t *testing.T) {
		repo := newFakeRepository()
		service := newTestService(repo, &fakeExtraction{})

		oid := primitive.NewObjectID()
		processedAt := time.Now().UTC().Add(-time.Hour)
		repo.docs[oid.Hex()] = bson.M{
			"_id": oid,
			"processingMetadata": bson.M{
				"processedAt": processedAt,
				"source":      "mobile-app",
				"userId":      "user-1",
				"updatedBy":   bson.A{"user-1"},
			},
		}

		err := service.UpdateReceipt(context.Background(), oid.Hex(), map[string]interface{}{
			"shareData":          map[string]interface{}{"items": []interface{}{}},
			"processingMetadata": map[string]interface{}{"source": "web-edit"},
		}, "user-2")
		require.NoError(t, err)

		require.NotNil(t, repo.lastPatch)
		assert.Contains(t, repo.lastPatch, "shareData")

		metadata := repo.lastPatch["processingMetadata"].(bson.M)
		assert.Equal(t, "web-edit", metadata["source"])
		assert.Equal(t, processedAt, metadata["processedAt"])
		assert.Equal(t, "user-2", metadata["userId"])
		// updatedBy is reset to the latest caller, not appended
		assert.Equal(t, []string{"user-2"}, metadata["updatedBy"])
	})
}

func TestShareReceipt(t *testing.T) {
	repo := newFakeRepository()
	service := newTestService(repo, &fakeExtraction{})

	t.Run("unknown id is not found", func(t *testing.T) {
		err := service.ShareReceipt(context.Background(), primitive.NewObjectID().Hex(), domain.ShareReceiptRequest{
			Email: "friend@example.com",
		}, "user-1")
		assert.ErrorIs(t, err, domain.ErrReceiptNotFound)
	})

	t.Run("nothing shareable rejected", func(t *testing.T) {
		oid := primitive.NewObjectID()
		repo.docs[oid.Hex()] = bson.M{
			"_id":          oid,
			"originalData": bson.M{"imageUrl": "https://example.com/r.jpg"},
		}

		err := service.ShareReceipt(context.Background(), oid.Hex(), domain.ShareReceiptRequest{
			Email: "friend@example.com",
		}, "user-1")
		assert.ErrorIs(t, err, domain.ErrNothingToShare)
	})
}

func TestRenderShareEmail(t *testing.T) {
	body := renderShareEmail(bson.M{
		"meta_data": bson.M{"restaurant": "Cafe X", "address": "1 Main St"},
		"items":     bson.A{bson.M{"name": "Latte", "total": 4.5}},
		"payment":   bson.M{"total": 4.5},
	})

	assert.Contains(t, body, "Cafe X")
	assert.Contains(t, body, "Latte")
	assert.Contains(t, body, "Total")
}
