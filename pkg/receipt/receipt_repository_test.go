package receipt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBuildUpdateSet(t *testing.T) {
	createdAt := time.Now().UTC().Add(-24 * time.Hour)
	existing := bson.M{
		"_id":       primitive.NewObjectID(),
		"createdAt": createdAt,
		"shareData": bson.M{"items": bson.A{}},
	}

	set := buildUpdateSet(existing, bson.M{
		"_id":           primitive.NewObjectID(),
		"id":            "attacker-controlled",
		"createdAt":     time.Now().UTC(),
		"processedData": bson.M{"items": bson.A{}},
	})

	t.Run("identifiers never reassigned", func(t *testing.T) {
		assert.NotContains(t, set, "_id")
		assert.NotContains(t, set, "id")
	})

	t.Run("createdAt force-restored", func(t *testing.T) {
		assert.Equal(t, createdAt, set["createdAt"])
	})

	t.Run("updatedAt refreshed", func(t *testing.T) {
		updatedAt, ok := set["updatedAt"].(time.Time)
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().UTC(), updatedAt, time.Minute)
	})

	t.Run("patch keys forwarded", func(t *testing.T) {
		assert.Contains(t, set, "processedData")
	})

	t.Run("untouched keys absent from set", func(t *testing.T) {
		assert.NotContains(t, set, "shareData")
	})
}

func TestBuildUpdateSetWithoutStoredCreatedAt(t *testing.T) {
	set := buildUpdateSet(bson.M{}, bson.M{"originalData": bson.M{}})

	// nothing to restore; the patch value would win if the caller sent one,
	// and here none was sent
	assert.NotContains(t, set, "createdAt")
	assert.Contains(t, set, "updatedAt")
}
