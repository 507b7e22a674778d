package entities

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Receipt is the single persisted document of the scanning protocol. Only the
// keys below are schema-checked; anything else a client puts in the envelope
// travels through the store untouched.
type Receipt struct {
	ID            primitive.ObjectID     `bson:"_id,omitempty" json:"id,omitempty"`
	OriginalData  map[string]interface{} `bson:"originalData,omitempty" json:"originalData,omitempty"`
	ProcessedData *ReceiptData           `bson:"processedData,omitempty" json:"processedData,omitempty"`
	ShareData     *ReceiptData           `bson:"shareData,omitempty" json:"shareData,omitempty"`

	ProcessingMetadata *ProcessingMetadata `bson:"processingMetadata,omitempty" json:"processingMetadata,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ReceiptData is the structured extraction shape shared by processedData and
// shareData. Items is required (possibly empty) whenever the section exists.
type ReceiptData struct {
	MetaData *ReceiptMetaData `bson:"meta_data,omitempty" json:"meta_data,omitempty"`
	Items    []ReceiptItem    `bson:"items" json:"items"`
	Payment  *ReceiptPayment  `bson:"payment,omitempty" json:"payment,omitempty"`
}

type ReceiptMetaData struct {
	Restaurant   string `bson:"restaurant,omitempty" json:"restaurant,omitempty"`
	Address      string `bson:"address,omitempty" json:"address,omitempty"`
	OrderTime    string `bson:"order_time,omitempty" json:"order_time,omitempty"`
	CheckoutTime string `bson:"checkout_time,omitempty" json:"checkout_time,omitempty"`
	GuestCount   int    `bson:"guest_count,omitempty" json:"guest_count,omitempty"`
}

type ReceiptItem struct {
	Name     string  `bson:"name" json:"name"`
	Quantity float64 `bson:"quantity" json:"quantity"`
	Total    float64 `bson:"total" json:"total"`
}

type ReceiptPayment struct {
	Subtotal float64  `bson:"subtotal" json:"subtotal"`
	Tax      *float64 `bson:"tax,omitempty" json:"tax,omitempty"`
	Tip      *float64 `bson:"tip,omitempty" json:"tip,omitempty"`
	Total    float64  `bson:"total" json:"total"`
	Currency string   `bson:"currency,omitempty" json:"currency,omitempty"`
}

// ProcessingMetadata is the bookkeeping block stamped by save and rewritten by
// update. UpdatedBy holds the callers that have modified the document; the
// current update protocol resets it to the latest caller only.
type ProcessingMetadata struct {
	ProcessedAt time.Time `bson:"processedAt,omitempty" json:"processedAt,omitempty"`
	UpdatedAt   time.Time `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
	Source      string    `bson:"source,omitempty" json:"source,omitempty"`
	UserID      string    `bson:"userId,omitempty" json:"userId,omitempty"`
	UpdatedBy   []string  `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
}
