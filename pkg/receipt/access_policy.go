package receipt

import (
	"go.mongodb.org/mongo-driver/bson"
)

// AccessPolicy decides whether a subject may read or modify a stored receipt.
// Ownership enforcement is intentionally disabled in the shipped product; the
// default policy allows any authenticated caller, and a stricter one can be
// swapped in without touching the handlers.
type AccessPolicy interface {
	MayAccess(userID string, doc bson.M) bool
}

type allowAllPolicy struct{}

func NewAllowAllPolicy() AccessPolicy {
	return allowAllPolicy{}
}

func (allowAllPolicy) MayAccess(string, bson.M) bool {
	return true
}
