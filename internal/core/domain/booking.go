package domain

import (
	"encoding/hex"
	"math"
	"strings"
	"time"
)

const (
	BookingPending   = "pending"
	BookingDelivered = "delivered"
)

// Booking is a reservation of one Test by one user. ServiceID holds the hex
// id of the referenced Test.
type Booking struct {
	ID          string         `json:"_id,omitempty" bson:"_id,omitempty"`
	ServiceID   string         `json:"serviceId" bson:"serviceId"`
	ServiceName string         `json:"serviceName,omitempty" bson:"serviceName,omitempty"`
	Email       string         `json:"email" bson:"email"`
	Name        string         `json:"name,omitempty" bson:"name,omitempty"`
	Date        string         `json:"date,omitempty" bson:"date,omitempty"`
	Price       float64        `json:"price,omitempty" bson:"price,omitempty"`
	Status      string         `json:"status,omitempty" bson:"status,omitempty"`
	Report      string         `json:"report,omitempty" bson:"report,omitempty"`
	Meta        map[string]any `json:"meta,omitempty" bson:"meta,omitempty"`
	CreatedAt   time.Time      `json:"createdAt" bson:"createdAt"`
}

// UpdateResult mirrors the counters a document store reports for an update.
// Zero counts are a valid outcome, not an error.
type UpdateResult struct {
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}

// DeleteResult mirrors the counter a document store reports for a delete.
type DeleteResult struct {
	DeletedCount int64 `json:"deletedCount"`
}

// IsValidID reports whether id is a 24-character hex object id.
func IsValidID(id string) bool {
	if len(id) != 24 {
		return false
	}
	_, err := hex.DecodeString(id)
	return err == nil
}

// IsBookingStatus reports whether s is a known reservation status.
func IsBookingStatus(s string) bool {
	return s == BookingPending || s == BookingDelivered
}

// mergeChecks holds the value check for every top-level booking field with a
// fixed type. Keys not listed here are free-form and read back through Meta.
var mergeChecks = map[string]func(any) bool{
	"serviceId":   stringWhere(IsValidID),
	"serviceName": stringWhere(nil),
	"email":       stringWhere(func(s string) bool { return strings.TrimSpace(s) != "" }),
	"name":        stringWhere(nil),
	"date":        stringWhere(nil),
	"report":      stringWhere(nil),
	"status":      stringWhere(IsBookingStatus),
	"price":       isNonNegativeNumber,
	"meta":        isObject,
}

// ValidateMergeFields checks a reservation field merge. It rejects the
// document id, createdAt, update operators, dotted paths into typed fields,
// and values whose type does not match the stored field.
func ValidateMergeFields(fields map[string]any) error {
	if len(fields) == 0 {
		return ErrInvalidInput
	}
	for k, v := range fields {
		if k == "" || strings.HasPrefix(k, "$") || strings.Contains(k, ".$") {
			return ErrInvalidInput
		}
		root, _, dotted := strings.Cut(k, ".")
		if root == "_id" || root == "createdAt" {
			return ErrInvalidInput
		}
		check, typed := mergeChecks[root]
		if !typed {
			continue
		}
		if dotted {
			if root != "meta" {
				return ErrInvalidInput
			}
			continue
		}
		if !check(v) {
			return ErrInvalidInput
		}
	}
	return nil
}

func stringWhere(valid func(string) bool) func(any) bool {
	return func(v any) bool {
		s, ok := v.(string)
		return ok && (valid == nil || valid(s))
	}
}

func isObject(v any) bool {
	_, ok := v.(map[string]any)
	return ok
}

func isNonNegativeNumber(v any) bool {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	default:
		return false
	}
	return f >= 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}
