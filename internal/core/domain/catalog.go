package domain

// Test is a bookable diagnostic test offered by the center.
// Slots is the remaining capacity, Booked the number of live bookings.
type Test struct {
	ID      string  `json:"_id,omitempty" bson:"_id,omitempty"`
	Name    string  `json:"name" bson:"name"`
	Image   string  `json:"image,omitempty" bson:"image,omitempty"`
	Details string  `json:"details,omitempty" bson:"details,omitempty"`
	Price   float64 `json:"price" bson:"price"`
	Date    string  `json:"date,omitempty" bson:"date,omitempty"`
	Slots   int     `json:"slots" bson:"slots"`
	Booked  int     `json:"booked" bson:"booked"`
}

// TestPatch carries a partial update for a Test.
type TestPatch struct {
	Name    *string
	Image   *string
	Details *string
	Price   *float64
	Date    *string
	Slots   *int
	Booked  *int
}

func (p TestPatch) Empty() bool {
	return p.Name == nil && p.Image == nil && p.Details == nil && p.Price == nil &&
		p.Date == nil && p.Slots == nil && p.Booked == nil
}
