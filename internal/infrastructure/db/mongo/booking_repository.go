package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/medlab/diagnostic-booking/internal/core/domain"
)

const collectionBookings = "bookings"

// BookingRepository stores reservations. Fields merged in after creation that
// have no dedicated column are surfaced through Booking.Meta.
type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection(collectionBookings)}
}

type mongoBooking struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	ServiceID   string             `bson:"serviceId"`
	ServiceName string             `bson:"serviceName,omitempty"`
	Email       string             `bson:"email"`
	Name        string             `bson:"name,omitempty"`
	Date        string             `bson:"date,omitempty"`
	Price       float64            `bson:"price,omitempty"`
	Status      string             `bson:"status,omitempty"`
	Report      string             `bson:"report,omitempty"`
	Meta        bson.M             `bson:"meta,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt"`
	Extra       bson.M             `bson:",inline"`
}

func (m mongoBooking) toDomain() domain.Booking {
	b := domain.Booking{
		ID:          m.ID.Hex(),
		ServiceID:   m.ServiceID,
		ServiceName: m.ServiceName,
		Email:       m.Email,
		Name:        m.Name,
		Date:        m.Date,
		Price:       m.Price,
		Status:      m.Status,
		Report:      m.Report,
		CreatedAt:   m.CreatedAt,
	}
	if len(m.Meta)+len(m.Extra) > 0 {
		b.Meta = make(map[string]any, len(m.Meta)+len(m.Extra))
		for k, v := range m.Extra {
			b.Meta[k] = v
		}
		for k, v := range m.Meta {
			b.Meta[k] = v
		}
	}
	return b
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoBooking{
		ServiceID:   b.ServiceID,
		ServiceName: b.ServiceName,
		Email:       b.Email,
		Name:        b.Name,
		Date:        b.Date,
		Price:       b.Price,
		Status:      b.Status,
		Report:      b.Report,
		CreatedAt:   b.CreatedAt.UTC(),
	}
	if len(b.Meta) > 0 {
		doc.Meta = bson.M(b.Meta)
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("insert booking: %w", err)
	}
	return insertedHex(res.InsertedID), nil
}

func (r *BookingRepository) ListByEmail(ctx context.Context, email string) ([]domain.Booking, error) {
	return r.find(ctx, bson.M{"email": email})
}

func (r *BookingRepository) ListByService(ctx context.Context, serviceID string) ([]domain.Booking, error) {
	return r.find(ctx, bson.M{"serviceId": serviceID})
}

// DeleteByServiceAndEmail removes every reservation of email for serviceID.
func (r *BookingRepository) DeleteByServiceAndEmail(ctx context.Context, serviceID, email string) (domain.DeleteResult, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteMany(ctx, bson.M{"serviceId": serviceID, "email": email})
	if err != nil {
		return domain.DeleteResult{}, fmt.Errorf("delete bookings: %w", err)
	}
	return domain.DeleteResult{DeletedCount: res.DeletedCount}, nil
}

// Merge $sets fields on the booking. Keys are checked with
// domain.ValidateMergeFields before they reach the store.
func (r *BookingRepository) Merge(ctx context.Context, id string, fields map[string]any) (domain.UpdateResult, error) {
	oid, err := objectID(id)
	if err != nil {
		return domain.UpdateResult{}, err
	}
	if err := domain.ValidateMergeFields(fields); err != nil {
		return domain.UpdateResult{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M(fields)})
	if err != nil {
		return domain.UpdateResult{}, fmt.Errorf("merge booking: %w", err)
	}
	return updateResult(res), nil
}

// EnsureIndexes creates the lookup indexes used by the read and cancel paths.
func (r *BookingRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}},
		{Keys: bson.D{{Key: "serviceId", Value: 1}, {Key: "email", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *BookingRepository) find(ctx context.Context, filter bson.M) ([]domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find bookings: %w", err)
	}
	var docs []mongoBooking
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode bookings: %w", err)
	}

	out := make([]domain.Booking, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}
