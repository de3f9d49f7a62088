package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/medlab/diagnostic-booking/internal/core/domain"
)

const collectionTests = "tests"

// TestRepository stores the test catalog and its slot counters.
type TestRepository struct {
	col *mongo.Collection
}

func NewTestRepository(db *mongo.Database) *TestRepository {
	return &TestRepository{col: db.Collection(collectionTests)}
}

type mongoTest struct {
	ID      primitive.ObjectID `bson:"_id,omitempty"`
	Name    string             `bson:"name"`
	Image   string             `bson:"image,omitempty"`
	Details string             `bson:"details,omitempty"`
	Price   float64            `bson:"price"`
	Date    string             `bson:"date,omitempty"`
	Slots   int                `bson:"slots"`
	Booked  int                `bson:"booked"`
}

func (m mongoTest) toDomain() domain.Test {
	return domain.Test{
		ID:      m.ID.Hex(),
		Name:    m.Name,
		Image:   m.Image,
		Details: m.Details,
		Price:   m.Price,
		Date:    m.Date,
		Slots:   m.Slots,
		Booked:  m.Booked,
	}
}

func (r *TestRepository) List(ctx context.Context) ([]domain.Test, error) {
	return r.find(ctx, bson.M{})
}

func (r *TestRepository) FindByID(ctx context.Context, id string) (*domain.Test, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mt mongoTest
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&mt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTestNotFound
		}
		return nil, fmt.Errorf("find test: %w", err)
	}
	t := mt.toDomain()
	return &t, nil
}

// FindByIDs returns the tests whose ids appear in ids with a single $in query.
// Malformed ids are skipped.
func (r *TestRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Test, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return []domain.Test{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": oids}})
}

func (r *TestRepository) Create(ctx context.Context, test *domain.Test) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, mongoTest{
		Name:    test.Name,
		Image:   test.Image,
		Details: test.Details,
		Price:   test.Price,
		Date:    test.Date,
		Slots:   test.Slots,
		Booked:  test.Booked,
	})
	if err != nil {
		return "", fmt.Errorf("insert test: %w", err)
	}
	return insertedHex(res.InsertedID), nil
}

func (r *TestRepository) Update(ctx context.Context, id string, patch domain.TestPatch) (domain.UpdateResult, error) {
	oid, err := objectID(id)
	if err != nil {
		return domain.UpdateResult{}, err
	}
	set := testPatchSet(patch)
	if len(set) == 0 {
		return domain.UpdateResult{}, domain.ErrInvalidInput
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return domain.UpdateResult{}, fmt.Errorf("update test: %w", err)
	}
	return updateResult(res), nil
}

func (r *TestRepository) Delete(ctx context.Context, id string) (domain.DeleteResult, error) {
	oid, err := objectID(id)
	if err != nil {
		return domain.DeleteResult{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return domain.DeleteResult{}, fmt.Errorf("delete test: %w", err)
	}
	return domain.DeleteResult{DeletedCount: res.DeletedCount}, nil
}

// AdjustSlots moves delta units between booked and slots in one atomic
// single-document $inc. With guard and a negative delta the filter also
// requires slots >= -delta, so a full test matches nothing.
func (r *TestRepository) AdjustSlots(ctx context.Context, id string, delta int, guard bool) (domain.UpdateResult, error) {
	oid, err := objectID(id)
	if err != nil {
		return domain.UpdateResult{}, err
	}

	filter := bson.M{"_id": oid}
	if guard && delta < 0 {
		filter["slots"] = bson.M{"$gte": -delta}
	}
	update := bson.M{"$inc": bson.M{"slots": delta, "booked": -delta}}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return domain.UpdateResult{}, fmt.Errorf("adjust slots: %w", err)
	}
	return updateResult(res), nil
}

func (r *TestRepository) find(ctx context.Context, filter bson.M) ([]domain.Test, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find tests: %w", err)
	}
	var docs []mongoTest
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode tests: %w", err)
	}

	tests := make([]domain.Test, 0, len(docs))
	for _, d := range docs {
		tests = append(tests, d.toDomain())
	}
	return tests, nil
}

func testPatchSet(p domain.TestPatch) bson.M {
	set := bson.M{}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Image != nil {
		set["image"] = *p.Image
	}
	if p.Details != nil {
		set["details"] = *p.Details
	}
	if p.Price != nil {
		set["price"] = *p.Price
	}
	if p.Date != nil {
		set["date"] = *p.Date
	}
	if p.Slots != nil {
		set["slots"] = *p.Slots
	}
	if p.Booked != nil {
		set["booked"] = *p.Booked
	}
	return set
}
