package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/serchbauti/technical-t1/internal/models"
)

const chargeCollection = "charges"

type ChargeRepository struct {
	coll *mongo.Collection
}

func NewChargeRepository(db *mongo.Database) *ChargeRepository {
	return &ChargeRepository{coll: db.Collection(chargeCollection)}
}

// EnsureIndexes creates the listing index and the sparse unique index
// on request_id. Uniqueness applies only to documents that carry the
// field; charges without a request_id are unrestricted.
func (r *ChargeRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "client_id", Value: 1}, {Key: "attempted_at", Value: -1}},
		},
		{
			Keys:    bson.D{{Key: "request_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	})
	return err
}

type chargeDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	ClientID    primitive.ObjectID `bson:"client_id"`
	CardID      primitive.ObjectID `bson:"card_id"`
	Amount      float64            `bson:"amount"`
	AttemptedAt time.Time          `bson:"attempted_at"`
	Status      string             `bson:"status"`
	ReasonCode  *string            `bson:"reason_code,omitempty"`
	Refunded    bool               `bson:"refunded"`
	RefundedAt  *time.Time         `bson:"refunded_at,omitempty"`
	// Omitted entirely when absent so the sparse unique index skips it.
	RequestID *string `bson:"request_id,omitempty"`
}

func (d *chargeDoc) toEntity() *models.Charge {
	return &models.Charge{
		ID:          d.ID.Hex(),
		ClientID:    d.ClientID.Hex(),
		CardID:      d.CardID.Hex(),
		Amount:      d.Amount,
		AttemptedAt: d.AttemptedAt,
		Status:      models.ChargeStatus(d.Status),
		ReasonCode:  d.ReasonCode,
		Refunded:    d.Refunded,
		RefundedAt:  d.RefundedAt,
		RequestID:   d.RequestID,
	}
}

func (r *ChargeRepository) Insert(ctx context.Context, charge *models.Charge) (*models.Charge, error) {
	clientID, err := primitive.ObjectIDFromHex(charge.ClientID)
	if err != nil {
		return nil, err
	}
	cardID, err := primitive.ObjectIDFromHex(charge.CardID)
	if err != nil {
		return nil, err
	}

	doc := &chargeDoc{
		ID:          primitive.NewObjectID(),
		ClientID:    clientID,
		CardID:      cardID,
		Amount:      charge.Amount,
		AttemptedAt: charge.AttemptedAt,
		Status:      string(charge.Status),
		ReasonCode:  charge.ReasonCode,
		Refunded:    charge.Refunded,
		RefundedAt:  charge.RefundedAt,
		RequestID:   charge.RequestID,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, models.ErrDuplicateRequestID
		}
		return nil, err
	}
	return doc.toEntity(), nil
}

func (r *ChargeRepository) FindByID(ctx context.Context, id string) (*models.Charge, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var doc chargeDoc
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.toEntity(), nil
}

func (r *ChargeRepository) FindByRequestID(ctx context.Context, requestID string) (*models.Charge, error) {
	var doc chargeDoc
	err := r.coll.FindOne(ctx, bson.M{"request_id": requestID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.toEntity(), nil
}

// Query lists a client's charges newest first, insertion order on equal
// timestamps. All filter fields combine with AND; Since is inclusive,
// Until exclusive.
func (r *ChargeRepository) Query(ctx context.Context, clientID string, filter models.ChargeFilter) ([]*models.Charge, error) {
	oid, err := primitive.ObjectIDFromHex(clientID)
	if err != nil {
		return []*models.Charge{}, nil
	}

	query := bson.M{"client_id": oid}
	if filter.Status != nil {
		query["status"] = string(*filter.Status)
	}
	attempted := bson.M{}
	if filter.Since != nil {
		attempted["$gte"] = *filter.Since
	}
	if filter.Until != nil {
		attempted["$lt"] = *filter.Until
	}
	if len(attempted) > 0 {
		query["attempted_at"] = attempted
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "attempted_at", Value: -1},
		{Key: "_id", Value: 1},
	})

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	charges := []*models.Charge{}
	for cursor.Next(ctx) {
		var doc chargeDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		charges = append(charges, doc.toEntity())
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return charges, nil
}

func (r *ChargeRepository) Update(ctx context.Context, charge *models.Charge) error {
	oid, err := primitive.ObjectIDFromHex(charge.ID)
	if err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{
		"refunded":    charge.Refunded,
		"refunded_at": charge.RefundedAt,
	}}
	_, err = r.coll.UpdateByID(ctx, oid, update)
	return err
}
