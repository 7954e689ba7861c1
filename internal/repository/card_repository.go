package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/serchbauti/technical-t1/internal/models"
)

const cardCollection = "cards"

type CardRepository struct {
	coll *mongo.Collection
}

func NewCardRepository(db *mongo.Database) *CardRepository {
	return &CardRepository{coll: db.Collection(cardCollection)}
}

// EnsureIndexes creates the client_id lookup index. Safe to call on
// every startup.
func (r *CardRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "client_id", Value: 1}},
	})
	return err
}

type cardDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	ClientID  primitive.ObjectID `bson:"client_id"`
	PANMasked string             `bson:"pan_masked"`
	Last4     string             `bson:"last4"`
	BIN       string             `bson:"bin"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func (d *cardDoc) toEntity() *models.Card {
	return &models.Card{
		ID:        d.ID.Hex(),
		ClientID:  d.ClientID.Hex(),
		PANMasked: d.PANMasked,
		Last4:     d.Last4,
		BIN:       d.BIN,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func (r *CardRepository) Insert(ctx context.Context, card *models.Card) (*models.Card, error) {
	clientID, err := primitive.ObjectIDFromHex(card.ClientID)
	if err != nil {
		return nil, err
	}

	doc := &cardDoc{
		ID:        primitive.NewObjectID(),
		ClientID:  clientID,
		PANMasked: card.PANMasked,
		Last4:     card.Last4,
		BIN:       card.BIN,
		CreatedAt: card.CreatedAt,
		UpdatedAt: card.UpdatedAt,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	return doc.toEntity(), nil
}

func (r *CardRepository) FindByID(ctx context.Context, id string) (*models.Card, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var doc cardDoc
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.toEntity(), nil
}

func (r *CardRepository) Update(ctx context.Context, card *models.Card) error {
	oid, err := primitive.ObjectIDFromHex(card.ID)
	if err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{
		"pan_masked": card.PANMasked,
		"last4":      card.Last4,
		"bin":        card.BIN,
		"updated_at": card.UpdatedAt,
	}}
	_, err = r.coll.UpdateByID(ctx, oid, update)
	return err
}

func (r *CardRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}
