package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cervak/pricesurvey-api/internal/core/domain"
	"github.com/cervak/pricesurvey-api/internal/core/ports"
)

const (
	administratorsCollection = "administrators"
	usersCollection          = "users"
	operativeUsersCollection = "operative_users"
)

// ActorRepository is the MongoDB adapter for one actor variant. The three
// variants share the document shape; the variant-specific fields are simply
// absent on the others.
type ActorRepository struct {
	coll      *mongo.Collection
	actorType domain.ActorType
}

func NewAdministratorRepository(db *mongo.Database) *ActorRepository {
	return &ActorRepository{coll: db.Collection(administratorsCollection), actorType: domain.ActorTypeAdmin}
}

func NewUserRepository(db *mongo.Database) *ActorRepository {
	return &ActorRepository{coll: db.Collection(usersCollection), actorType: domain.ActorTypeUser}
}

func NewOperativeUserRepository(db *mongo.Database) *ActorRepository {
	return &ActorRepository{coll: db.Collection(operativeUsersCollection), actorType: domain.ActorTypeOperative}
}

type actorDoc struct {
	ID                primitive.ObjectID                  `bson:"_id,omitempty"`
	FullName          string                              `bson:"full_name"`
	Email             string                              `bson:"email"`
	Username          string                              `bson:"username"`
	PasswordHash      string                              `bson:"password_hash"`
	Enabled           bool                                `bson:"enabled"`
	RefreshTokenHash  *string                             `bson:"refresh_token_hash"`
	Language          string                              `bson:"language,omitempty"`
	CreatedByID       string                              `bson:"created_by_id,omitempty"`
	Modules           map[string]domain.ModulePermissions `bson:"modules,omitempty"`
	RecoverPasswordID *string                             `bson:"recover_password_id,omitempty"`
	CreatedAt         time.Time                           `bson:"created_at"`
	UpdatedAt         time.Time                           `bson:"updated_at"`
	DeletedAt         *time.Time                          `bson:"deleted_at"`
}

func (r *ActorRepository) Create(ctx context.Context, actor *domain.Actor) (*domain.Actor, error) {
	doc := actorDoc{
		FullName:     actor.FullName,
		Email:        actor.Email,
		Username:     actor.Username,
		PasswordHash: actor.PasswordHash,
		Enabled:      actor.Enabled,
		Language:     actor.Language,
		CreatedByID:  actor.CreatedByID,
		Modules:      actor.Modules,
		CreatedAt:    actor.CreatedAt,
		UpdatedAt:    actor.UpdatedAt,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		// The unique index is the authoritative duplicate guard; a race
		// past the advisory check lands here and reports the same
		// conflict.
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrActorExists
		}
		return nil, fmt.Errorf("insert actor: %w", err)
	}

	created := *actor
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	created.Type = r.actorType
	return &created, nil
}

func (r *ActorRepository) FindByID(ctx context.Context, id string) (*domain.Actor, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrActorNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *ActorRepository) FindByEmail(ctx context.Context, email string) (*domain.Actor, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *ActorRepository) FindByUsername(ctx context.Context, username string) (*domain.Actor, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *ActorRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, bson.M{"email": email})
}

func (r *ActorRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, bson.M{"username": username})
}

func (r *ActorRepository) Update(ctx context.Context, id string, upd ports.ActorUpdate) (*domain.Actor, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrActorNotFound
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.FullName != nil {
		set["full_name"] = *upd.FullName
	}
	if upd.Email != nil {
		set["email"] = *upd.Email
	}
	if upd.Language != nil {
		set["language"] = *upd.Language
	}
	if upd.Modules != nil {
		set["modules"] = upd.Modules
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrActorExists
		}
		return nil, fmt.Errorf("update actor: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrActorNotFound
	}
	return r.FindByID(ctx, id)
}

// SetEnabled toggles the actor. Disabling clears the refresh-token hash in
// the same single-document update, so there is no window in which a
// disabled actor still holds a usable refresh token.
func (r *ActorRepository) SetEnabled(ctx context.Context, id string, enabled bool) (*domain.Actor, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrActorNotFound
	}

	set := bson.M{
		"enabled":    enabled,
		"updated_at": time.Now().UTC(),
	}
	if !enabled {
		set["refresh_token_hash"] = nil
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return nil, fmt.Errorf("set enabled: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrActorNotFound
	}
	return r.FindByID(ctx, id)
}

// SoftDelete marks the actor deleted, disables it, and clears the
// refresh-token hash in one single-document update.
func (r *ActorRepository) SoftDelete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrActorNotFound
	}

	now := time.Now().UTC()
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"deleted_at":         now,
		"enabled":            false,
		"refresh_token_hash": nil,
		"updated_at":         now,
	}})
	if err != nil {
		return fmt.Errorf("soft delete actor: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrActorNotFound
	}
	return nil
}

func (r *ActorRepository) UpdateRefreshTokenHash(ctx context.Context, id, hash string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrActorNotFound
	}

	var value interface{}
	if hash != "" {
		value = hash
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"refresh_token_hash": value,
		"updated_at":         time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("update refresh token hash: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrActorNotFound
	}
	return nil
}

func (r *ActorRepository) List(ctx context.Context) ([]domain.Actor, error) {
	cur, err := r.coll.Find(ctx, bson.M{"deleted_at": nil},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list actors: %w", err)
	}
	defer cur.Close(ctx)

	var actors []domain.Actor
	for cur.Next(ctx) {
		var doc actorDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode actor: %w", err)
		}
		actors = append(actors, *r.toDomain(&doc))
	}
	return actors, cur.Err()
}

func (r *ActorRepository) findOne(ctx context.Context, filter bson.M) (*domain.Actor, error) {
	var doc actorDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrActorNotFound
		}
		return nil, fmt.Errorf("find actor: %w", err)
	}
	return r.toDomain(&doc), nil
}

func (r *ActorRepository) exists(ctx context.Context, filter bson.M) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count actors: %w", err)
	}
	return n > 0, nil
}

func (r *ActorRepository) toDomain(doc *actorDoc) *domain.Actor {
	actor := &domain.Actor{
		ID:           doc.ID.Hex(),
		Type:         r.actorType,
		FullName:     doc.FullName,
		Email:        doc.Email,
		Username:     doc.Username,
		PasswordHash: doc.PasswordHash,
		Enabled:      doc.Enabled,
		Language:     doc.Language,
		CreatedByID:  doc.CreatedByID,
		Modules:      doc.Modules,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
		DeletedAt:    doc.DeletedAt,
	}
	if doc.RefreshTokenHash != nil {
		actor.RefreshTokenHash = *doc.RefreshTokenHash
	}
	if doc.RecoverPasswordID != nil {
		actor.RecoverPasswordID = *doc.RecoverPasswordID
	}
	return actor
}
