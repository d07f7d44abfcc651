package mongo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/breathscope/identity-api/internal/core/domain"
	"github.com/breathscope/identity-api/internal/core/ports"
)

const userCollection = "users"

// caseInsensitive matches usernames regardless of case, both for lookups and
// for the unique index, so "Alice" and "alice" cannot coexist.
var caseInsensitive = options.Collation{Locale: "en", Strength: 2}

type MongoUserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{coll: db.Collection(userCollection)}
}

var _ ports.UserRepository = (*MongoUserRepository)(nil)

// EnsureIndexes creates the unique indexes that are the actual uniqueness
// guarantee behind the service-level pre-checks.
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_email"),
		},
		{
			Keys: bson.D{{Key: "username", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("uniq_username").
				SetCollation(&caseInsensitive),
		},
		{
			Keys: bson.D{{Key: "google_id", Value: 1}},
			Options: options.Index().
				SetName("google_id").
				SetPartialFilterExpression(bson.D{{Key: "google_id", Value: bson.D{{Key: "$exists", Value: true}}}}),
		},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}

type mongoUser struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Username       string             `bson:"username"`
	Email          string             `bson:"email"`
	PasswordHash   string             `bson:"password_hash,omitempty"`
	Role           string             `bson:"role"`
	Verified       bool               `bson:"verified"`
	GoogleID       string             `bson:"google_id,omitempty"`
	ProfilePicture string             `bson:"profile_picture,omitempty"`
	Phone          string             `bson:"phone,omitempty"`
	CreatedAt      int64              `bson:"created_at"`
	UpdatedAt      int64              `bson:"updated_at"`
}

func (r *MongoUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	doc := mongoUser{
		Username:       user.Username,
		Email:          user.Email,
		PasswordHash:   user.PasswordHash,
		Role:           string(user.Role),
		Verified:       user.Verified,
		GoogleID:       user.GoogleID,
		ProfilePicture: user.ProfilePicture,
		Phone:          user.Phone,
		CreatedAt:      user.CreatedAt.Unix(),
		UpdatedAt:      user.UpdatedAt.Unix(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, duplicateToDomain(err)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	created := *user
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

// duplicateToDomain attributes a duplicate-key error to the violated index.
// Email is assumed when attribution fails; the service checks email first too.
func duplicateToDomain(err error) error {
	if strings.Contains(err.Error(), "uniq_username") {
		return domain.ErrUsernameTaken
	}
	return domain.ErrEmailRegistered
}

func (r *MongoUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email}, nil)
}

func (r *MongoUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"username": username}, options.FindOne().SetCollation(&caseInsensitive))
}

func (r *MongoUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid}, nil)
}

func (r *MongoUserRepository) FindByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	if googleID == "" {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"google_id": googleID}, nil)
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M, opts *options.FindOneOptions) (*domain.User, error) {
	var mu mongoUser
	var err error
	if opts != nil {
		err = r.coll.FindOne(ctx, filter, opts).Decode(&mu)
	} else {
		err = r.coll.FindOne(ctx, filter).Decode(&mu)
	}
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *MongoUserRepository) SetVerified(ctx context.Context, email string) error {
	return r.updateOne(ctx, bson.M{"email": email}, bson.M{"verified": true})
}

func (r *MongoUserRepository) UpdatePasswordHash(ctx context.Context, email, passwordHash string) error {
	return r.updateOne(ctx, bson.M{"email": email}, bson.M{"password_hash": passwordHash})
}

func (r *MongoUserRepository) UpdateProfile(ctx context.Context, currentEmail string, update ports.ProfileUpdate) error {
	return r.updateOne(ctx, bson.M{"email": currentEmail}, bson.M{
		"email":    update.Email,
		"username": update.Username,
		"phone":    update.Phone,
	})
}

func (r *MongoUserRepository) LinkGoogleID(ctx context.Context, email, googleID string) error {
	return r.updateOne(ctx, bson.M{"email": email}, bson.M{"google_id": googleID})
}

func (r *MongoUserRepository) updateOne(ctx context.Context, filter, set bson.M) error {
	set["updated_at"] = time.Now().UTC().Unix()
	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return duplicateToDomain(err)
		}
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *MongoUserRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *MongoUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	cur, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cur.Close(ctx)

	var users []*domain.User
	for cur.Next(ctx) {
		var mu mongoUser
		if err := cur.Decode(&mu); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		users = append(users, mu.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// SignupsOverTime buckets account creations per day.
func (r *MongoUserRepository) SignupsOverTime(ctx context.Context) ([]ports.SignupBucket, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{
				{Key: "$dateToString", Value: bson.D{
					{Key: "format", Value: "%Y-%m-%d"},
					{Key: "date", Value: bson.D{
						{Key: "$toDate", Value: bson.D{
							{Key: "$multiply", Value: bson.A{"$created_at", 1000}},
						}},
					}},
				}},
			}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("signups aggregation: %w", err)
	}
	defer cur.Close(ctx)

	var buckets []ports.SignupBucket
	for cur.Next(ctx) {
		var row struct {
			Date  string `bson:"_id"`
			Count int64  `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, fmt.Errorf("decode signup bucket: %w", err)
		}
		buckets = append(buckets, ports.SignupBucket{Date: row.Date, Count: row.Count})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("signups aggregation: %w", err)
	}
	return buckets, nil
}

func (mu mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:             mu.ID.Hex(),
		Username:       mu.Username,
		Email:          mu.Email,
		PasswordHash:   mu.PasswordHash,
		Role:           domain.Role(mu.Role),
		Verified:       mu.Verified,
		GoogleID:       mu.GoogleID,
		ProfilePicture: mu.ProfilePicture,
		Phone:          mu.Phone,
		CreatedAt:      unixToTime(mu.CreatedAt),
		UpdatedAt:      unixToTime(mu.UpdatedAt),
	}
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
