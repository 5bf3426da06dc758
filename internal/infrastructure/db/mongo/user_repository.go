package mongo

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/user-admin/internal/core/domain"
)

// UserRepository implements ports.UserRepository using MongoDB. Role
// membership is stored on the user document as role_ids.
type UserRepository struct {
	db    *mongo.Database
	coll  *mongo.Collection
	roles *RoleRepository
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		db:    db,
		coll:  db.Collection(usersCollection),
		roles: NewRoleRepository(db),
	}
}

type mongoUser struct {
	ID           int64     `bson:"_id"`
	Username     string    `bson:"username"`
	FirstName    string    `bson:"first_name"`
	LastName     string    `bson:"last_name"`
	Email        string    `bson:"email,omitempty"`
	Age          int       `bson:"age"`
	PasswordHash string    `bson:"password_hash"`
	RoleIDs      []int64   `bson:"role_ids"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func toMongoUser(u *domain.User) mongoUser {
	return mongoUser{
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		Age:          u.Age,
		PasswordHash: u.PasswordHash,
		RoleIDs:      u.RoleIDs(),
		CreatedAt:    u.CreatedAt.UTC(),
		UpdatedAt:    u.UpdatedAt.UTC(),
	}
}

func (m mongoUser) toDomain(roles []domain.Role) *domain.User {
	return &domain.User{
		ID:           m.ID,
		Username:     m.Username,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		Email:        m.Email,
		Age:          m.Age,
		PasswordHash: m.PasswordHash,
		Roles:        roles,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"username": username}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return n > 0, nil
}

func (r *UserRepository) Save(ctx context.Context, user *domain.User) error {
	if user.ID == 0 {
		id, err := nextID(ctx, r.db, usersCollection)
		if err != nil {
			return err
		}
		doc := toMongoUser(user)
		doc.ID = id
		if _, err := r.coll.InsertOne(ctx, doc); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return &domain.DuplicateUsernameError{Username: user.Username}
			}
			return fmt.Errorf("insert user: %w", err)
		}
		user.ID = id
		return nil
	}

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": user.ID}, toMongoUser(user))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return &domain.DuplicateUsernameError{Username: user.Username}
		}
		return fmt.Errorf("replace user: %w", err)
	}
	if res.MatchedCount == 0 {
		return &domain.UserNotFoundError{ID: user.ID}
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, user *domain.User) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": user.ID}); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (r *UserRepository) FindAll(ctx context.Context) ([]*domain.User, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	var docs []mongoUser
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	all, err := r.roles.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]domain.Role, len(all))
	for _, role := range all {
		byID[role.ID] = role
	}

	users := make([]*domain.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.toDomain(pickRoles(byID, d.RoleIDs)))
	}
	return users, nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	roles, err := r.roles.FindByIDs(ctx, mu.RoleIDs)
	if err != nil {
		return nil, err
	}
	return mu.toDomain(roles), nil
}

// pickRoles returns the known roles among ids ordered by id.
func pickRoles(byID map[int64]domain.Role, ids []int64) []domain.Role {
	roles := make([]domain.Role, 0, len(ids))
	for _, id := range ids {
		if role, ok := byID[id]; ok {
			roles = append(roles, role)
		}
	}
	slices.SortFunc(roles, func(a, b domain.Role) int { return cmp.Compare(a.ID, b.ID) })
	return roles
}
