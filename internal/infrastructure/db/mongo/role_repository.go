package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/user-admin/internal/core/domain"
)

// RoleRepository implements ports.RoleRepository using MongoDB.
type RoleRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
}

// NewRoleRepository creates a new RoleRepository.
func NewRoleRepository(db *mongo.Database) *RoleRepository {
	return &RoleRepository{db: db, coll: db.Collection(rolesCollection)}
}

type mongoRole struct {
	ID   int64  `bson:"_id"`
	Name string `bson:"name"`
}

func (r *RoleRepository) FindByName(ctx context.Context, name string) (*domain.Role, error) {
	var mr mongoRole
	if err := r.coll.FindOne(ctx, bson.M{"name": name}).Decode(&mr); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRoleNotFound
		}
		return nil, fmt.Errorf("find role: %w", err)
	}
	return &domain.Role{ID: mr.ID, Name: mr.Name}, nil
}

func (r *RoleRepository) FindByIDs(ctx context.Context, ids []int64) ([]domain.Role, error) {
	if len(ids) == 0 {
		return []domain.Role{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *RoleRepository) FindAll(ctx context.Context) ([]domain.Role, error) {
	return r.find(ctx, bson.M{})
}

func (r *RoleRepository) Save(ctx context.Context, role *domain.Role) error {
	if role.ID == 0 {
		id, err := nextID(ctx, r.db, rolesCollection)
		if err != nil {
			return err
		}
		if _, err := r.coll.InsertOne(ctx, mongoRole{ID: id, Name: role.Name}); err != nil {
			return fmt.Errorf("insert role: %w", err)
		}
		role.ID = id
		return nil
	}

	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": role.ID}, mongoRole{ID: role.ID, Name: role.Name},
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("replace role: %w", err)
	}
	return nil
}

func (r *RoleRepository) find(ctx context.Context, filter bson.M) ([]domain.Role, error) {
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find roles: %w", err)
	}
	var docs []mongoRole
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode roles: %w", err)
	}

	roles := make([]domain.Role, 0, len(docs))
	for _, d := range docs {
		roles = append(roles, domain.Role{ID: d.ID, Name: d.Name})
	}
	return roles, nil
}
