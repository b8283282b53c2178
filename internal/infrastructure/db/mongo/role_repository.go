package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/helpdesk/ticket-system/internal/core/domain"
)

type RoleRepository struct {
	roles     *mongo.Collection
	userRoles *mongo.Collection
}

func NewRoleRepository(db *mongo.Database) *RoleRepository {
	return &RoleRepository{
		roles:     db.Collection(collectionRoles),
		userRoles: db.Collection(collectionUserRoles),
	}
}

// roleDoc stores the display name alongside a normalized key used for
// case-insensitive uniqueness and lookup.
type roleDoc struct {
	ID      string `bson:"_id"`
	Name    string `bson:"name"`
	NameKey string `bson:"name_key"`
}

func (d roleDoc) toDomain() *domain.Role {
	return &domain.Role{ID: d.ID, Name: d.Name}
}

func (r *RoleRepository) FindByID(ctx context.Context, id string) (*domain.Role, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *RoleRepository) FindByName(ctx context.Context, name string) (*domain.Role, error) {
	return r.findOne(ctx, bson.M{"name_key": domain.NormalizeRoleName(name)})
}

func (r *RoleRepository) findOne(ctx context.Context, filter bson.M) (*domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc roleDoc
	if err := r.roles.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, notFoundOr(err, domain.ErrRoleNotFound, "find role")
	}
	return doc.toDomain(), nil
}

// roleListOptions orders roles by their case-folded name, matching how names
// are compared.
func roleListOptions() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "name_key", Value: 1}})
}

func (r *RoleRepository) List(ctx context.Context) ([]*domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.roles.Find(ctx, bson.M{}, roleListOptions())
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer cur.Close(ctx)

	var docs []roleDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode roles: %w", err)
	}
	out := make([]*domain.Role, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *RoleRepository) Create(ctx context.Context, role *domain.Role) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := roleDoc{ID: role.ID, Name: role.Name, NameKey: domain.NormalizeRoleName(role.Name)}
	if _, err := r.roles.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateRoleName
		}
		return fmt.Errorf("insert role: %w", err)
	}
	return nil
}

// Delete removes the role and every membership that references it.
func (r *RoleRepository) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.roles.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("delete role: %w", err)
	}
	if res.DeletedCount == 0 {
		return false, nil
	}
	if _, err := r.userRoles.DeleteMany(ctx, bson.M{"role_id": id}); err != nil {
		return false, fmt.Errorf("delete role memberships: %w", err)
	}
	return true, nil
}

type MembershipRepository struct {
	roles     *mongo.Collection
	userRoles *mongo.Collection
}

func NewMembershipRepository(db *mongo.Database) *MembershipRepository {
	return &MembershipRepository{
		roles:     db.Collection(collectionRoles),
		userRoles: db.Collection(collectionUserRoles),
	}
}

type userRoleDoc struct {
	UserID     string    `bson:"user_id"`
	RoleID     string    `bson:"role_id"`
	AssignedAt time.Time `bson:"assigned_at"`
}

// ListByUser returns the user's memberships with role names resolved from
// the roles collection. Links to missing roles are skipped.
func (r *MembershipRepository) ListByUser(ctx context.Context, userID string) ([]domain.Membership, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.userRoles.Find(ctx, bson.M{"user_id": userID}, options.Find().SetSort(bson.D{{Key: "assigned_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	var links []userRoleDoc
	if err := cur.All(ctx, &links); err != nil {
		return nil, fmt.Errorf("decode memberships: %w", err)
	}
	if len(links) == 0 {
		return []domain.Membership{}, nil
	}

	ids := make([]string, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.RoleID)
	}
	rcur, err := r.roles.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}
	var roles []roleDoc
	if err := rcur.All(ctx, &roles); err != nil {
		return nil, fmt.Errorf("decode roles: %w", err)
	}
	names := make(map[string]string, len(roles))
	for _, role := range roles {
		names[role.ID] = role.Name
	}

	out := make([]domain.Membership, 0, len(links))
	for _, l := range links {
		name, ok := names[l.RoleID]
		if !ok {
			continue
		}
		out = append(out, domain.Membership{
			UserID:     l.UserID,
			RoleID:     l.RoleID,
			RoleName:   name,
			AssignedAt: l.AssignedAt.UTC(),
		})
	}
	return out, nil
}

// ReplaceForUser drops the user's links and inserts ms. Run it inside a
// transaction so readers never observe the empty intermediate state.
func (r *MembershipRepository) ReplaceForUser(ctx context.Context, userID string, ms []domain.Membership) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.userRoles.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("clear memberships: %w", err)
	}
	if len(ms) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(ms))
	for _, m := range ms {
		docs = append(docs, userRoleDoc{UserID: userID, RoleID: m.RoleID, AssignedAt: m.AssignedAt.UTC()})
	}
	if _, err := r.userRoles.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert memberships: %w", err)
	}
	return nil
}
