package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

// Collection names.
const (
	productsCollection   = "products"
	categoriesCollection = "categories"
	usersCollection      = "users"
	ordersCollection     = "orders"
)

// MongoStore implements Store on a MongoDB database.
type MongoStore struct {
	db         *mongo.Database
	products   *mongo.Collection
	categories *mongo.Collection
	users      *mongo.Collection
	orders     *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		db:         db,
		products:   db.Collection(productsCollection),
		categories: db.Collection(categoriesCollection),
		users:      db.Collection(usersCollection),
		orders:     db.Collection(ordersCollection),
	}
}

// Database exposes the underlying database for the log sink.
func (s *MongoStore) Database() *mongo.Database { return s.db }

func (s *MongoStore) Driver() string { return "mongo" }

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, readpref.Primary())
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.db.Client().Disconnect(ctx)
}

// Migrate creates the unique and sort indexes. CreateMany is a no-op for
// indexes that already exist with the same definition.
func (s *MongoStore) Migrate(ctx context.Context) error {
	indexes := map[*mongo.Collection][]mongo.IndexModel{
		s.users: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		s.categories: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		s.products: {
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "stock", Value: -1}}},
			{Keys: bson.D{{Key: "category", Value: 1}}},
		},
		s.orders: {
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "userId", Value: 1}}},
		},
	}
	for col, specs := range indexes {
		if _, err := col.Indexes().CreateMany(ctx, specs); err != nil {
			return fmt.Errorf("mongo: create indexes on %s: %w", col.Name(), err)
		}
	}
	return nil
}

// ── products ────────────────────────────────────────────────────────────

func (s *MongoStore) FindProducts(ctx context.Context, q ProductQuery) ([]models.Product, error) {
	defer metrics.ObserveStoreOp("mongo", "find_products", time.Now())

	opts := options.Find().SetSort(mongoSort(q.Sort))
	if q.Skip > 0 {
		opts.SetSkip(int64(q.Skip))
	}
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cur, err := s.products.Find(ctx, mongoFilter(q.Filter), opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: find products: %w", err)
	}
	out := []models.Product{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("mongo: decode products: %w", err)
	}
	return out, nil
}

func (s *MongoStore) CountProducts(ctx context.Context, f Filter) (int64, error) {
	defer metrics.ObserveStoreOp("mongo", "count_products", time.Now())

	n, err := s.products.CountDocuments(ctx, mongoFilter(f))
	if err != nil {
		return 0, fmt.Errorf("mongo: count products: %w", err)
	}
	return n, nil
}

func (s *MongoStore) FindProduct(ctx context.Context, id string) (*models.Product, error) {
	defer metrics.ObserveStoreOp("mongo", "find_product", time.Now())

	var p models.Product
	if found, err := findOne(ctx, s.products, bson.M{"_id": id}, &p); !found {
		return nil, err
	}
	return &p, nil
}

func (s *MongoStore) InsertProduct(ctx context.Context, p *models.Product) error {
	defer metrics.ObserveStoreOp("mongo", "insert_product", time.Now())
	return insertOne(ctx, s.products, p)
}

func (s *MongoStore) ReplaceProduct(ctx context.Context, p *models.Product) (bool, error) {
	defer metrics.ObserveStoreOp("mongo", "replace_product", time.Now())
	return replaceOne(ctx, s.products, p.ID, p)
}

func (s *MongoStore) DeleteProduct(ctx context.Context, id string) (bool, error) {
	defer metrics.ObserveStoreOp("mongo", "delete_product", time.Now())
	return deleteOne(ctx, s.products, id)
}

// ── categories ──────────────────────────────────────────────────────────

func (s *MongoStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	defer metrics.ObserveStoreOp("mongo", "list_categories", time.Now())

	cur, err := s.categories.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("mongo: find categories: %w", err)
	}
	out := []models.Category{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("mongo: decode categories: %w", err)
	}
	return out, nil
}

func (s *MongoStore) FindCategory(ctx context.Context, id string) (*models.Category, error) {
	var c models.Category
	if found, err := findOne(ctx, s.categories, bson.M{"_id": id}, &c); !found {
		return nil, err
	}
	return &c, nil
}

func (s *MongoStore) InsertCategory(ctx context.Context, c *models.Category) error {
	return insertOne(ctx, s.categories, c)
}

func (s *MongoStore) ReplaceCategory(ctx context.Context, c *models.Category) (bool, error) {
	return replaceOne(ctx, s.categories, c.ID, c)
}

func (s *MongoStore) DeleteCategory(ctx context.Context, id string) (bool, error) {
	return deleteOne(ctx, s.categories, id)
}

// ── users ───────────────────────────────────────────────────────────────

func (s *MongoStore) FindUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if found, err := findOne(ctx, s.users, bson.M{"_id": id}, &u); !found {
		return nil, err
	}
	return &u, nil
}

func (s *MongoStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if found, err := findOne(ctx, s.users, bson.M{"email": email}, &u); !found {
		return nil, err
	}
	return &u, nil
}

func (s *MongoStore) InsertUser(ctx context.Context, u *models.User) error {
	return insertOne(ctx, s.users, u)
}

func (s *MongoStore) SetFavoriteCategories(ctx context.Context, id string, categories []string, at time.Time) (bool, error) {
	if categories == nil {
		categories = []string{}
	}
	res, err := s.users.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"favoriteCategories": categories,
		"updatedAt":          at,
	}})
	if err != nil {
		return false, fmt.Errorf("mongo: update users: %w", err)
	}
	return res.MatchedCount > 0, nil
}

// ── orders ──────────────────────────────────────────────────────────────

func (s *MongoStore) FindOrders(ctx context.Context, skip, limit int) ([]models.Order, error) {
	defer metrics.ObserveStoreOp("mongo", "find_orders", time.Now())

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if skip > 0 {
		opts.SetSkip(int64(skip))
	}
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := s.orders.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: find orders: %w", err)
	}
	out := []models.Order{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("mongo: decode orders: %w", err)
	}
	return out, nil
}

func (s *MongoStore) CountOrders(ctx context.Context) (int64, error) {
	n, err := s.orders.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("mongo: count orders: %w", err)
	}
	return n, nil
}

func (s *MongoStore) InsertOrder(ctx context.Context, o *models.Order) error {
	return insertOne(ctx, s.orders, o)
}

func (s *MongoStore) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus, at time.Time) (*models.Order, error) {
	var o models.Order
	err := s.orders.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updatedAt": at}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongo: update order: %w", err)
	}
	return &o, nil
}

func (s *MongoStore) DeleteOrder(ctx context.Context, id string) (bool, error) {
	return deleteOne(ctx, s.orders, id)
}

// ── helpers ─────────────────────────────────────────────────────────────

func findOne(ctx context.Context, col *mongo.Collection, filter bson.M, dest interface{}) (bool, error) {
	err := col.FindOne(ctx, filter).Decode(dest)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("mongo: find %s: %w", col.Name(), err)
	}
	return true, nil
}

func insertOne(ctx context.Context, col *mongo.Collection, doc interface{}) error {
	if _, err := col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("mongo: insert %s: %w", col.Name(), err)
	}
	return nil
}

func replaceOne(ctx context.Context, col *mongo.Collection, id string, doc interface{}) (bool, error) {
	res, err := col.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, ErrDuplicate
		}
		return false, fmt.Errorf("mongo: replace %s: %w", col.Name(), err)
	}
	return res.MatchedCount > 0, nil
}

func deleteOne(ctx context.Context, col *mongo.Collection, id string) (bool, error) {
	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("mongo: delete %s: %w", col.Name(), err)
	}
	return res.DeletedCount > 0, nil
}

// mongoFilter translates a Filter into a query document.
func mongoFilter(f Filter) bson.M {
	switch f := filterOrAll(f).(type) {
	case TextMatch:
		if f.Term == "" {
			return bson.M{}
		}
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Term), Options: "i"}
		return bson.M{"$or": bson.A{
			bson.M{"title": re},
			bson.M{"description": re},
		}}
	case CategoryIn:
		return bson.M{"category": bson.M{"$in": append([]string{}, f.IDs...)}}
	case InStock:
		return bson.M{"stock": bson.M{"$gt": 0}}
	case And:
		parts := bson.A{}
		for _, member := range f {
			parts = append(parts, mongoFilter(member))
		}
		if len(parts) == 0 {
			return bson.M{}
		}
		return bson.M{"$and": parts}
	default:
		return bson.M{}
	}
}

func mongoSort(s Sort) bson.D {
	field := SortCreatedAt
	if s.Field == SortStock {
		field = SortStock
	}
	dir := 1
	if s.Desc {
		dir = -1
	}
	return bson.D{{Key: field, Value: dir}, {Key: "_id", Value: -1}}
}
