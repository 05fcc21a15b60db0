package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/slconcert/theatre-system/internal/core/domain"
	"github.com/slconcert/theatre-system/internal/core/ports"
)

// Store implements ports.DocumentStore on a MongoDB database. Documents are
// addressed by their "id" field; Mongo's own _id is never exposed.
type Store struct {
	db *mongo.Database
}

var _ ports.DocumentStore = (*Store)(nil)

func NewStore(db *mongo.Database) *Store {
	return &Store{db: db}
}

// Ping checks the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return s.db.Client().Ping(ctx, nil)
}

func (s *Store) FindByID(ctx context.Context, collection, id string, out any) error {
	return s.FindOne(ctx, collection, ports.ByID(id), out)
}

func (s *Store) FindOne(ctx context.Context, collection string, filter ports.Filter, out any) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOne().SetProjection(bson.M{"_id": 0})
	err := s.db.Collection(collection).FindOne(ctx, toBSON(filter), opts).Decode(out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ports.ErrDocumentNotFound
		}
		return fmt.Errorf("find %s: %w", collection, err)
	}
	return nil
}

func (s *Store) FindMany(ctx context.Context, collection string, filter ports.Filter, fo ports.FindOptions, out any) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetProjection(bson.M{"_id": 0})
	if fo.Skip > 0 {
		opts.SetSkip(fo.Skip)
	}
	if fo.Limit > 0 {
		opts.SetLimit(fo.Limit)
	}
	if fo.Sort != "" {
		dir := 1
		if fo.Desc {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: fo.Sort, Value: dir}})
	}

	cur, err := s.db.Collection(collection).Find(ctx, toBSON(filter), opts)
	if err != nil {
		return fmt.Errorf("find %s: %w", collection, err)
	}
	if err := cur.All(ctx, out); err != nil {
		return fmt.Errorf("decode %s: %w", collection, err)
	}
	return nil
}

func (s *Store) Count(ctx context.Context, collection string, filter ports.Filter) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := s.db.Collection(collection).CountDocuments(ctx, toBSON(filter))
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return n, nil
}

func (s *Store) Insert(ctx context.Context, collection string, doc any) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := s.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		return writeError("insert", collection, err)
	}
	return nil
}

func (s *Store) UpdateFields(ctx context.Context, collection, id string, fields ports.Fields) (bool, error) {
	n, err := s.UpdateWhere(ctx, collection, ports.ByID(id), fields)
	return n > 0, err
}

func (s *Store) UpdateWhere(ctx context.Context, collection string, filter ports.Filter, fields ports.Fields) (int64, error) {
	set := bson.M{domain.FieldUpdatedAt: domain.Now()}
	for k, v := range fields {
		set[k] = v
	}
	return s.updateMany(ctx, collection, filter, bson.M{"$set": set})
}

func (s *Store) Increment(ctx context.Context, collection, id, field string, delta int) (bool, error) {
	return s.updateOne(ctx, collection, toBSON(ports.ByID(id)), bson.M{
		"$inc": bson.M{field: delta},
		"$set": bson.M{domain.FieldUpdatedAt: domain.Now()},
	})
}

// ConditionalIncrement folds the guard into the update filter so the check
// and the write happen in one server-side operation.
func (s *Store) ConditionalIncrement(ctx context.Context, collection, id, field string, delta, floor int) (bool, error) {
	filter := bson.M{domain.FieldID: id, field: bson.M{"$gte": floor - delta}}
	return s.updateOne(ctx, collection, filter, bson.M{
		"$inc": bson.M{field: delta},
		"$set": bson.M{domain.FieldUpdatedAt: domain.Now()},
	})
}

func (s *Store) AddToSet(ctx context.Context, collection, id, field, value string) (bool, error) {
	return s.updateOne(ctx, collection, toBSON(ports.ByID(id)), bson.M{
		"$addToSet": bson.M{field: value},
		"$set":      bson.M{domain.FieldUpdatedAt: domain.Now()},
	})
}

func (s *Store) RemoveFromSet(ctx context.Context, collection, id, field, value string) (bool, error) {
	n, err := s.RemoveFromSetWhere(ctx, collection, ports.ByID(id), field, value)
	return n > 0, err
}

func (s *Store) RemoveFromSetWhere(ctx context.Context, collection string, filter ports.Filter, field, value string) (int64, error) {
	return s.updateMany(ctx, collection, filter, bson.M{
		"$pull": bson.M{field: value},
		"$set":  bson.M{domain.FieldUpdatedAt: domain.Now()},
	})
}

func (s *Store) DeleteByID(ctx context.Context, collection, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := s.db.Collection(collection).DeleteOne(ctx, toBSON(ports.ByID(id)))
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", collection, err)
	}
	return res.DeletedCount > 0, nil
}

func (s *Store) DeleteMany(ctx context.Context, collection string, filter ports.Filter) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := s.db.Collection(collection).DeleteMany(ctx, toBSON(filter))
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", collection, err)
	}
	return res.DeletedCount, nil
}

func (s *Store) updateOne(ctx context.Context, collection string, filter, update bson.M) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := s.db.Collection(collection).UpdateOne(ctx, filter, update)
	if err != nil {
		return false, writeError("update", collection, err)
	}
	return res.MatchedCount > 0, nil
}

func (s *Store) updateMany(ctx context.Context, collection string, filter ports.Filter, update bson.M) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := s.db.Collection(collection).UpdateMany(ctx, toBSON(filter), update)
	if err != nil {
		return 0, writeError("update", collection, err)
	}
	return res.MatchedCount, nil
}

// EnsureIndexes creates the unique indexes backing domain.UniqueKeys.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	byCollection := make(map[string][]mongo.IndexModel)
	for _, key := range domain.UniqueKeys {
		keys := bson.D{}
		for _, f := range key.Fields {
			keys = append(keys, bson.E{Key: f, Value: 1})
		}
		byCollection[key.Collection] = append(byCollection[key.Collection], mongo.IndexModel{
			Keys:    keys,
			Options: options.Index().SetUnique(true),
		})
	}
	// Secondary lookups used by cascades and searches.
	byCollection[domain.CollectionShowtimes] = append(byCollection[domain.CollectionShowtimes],
		mongo.IndexModel{Keys: bson.D{{Key: domain.FieldPlayID, Value: 1}}},
		mongo.IndexModel{Keys: bson.D{{Key: domain.FieldDateTime, Value: 1}}},
	)
	byCollection[domain.CollectionTickets] = append(byCollection[domain.CollectionTickets],
		mongo.IndexModel{Keys: bson.D{{Key: domain.FieldCustomerID, Value: 1}}},
	)

	for col, models := range byCollection {
		if _, err := s.db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("ensure indexes on %s: %w", col, err)
		}
	}
	return nil
}

func writeError(op, collection string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %s %s", ports.ErrDuplicateKey, op, collection)
	}
	return fmt.Errorf("%s %s: %w", op, collection, err)
}

// toBSON translates a port filter into a Mongo query document. Range
// conditions on the same field are merged into one operator document.
func toBSON(filter ports.Filter) bson.M {
	q := bson.M{}
	for _, c := range filter {
		var expr bson.M
		switch c.Op {
		case ports.OpEq:
			if _, dup := q[c.Field]; !dup {
				q[c.Field] = c.Value
				continue
			}
			expr = bson.M{"$eq": c.Value}
		case ports.OpNe:
			expr = bson.M{"$ne": c.Value}
		case ports.OpIn:
			expr = bson.M{"$in": c.Value}
		case ports.OpGte:
			expr = bson.M{"$gte": c.Value}
		case ports.OpLte:
			expr = bson.M{"$lte": c.Value}
		case ports.OpContains:
			s, _ := c.Value.(string)
			expr = bson.M{"$regex": regexp.QuoteMeta(s), "$options": "i"}
		default:
			continue
		}
		if existing, ok := q[c.Field].(bson.M); ok {
			for k, v := range expr {
				existing[k] = v
			}
			continue
		}
		if prev, ok := q[c.Field]; ok {
			expr["$eq"] = prev
		}
		q[c.Field] = expr
	}
	return q
}
