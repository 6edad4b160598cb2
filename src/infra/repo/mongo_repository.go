package repo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pokedex/src/core/domain"
	"pokedex/src/core/ports"
	"pokedex/src/infra/db"
)

const (
	// mongoDocumentValidationFailure is the server code for a $jsonSchema rejection.
	mongoDocumentValidationFailure = 121

	// mongoDuplicateKey is the server code for a unique index violation.
	mongoDuplicateKey = 11000

	// mongoNamespaceExists is returned by create when the collection already exists.
	mongoNamespaceExists = 48
)

var _ ports.PokemonRepository = (*MongoRepository)(nil)

// MongoRepository implements PokemonRepository over one mongo collection.
type MongoRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
	log  *slog.Logger
}

// NewMongoRepository constructs a repository backed by the named collection.
func NewMongoRepository(mg *db.Mongo, collection string, log *slog.Logger) *MongoRepository {
	return &MongoRepository{
		db:   mg.DB,
		coll: mg.DB.Collection(collection),
		log:  log,
	}
}

type statsDocument struct {
	HP             int `bson:"hp"`
	Attack         int `bson:"attack"`
	Defense        int `bson:"defense"`
	SpecialAttack  int `bson:"specialAttack"`
	SpecialDefense int `bson:"specialDefense"`
	Speed          int `bson:"speed"`
}

type pokemonDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Name          string             `bson:"name"`
	ThumbnailURL  string             `bson:"thumbnailUrl"`
	LargeImageURL string             `bson:"largeImageUrl"`
	Types         []string           `bson:"types"`
	Abilities     []string           `bson:"abilities"`
	Stats         statsDocument      `bson:"stats"`
	CreatedAt     time.Time          `bson:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt"`
}

type summaryDocument struct {
	ID           primitive.ObjectID `bson:"_id"`
	Name         string             `bson:"name"`
	Types        []string           `bson:"types"`
	ThumbnailURL string             `bson:"thumbnailUrl"`
}

// summaryProjection limits list reads to the fields of domain.PokemonSummary.
var summaryProjection = bson.D{
	{Key: "name", Value: 1},
	{Key: "types", Value: 1},
	{Key: "thumbnailUrl", Value: 1},
}

func (r *MongoRepository) Health(ctx context.Context) error {
	return r.db.Client().Ping(ctx, nil)
}

// EnsureSchema creates the collection with its $jsonSchema validator (or
// refreshes the validator if it already exists) and the indexes. The unique
// index on name is the authority for duplicate names.
func (r *MongoRepository) EnsureSchema(ctx context.Context) error {
	validator := pokemonJSONSchema()
	name := r.coll.Name()

	err := r.db.CreateCollection(ctx, name, options.CreateCollection().SetValidator(validator))
	if err != nil {
		var cmdErr mongo.CommandError
		if !errors.As(err, &cmdErr) || cmdErr.Code != mongoNamespaceExists {
			return fmt.Errorf("create collection %s: %w", name, err)
		}
		cmd := bson.D{
			{Key: "collMod", Value: name},
			{Key: "validator", Value: validator},
		}
		if err := r.db.RunCommand(ctx, cmd).Err(); err != nil {
			return fmt.Errorf("update validator on %s: %w", name, err)
		}
	}

	_, err = r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "types", Value: 1}}},
		{Keys: bson.D{{Key: "abilities", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create indexes on %s: %w", name, err)
	}
	return nil
}

func pokemonJSONSchema() bson.M {
	types := make(bson.A, len(domain.PokemonTypes))
	for i, t := range domain.PokemonTypes {
		types[i] = t
	}
	positiveInt := bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 1}
	urlString := bson.M{"bsonType": "string", "pattern": `^https?://.+`}

	return bson.M{"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": bson.A{"name", "thumbnailUrl", "largeImageUrl", "types", "abilities", "stats"},
		"properties": bson.M{
			"name":          bson.M{"bsonType": "string", "minLength": 1},
			"thumbnailUrl":  urlString,
			"largeImageUrl": urlString,
			"types": bson.M{
				"bsonType": "array",
				"minItems": 1,
				"items":    bson.M{"enum": types},
			},
			"abilities": bson.M{
				"bsonType": "array",
				"minItems": 1,
				"items":    bson.M{"bsonType": "string"},
			},
			"stats": bson.M{
				"bsonType": "object",
				"required": bson.A{"hp", "attack", "defense", "specialAttack", "specialDefense", "speed"},
				"properties": bson.M{
					"hp":             positiveInt,
					"attack":         positiveInt,
					"defense":        positiveInt,
					"specialAttack":  positiveInt,
					"specialDefense": positiveInt,
					"speed":          positiveInt,
				},
			},
		},
	}}
}

// mongoFilter translates the domain filter: $in per field gives "any of",
// and separate keys are implicitly AND-ed.
func mongoFilter(f domain.PokemonFilter) bson.M {
	filter := bson.M{}
	if len(f.Types) > 0 {
		filter["types"] = bson.M{"$in": f.Types}
	}
	if len(f.Abilities) > 0 {
		filter["abilities"] = bson.M{"$in": f.Abilities}
	}
	return filter
}

func (r *MongoRepository) FindMany(ctx context.Context, filter domain.PokemonFilter, page domain.Page) ([]domain.PokemonSummary, error) {
	opts := options.Find().
		SetProjection(summaryProjection).
		SetSkip(page.Skip()).
		SetLimit(int64(page.Limit))

	cur, err := r.coll.Find(ctx, mongoFilter(filter), opts)
	if err != nil {
		return nil, r.translate(err, "find pokemon")
	}
	var docs []summaryDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, r.translate(err, "decode pokemon")
	}

	out := make([]domain.PokemonSummary, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.PokemonSummary{
			ID:           d.ID.Hex(),
			Name:         d.Name,
			Types:        d.Types,
			ThumbnailURL: d.ThumbnailURL,
		})
	}
	return out, nil
}

func (r *MongoRepository) Count(ctx context.Context, filter domain.PokemonFilter) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, mongoFilter(filter))
	if err != nil {
		return 0, r.translate(err, "count pokemon")
	}
	return n, nil
}

func (r *MongoRepository) FindByID(ctx context.Context, id string) (*domain.Pokemon, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.NewInvalidIDError()
	}
	var doc pokemonDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, r.translate(err, "find pokemon by id")
	}
	return doc.toDomain(), nil
}

func (r *MongoRepository) FindByName(ctx context.Context, name, excludeID string) (*domain.Pokemon, error) {
	filter := bson.M{"name": name}
	if excludeID != "" {
		oid, err := primitive.ObjectIDFromHex(excludeID)
		if err != nil {
			return nil, domain.NewInvalidIDError()
		}
		filter["_id"] = bson.M{"$ne": oid}
	}
	var doc pokemonDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, r.translate(err, "find pokemon by name")
	}
	return doc.toDomain(), nil
}

func (r *MongoRepository) Create(ctx context.Context, in domain.PokemonInput) (*domain.Pokemon, error) {
	doc := newDocument(in, time.Now().UTC())
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, r.translate(err, "insert pokemon")
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return doc.toDomain(), nil
}

// InsertMany writes unordered so one rejected record does not stop the rest.
func (r *MongoRepository) InsertMany(ctx context.Context, in []domain.PokemonInput) (int, error) {
	if len(in) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, len(in))
	for i, pk := range in {
		docs[i] = newDocument(pk, now)
	}

	res, err := r.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err == nil {
		return len(res.InsertedIDs), nil
	}

	// Rejected records (taken names, schema failures) are skipped; any other
	// failure aborts the batch.
	var bwe mongo.BulkWriteException
	if !errors.As(err, &bwe) || bwe.WriteConcernError != nil {
		return 0, r.translate(err, "insert many pokemon")
	}
	for _, we := range bwe.WriteErrors {
		if we.Code != mongoDuplicateKey && we.Code != mongoDocumentValidationFailure {
			return 0, r.translate(err, "insert many pokemon")
		}
	}
	skipped := len(bwe.WriteErrors)
	r.log.Warn("skipped rejected records", "count", skipped)
	return len(docs) - skipped, nil
}

func (r *MongoRepository) UpdateByID(ctx context.Context, id string, patch domain.PokemonPatch) (*domain.Pokemon, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.NewInvalidIDError()
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.ThumbnailURL != nil {
		set["thumbnailUrl"] = *patch.ThumbnailURL
	}
	if patch.LargeImageURL != nil {
		set["largeImageUrl"] = *patch.LargeImageURL
	}
	if patch.Types != nil {
		set["types"] = patch.Types
	}
	if patch.Abilities != nil {
		set["abilities"] = patch.Abilities
	}
	if patch.Stats != nil {
		set["stats"] = toStatsDocument(*patch.Stats)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc pokemonDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		return nil, r.translate(err, "update pokemon")
	}
	return doc.toDomain(), nil
}

func (r *MongoRepository) DeleteByID(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.NewInvalidIDError()
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return r.translate(err, "delete pokemon")
	}
	if res.DeletedCount == 0 {
		return domain.NewNotFoundError("Pokemon")
	}
	return nil
}

// translate maps driver errors onto domain errors; anything unrecognised is
// wrapped with op and left for the HTTP layer to report as internal.
func (r *MongoRepository) translate(err error, op string) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return domain.NewNotFoundError("Pokemon")
	case mongo.IsDuplicateKeyError(err):
		return domain.NewDuplicateNameError()
	}
	var se mongo.ServerError
	if errors.As(err, &se) && se.HasErrorCode(mongoDocumentValidationFailure) {
		return domain.NewValidationError("Document failed validation")
	}
	return fmt.Errorf("%s: %w", op, err)
}

func newDocument(in domain.PokemonInput, now time.Time) *pokemonDocument {
	return &pokemonDocument{
		Name:          in.Name,
		ThumbnailURL:  in.ThumbnailURL,
		LargeImageURL: in.LargeImageURL,
		Types:         in.Types,
		Abilities:     in.Abilities,
		Stats:         toStatsDocument(in.Stats),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func toStatsDocument(s domain.Stats) statsDocument {
	return statsDocument{
		HP:             s.HP,
		Attack:         s.Attack,
		Defense:        s.Defense,
		SpecialAttack:  s.SpecialAttack,
		SpecialDefense: s.SpecialDefense,
		Speed:          s.Speed,
	}
}

func (d *pokemonDocument) toDomain() *domain.Pokemon {
	return &domain.Pokemon{
		ID:            d.ID.Hex(),
		Name:          d.Name,
		ThumbnailURL:  d.ThumbnailURL,
		LargeImageURL: d.LargeImageURL,
		Types:         d.Types,
		Abilities:     d.Abilities,
		Stats: domain.Stats{
			HP:             d.Stats.HP,
			Attack:         d.Stats.Attack,
			Defense:        d.Stats.Defense,
			SpecialAttack:  d.Stats.SpecialAttack,
			SpecialDefense: d.Stats.SpecialDefense,
			Speed:          d.Stats.Speed,
		},
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}
