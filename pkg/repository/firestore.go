package repository

import (
	"context"
	"sync"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/unithon/tastemate/pkg/model"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	collectionUsers      = "users"
	collectionSavedFoods = "saved_foods"
	collectionMetadata   = "food_metadata"
)

var ErrNotFound = goerr.New("document not found")

// Firestore implements Repository. The client is created on first use and
// kept until Close.
type Firestore struct {
	projectID  string
	databaseID string
	opts       []option.ClientOption

	mu     sync.Mutex
	client *firestore.Client
}

// New creates a Firestore repository. An empty projectID is detected from
// the credentials; an empty databaseID means the default database.
func New(projectID, databaseID string, opts ...option.ClientOption) (*Firestore, error) {
	if projectID == "" {
		projectID = firestore.DetectProjectID
	}
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	return &Firestore{
		projectID:  projectID,
		databaseID: databaseID,
		opts:       opts,
	}, nil
}

// Init connects to Firestore. Calling it again returns the existing client
// without creating another.
func (r *Firestore) Init(ctx context.Context) (*firestore.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client != nil {
		return r.client, nil
	}

	client, err := firestore.NewClientWithDatabase(ctx, r.projectID, r.databaseID, r.opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project", r.projectID),
			goerr.V("database", r.databaseID))
	}
	r.client = client

	return client, nil
}

// Close releases the client if it was created
func (r *Firestore) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client == nil {
		return nil
	}
	err := r.client.Close()
	r.client = nil
	if err != nil {
		return goerr.Wrap(err, "failed to close firestore client")
	}
	return nil
}

func (r *Firestore) GetUser(ctx context.Context, uid model.UserID) (*UserDocument, error) {
	client, err := r.Init(ctx)
	if err != nil {
		return nil, err
	}

	doc, err := client.Collection(collectionUsers).Doc(string(uid)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return &UserDocument{Exists: false}, nil
		}
		return nil, goerr.Wrap(err, "failed to get user", goerr.V("uid", uid))
	}

	if !doc.Exists() {
		return &UserDocument{Exists: false}, nil
	}

	return &UserDocument{
		Exists: true,
		Data:   model.UserProfile(doc.Data()),
	}, nil
}

func (r *Firestore) savedFoods(ctx context.Context, uid model.UserID) (*firestore.CollectionRef, error) {
	client, err := r.Init(ctx)
	if err != nil {
		return nil, err
	}
	return client.Collection(collectionUsers).Doc(string(uid)).Collection(collectionSavedFoods), nil
}

func (r *Firestore) PutSavedFood(ctx context.Context, uid model.UserID, food *model.SavedFood) error {
	col, err := r.savedFoods(ctx, uid)
	if err != nil {
		return err
	}

	if _, err := col.Doc(string(food.ID)).Set(ctx, food); err != nil {
		return goerr.Wrap(err, "failed to put saved food",
			goerr.V("uid", uid),
			goerr.V("food_id", food.ID))
	}
	return nil
}

func (r *Firestore) ListSavedFoods(ctx context.Context, uid model.UserID) ([]*model.SavedFood, error) {
	col, err := r.savedFoods(ctx, uid)
	if err != nil {
		return nil, err
	}

	docs, err := col.OrderBy("savedAt", firestore.Desc).Documents(ctx).GetAll()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list saved foods", goerr.V("uid", uid))
	}

	foods := make([]*model.SavedFood, 0, len(docs))
	for _, doc := range docs {
		var food model.SavedFood
		if err := doc.DataTo(&food); err != nil {
			return nil, goerr.Wrap(err, "failed to decode saved food",
				goerr.V("uid", uid),
				goerr.V("doc_id", doc.Ref.ID))
		}
		foods = append(foods, &food)
	}

	return foods, nil
}

func (r *Firestore) DeleteSavedFood(ctx context.Context, uid model.UserID, id model.SavedFoodID) error {
	col, err := r.savedFoods(ctx, uid)
	if err != nil {
		return err
	}

	if _, err := col.Doc(string(id)).Delete(ctx, firestore.Exists); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "saved food not found",
				goerr.V("uid", uid),
				goerr.V("food_id", id))
		}
		return goerr.Wrap(err, "failed to delete saved food",
			goerr.V("uid", uid),
			goerr.V("food_id", id))
	}
	return nil
}

func (r *Firestore) UpdateUser(ctx context.Context, uid model.UserID, fields map[string]any) error {
	client, err := r.Init(ctx)
	if err != nil {
		return err
	}

	updates := make([]firestore.Update, 0, len(fields)+1)
	for k, v := range fields {
		updates = append(updates, firestore.Update{Path: k, Value: v})
	}
	updates = append(updates, firestore.Update{Path: "updatedAt", Value: firestore.ServerTimestamp})

	if _, err := client.Collection(collectionUsers).Doc(string(uid)).Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "user not found", goerr.V("uid", uid))
		}
		return goerr.Wrap(err, "failed to update user", goerr.V("uid", uid))
	}
	return nil
}

func (r *Firestore) IncrementFoodCounter(ctx context.Context, country, foodName string, counter model.FoodCounter) error {
	if counter != model.CounterSearch && counter != model.CounterSave {
		return goerr.New("unknown food counter", goerr.V("counter", counter))
	}

	client, err := r.Init(ctx)
	if err != nil {
		return err
	}

	id := model.NewFoodMetadataID(country, foodName)
	ref := client.Collection(collectionMetadata).Doc(string(id))

	err = client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		_, err := tx.Get(ref)
		switch {
		case err == nil:
			return tx.Update(ref, []firestore.Update{
				{Path: string(counter), Value: firestore.Increment(1)},
				{Path: counter.TimestampField(), Value: firestore.ServerTimestamp},
			})

		case status.Code(err) == codes.NotFound:
			now := time.Now()
			meta := &model.FoodMetadata{
				Country:   country,
				FoodName:  foodName,
				CreatedAt: now,
			}
			switch counter {
			case model.CounterSave:
				meta.SaveCount = 1
				meta.LastSavedAt = now
			default:
				meta.SearchCount = 1
				meta.LastSearchedAt = now
			}
			return tx.Create(ref, meta)

		default:
			return err
		}
	})
	if err != nil {
		return goerr.Wrap(err, "failed to increment food counter",
			goerr.V("food_id", id),
			goerr.V("counter", counter))
	}
	return nil
}

func (r *Firestore) ListTopFoods(ctx context.Context, country string, limit int) ([]*model.FoodMetadata, error) {
	client, err := r.Init(ctx)
	if err != nil {
		return nil, err
	}

	docs, err := client.Collection(collectionMetadata).
		Where("country", "==", country).
		OrderBy(string(model.CounterSearch), firestore.Desc).
		Limit(limit).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list top foods", goerr.V("country", country))
	}

	foods := make([]*model.FoodMetadata, 0, len(docs))
	for _, doc := range docs {
		var meta model.FoodMetadata
		if err := doc.DataTo(&meta); err != nil {
			return nil, goerr.Wrap(err, "failed to decode food metadata", goerr.V("doc_id", doc.Ref.ID))
		}
		meta.ID = model.FoodMetadataID(doc.Ref.ID)
		foods = append(foods, &meta)
	}

	return foods, nil
}
