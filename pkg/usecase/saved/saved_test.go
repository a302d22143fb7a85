package saved_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/unithon/tastemate/pkg/model"
	"github.com/unithon/tastemate/pkg/repository"
	"github.com/unithon/tastemate/pkg/usecase/saved"
	"github.com/unithon/tastemate/pkg/utils/logging"
)

// Mock Repository
type mockRepository struct {
	saved      map[model.UserID]map[model.SavedFoodID]*model.SavedFood
	counters   map[model.FoodMetadataID]map[model.FoodCounter]int64
	err        error
	counterErr error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		saved:    make(map[model.UserID]map[model.SavedFoodID]*model.SavedFood),
		counters: make(map[model.FoodMetadataID]map[model.FoodCounter]int64),
	}
}

func (m *mockRepository) GetUser(ctx context.Context, uid model.UserID) (*repository.UserDocument, error) {
	return &repository.UserDocument{Exists: false}, nil
}

func (m *mockRepository) UpdateUser(ctx context.Context, uid model.UserID, fields map[string]any) error {
	return goerr.Wrap(repository.ErrNotFound, "user not found")
}

func (m *mockRepository) PutSavedFood(ctx context.Context, uid model.UserID, f *model.SavedFood) error {
	if m.err != nil {
		return m.err
	}
	if m.saved[uid] == nil {
		m.saved[uid] = make(map[model.SavedFoodID]*model.SavedFood)
	}
	m.saved[uid][f.ID] = f
	return nil
}

func (m *mockRepository) ListSavedFoods(ctx context.Context, uid model.UserID) ([]*model.SavedFood, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*model.SavedFood
	for _, f := range m.saved[uid] {
		out = append(out, f)
	}
	return out, nil
}

func (m *mockRepository) DeleteSavedFood(ctx context.Context, uid model.UserID, id model.SavedFoodID) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.saved[uid][id]; !ok {
		return goerr.Wrap(repository.ErrNotFound, "saved food not found", goerr.V("food_id", id))
	}
	delete(m.saved[uid], id)
	return nil
}

func (m *mockRepository) IncrementFoodCounter(ctx context.Context, country, foodName string, counter model.FoodCounter) error {
	if m.counterErr != nil {
		return m.counterErr
	}
	id := model.NewFoodMetadataID(country, foodName)
	if m.counters[id] == nil {
		m.counters[id] = make(map[model.FoodCounter]int64)
	}
	m.counters[id][counter]++
	return nil
}

func (m *mockRepository) ListTopFoods(ctx context.Context, country string, limit int) ([]*model.FoodMetadata, error) {
	return nil, nil
}

var fixedTime = time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

func newContext(buf *bytes.Buffer) context.Context {
	return logging.With(context.Background(), logging.New("debug", buf))
}

func TestSave(t *testing.T) {
	repo := newMockRepository()
	uc := saved.New(repo, saved.WithClock(func() time.Time { return fixedTime }))
	ctx := newContext(&bytes.Buffer{})

	analysis := &model.FoodAnalysis{FoodName: "tonkatsu", Country: "JP", DishName: "돈가스"}

	food, err := uc.Save(ctx, "user_001", saved.SaveInput{
		Analysis:       analysis,
		RestaurantName: "도쿄 돈가스점",
	})
	gt.NoError(t, err)
	gt.Equal(t, food.ID, model.SavedFoodID("JP_tonkatsu"))
	gt.Equal(t, food.SavedAt, fixedTime)
	gt.True(t, repo.saved["user_001"]["JP_tonkatsu"].FoodInfo == analysis)

	// same dish again overwrites
	_, err = uc.Save(ctx, "user_001", saved.SaveInput{Analysis: analysis})
	gt.NoError(t, err)
	foods, err := uc.List(ctx, "user_001")
	gt.NoError(t, err)
	gt.A(t, foods).Length(1)
	gt.Equal(t, foods[0].RestaurantName, "")

	_, err = uc.Save(ctx, "user_001", saved.SaveInput{ID: "custom", Analysis: analysis})
	gt.NoError(t, err)
	gt.V(t, repo.saved["user_001"]["custom"]).NotNil()
}

func TestSaveCountsEverySave(t *testing.T) {
	repo := newMockRepository()
	uc := saved.New(repo)
	ctx := newContext(&bytes.Buffer{})

	analysis := &model.FoodAnalysis{FoodName: "Tonkatsu", Country: "JP"}
	for _, uid := range []model.UserID{"user_001", "user_002", "user_001"} {
		_, err := uc.Save(ctx, uid, saved.SaveInput{Analysis: analysis})
		gt.NoError(t, err)
	}

	counts := repo.counters["JP_tonkatsu"]
	gt.Equal(t, counts[model.CounterSave], int64(3))
	gt.Equal(t, counts[model.CounterSearch], int64(0))
}

func TestSaveWithoutCountryIsNotCounted(t *testing.T) {
	repo := newMockRepository()
	uc := saved.New(repo)

	_, err := uc.Save(newContext(&bytes.Buffer{}), "user_001", saved.SaveInput{
		Analysis: &model.FoodAnalysis{FoodName: "mystery stew"},
	})
	gt.NoError(t, err)
	gt.Equal(t, len(repo.counters), 0)
	gt.V(t, repo.saved["user_001"]["mystery_stew"]).NotNil()
}

func TestSaveSurvivesCounterFailure(t *testing.T) {
	repo := newMockRepository()
	repo.counterErr = goerr.New("aborted")
	uc := saved.New(repo)
	buf := &bytes.Buffer{}

	food, err := uc.Save(newContext(buf), "user_001", saved.SaveInput{
		Analysis: &model.FoodAnalysis{FoodName: "tonkatsu", Country: "JP"},
	})
	gt.NoError(t, err)
	gt.Equal(t, food.ID, model.SavedFoodID("JP_tonkatsu"))
	gt.S(t, buf.String()).Contains("failed to count food save")
}

func TestSaveInvalid(t *testing.T) {
	repo := newMockRepository()
	uc := saved.New(repo)
	ctx := newContext(&bytes.Buffer{})

	_, err := uc.Save(ctx, "", saved.SaveInput{Analysis: &model.FoodAnalysis{}})
	gt.Error(t, err)
	_, err = uc.Save(ctx, "user_001", saved.SaveInput{})
	gt.Error(t, err)
	_, err = uc.List(ctx, "")
	gt.Error(t, err)
	gt.Equal(t, len(repo.counters), 0)
}

func TestSaveFailureIsNotCounted(t *testing.T) {
	repo := newMockRepository()
	repo.err = goerr.New("unavailable")
	uc := saved.New(repo)

	_, err := uc.Save(newContext(&bytes.Buffer{}), "user_001", saved.SaveInput{
		Analysis: &model.FoodAnalysis{FoodName: "tonkatsu", Country: "JP"},
	})
	gt.Error(t, err)
	gt.Equal(t, len(repo.counters), 0)
}

func TestDelete(t *testing.T) {
	repo := newMockRepository()
	uc := saved.New(repo)
	ctx := newContext(&bytes.Buffer{})

	for _, id := range []model.SavedFoodID{"JP_tonkatsu", "KR_bibimbap"} {
		_, err := uc.Save(ctx, "user_001", saved.SaveInput{ID: id, Analysis: &model.FoodAnalysis{}})
		gt.NoError(t, err)
	}

	result, err := uc.Delete(ctx, "user_001", []model.SavedFoodID{"JP_tonkatsu", "MISSING", "KR_bibimbap"})
	gt.NoError(t, err)
	gt.A(t, result.Deleted).Length(2)
	gt.A(t, result.NotFound).Length(1)
	gt.Equal(t, result.NotFound[0], model.SavedFoodID("MISSING"))
	gt.Equal(t, len(repo.saved["user_001"]), 0)
}

func TestDeleteAbortsOnFailure(t *testing.T) {
	repo := newMockRepository()
	repo.err = goerr.New("unavailable")
	uc := saved.New(repo)

	_, err := uc.Delete(newContext(&bytes.Buffer{}), "user_001", []model.SavedFoodID{"JP_tonkatsu"})
	gt.Error(t, err)
}
