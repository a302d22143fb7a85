package profile_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/unithon/tastemate/pkg/model"
	"github.com/unithon/tastemate/pkg/repository"
	"github.com/unithon/tastemate/pkg/usecase/profile"
	"github.com/unithon/tastemate/pkg/utils/logging"
)

// Mock Repository
type mockRepository struct {
	users map[model.UserID]model.UserProfile
	err   error
	calls int
}

func (m *mockRepository) GetUser(ctx context.Context, uid model.UserID) (*repository.UserDocument, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	data, ok := m.users[uid]
	if !ok {
		return &repository.UserDocument{Exists: false}, nil
	}
	return &repository.UserDocument{Exists: true, Data: data}, nil
}

func (m *mockRepository) UpdateUser(ctx context.Context, uid model.UserID, fields map[string]any) error {
	if m.err != nil {
		return m.err
	}
	data, ok := m.users[uid]
	if !ok {
		return goerr.Wrap(repository.ErrNotFound, "user not found", goerr.V("uid", uid))
	}
	for k, v := range fields {
		data[k] = v
	}
	return nil
}

func (m *mockRepository) IncrementFoodCounter(ctx context.Context, country, foodName string, counter model.FoodCounter) error {
	return nil
}

func (m *mockRepository) ListTopFoods(ctx context.Context, country string, limit int) ([]*model.FoodMetadata, error) {
	return nil, nil
}

func (m *mockRepository) PutSavedFood(ctx context.Context, uid model.UserID, food *model.SavedFood) error {
	return nil
}

func (m *mockRepository) ListSavedFoods(ctx context.Context, uid model.UserID) ([]*model.SavedFood, error) {
	return nil, nil
}

func (m *mockRepository) DeleteSavedFood(ctx context.Context, uid model.UserID, id model.SavedFoodID) error {
	return nil
}

func newContext(buf *bytes.Buffer) context.Context {
	return logging.With(context.Background(), logging.New("debug", buf))
}

func TestGetFound(t *testing.T) {
	repo := &mockRepository{
		users: map[model.UserID]model.UserProfile{
			"DUMMY_user_01": {"a": 1},
		},
	}
	buf := &bytes.Buffer{}
	uc := profile.New(repo)

	data := uc.Get(newContext(buf), "DUMMY_user_01")
	gt.V(t, data).NotNil()
	gt.Equal(t, data["a"], any(1))
	gt.Equal(t, len(data), 1)

	output := buf.String()
	gt.S(t, output).Contains("user profile loaded")
	gt.S(t, output).Contains("DUMMY_user_01")
	gt.Equal(t, repo.calls, 1)
}

func TestGetNotFound(t *testing.T) {
	repo := &mockRepository{users: map[model.UserID]model.UserProfile{}}
	buf := &bytes.Buffer{}
	uc := profile.New(repo)

	data := uc.Get(newContext(buf), "MISSING")
	gt.True(t, data == nil)

	output := buf.String()
	gt.S(t, output).Contains("not found")
	gt.S(t, output).Contains("MISSING")
}

func TestGetFailed(t *testing.T) {
	repo := &mockRepository{err: goerr.New("permission denied")}
	buf := &bytes.Buffer{}
	uc := profile.New(repo)

	data := uc.Get(newContext(buf), "DUMMY_user_01")
	gt.True(t, data == nil)

	output := buf.String()
	gt.S(t, output).Contains("error reading user profile")
	gt.S(t, output).Contains("permission denied")
	gt.Equal(t, repo.calls, 1)
}

func TestGetCollapsesNotFoundAndFailure(t *testing.T) {
	ctx := newContext(&bytes.Buffer{})

	missing := profile.New(&mockRepository{users: map[model.UserID]model.UserProfile{}}).Get(ctx, "u1")
	failed := profile.New(&mockRepository{err: goerr.New("unavailable")}).Get(ctx, "u1")

	gt.True(t, missing == nil)
	gt.True(t, failed == nil)
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		repo := &mockRepository{users: map[model.UserID]model.UserProfile{"u1": {"a": 1}}}
		r := profile.New(repo).Resolve(ctx, "u1")
		gt.Equal(t, r.Status, profile.StatusFound)
		gt.Equal(t, r.Data["a"], any(1))
		gt.NoError(t, r.Err)
	})

	t.Run("not found", func(t *testing.T) {
		repo := &mockRepository{users: map[model.UserID]model.UserProfile{}}
		r := profile.New(repo).Resolve(ctx, "u1")
		gt.Equal(t, r.Status, profile.StatusNotFound)
		gt.Equal(t, r.Status.String(), "not_found")
	})

	t.Run("failed", func(t *testing.T) {
		repo := &mockRepository{err: goerr.New("unavailable")}
		r := profile.New(repo).Resolve(ctx, "u1")
		gt.Equal(t, r.Status, profile.StatusFailed)
		gt.Error(t, r.Err)
	})
}

func TestConstraints(t *testing.T) {
	repo := &mockRepository{
		users: map[model.UserID]model.UserProfile{
			"u1": {
				"allergies":           []any{"PEANUT"},
				"dietaryRestrictions": []any{"HALAL"},
			},
		},
	}
	uc := profile.New(repo)
	ctx := newContext(&bytes.Buffer{})

	c := uc.Constraints(ctx, "u1")
	gt.A(t, c.Allergies).Length(1)
	gt.Equal(t, c.Religion, "HALAL")

	c = uc.Constraints(ctx, "MISSING")
	gt.A(t, c.Allergies).Length(0)

	calls := repo.calls
	c = uc.Constraints(ctx, "")
	gt.Equal(t, c.Religion, "")
	gt.Equal(t, repo.calls, calls)
}

func TestUpdate(t *testing.T) {
	repo := &mockRepository{
		users: map[model.UserID]model.UserProfile{
			"user_001": {"displayName": "Chris", "allergies": []any{"EGG"}},
		},
	}
	uc := profile.New(repo)
	ctx := newContext(&bytes.Buffer{})

	country := "es"
	data, err := uc.Update(ctx, "user_001", model.ProfileUpdate{
		Allergies:      []string{"peanuts"},
		CurrentCountry: &country,
	})
	gt.NoError(t, err)
	gt.Equal(t, data["displayName"], any("Chris"))
	gt.Equal(t, data["currentCountry"], any("ES"))

	// the next analysis sees the new allergies
	c := uc.Constraints(ctx, "user_001")
	gt.A(t, c.Allergies).Length(1)
	gt.Equal(t, c.Allergies[0], "PEANUT")
}

func TestUpdateErrors(t *testing.T) {
	repo := &mockRepository{users: map[model.UserID]model.UserProfile{}}
	uc := profile.New(repo)
	ctx := newContext(&bytes.Buffer{})
	name := "Chris"

	t.Run("unknown user", func(t *testing.T) {
		_, err := uc.Update(ctx, "MISSING", model.ProfileUpdate{DisplayName: &name})
		gt.True(t, errors.Is(err, repository.ErrNotFound))
	})

	t.Run("invalid update does not reach the store", func(t *testing.T) {
		calls := repo.calls
		_, err := uc.Update(ctx, "MISSING", model.ProfileUpdate{Allergies: []string{"gluten"}})
		gt.True(t, errors.Is(err, model.ErrInvalidProfile))
		gt.Equal(t, repo.calls, calls)
	})

	t.Run("empty user ID", func(t *testing.T) {
		_, err := uc.Update(ctx, "", model.ProfileUpdate{DisplayName: &name})
		gt.Error(t, err)
	})
}
