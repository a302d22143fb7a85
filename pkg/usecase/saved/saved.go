package saved

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/unithon/tastemate/pkg/model"
	"github.com/unithon/tastemate/pkg/repository"
	"github.com/unithon/tastemate/pkg/utils/logging"
)

// UseCase manages foods saved by users
type UseCase struct {
	repo repository.Repository
	now  func() time.Time
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) {
		uc.now = now
	}
}

func New(repo repository.Repository, opts ...Option) *UseCase {
	uc := &UseCase{
		repo: repo,
		now:  time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// SaveInput describes a food analysis to keep for a user
type SaveInput struct {
	// ID is optional; derived from the analysis when empty
	ID             model.SavedFoodID
	Analysis       *model.FoodAnalysis
	RestaurantName string
}

// Save stores the analysis as is under the user's saved foods and counts
// the save for the dish's country ranking. Saving the same ID again
// overwrites the previous entry. A failed count is logged only.
func (u *UseCase) Save(ctx context.Context, uid model.UserID, input SaveInput) (*model.SavedFood, error) {
	if uid == "" {
		return nil, goerr.New("user ID is required")
	}
	if input.Analysis == nil {
		return nil, goerr.New("analysis is required")
	}

	id := input.ID
	if id == "" {
		id = model.NewSavedFoodID(input.Analysis)
	}

	saved := &model.SavedFood{
		ID:             id,
		FoodInfo:       input.Analysis,
		RestaurantName: input.RestaurantName,
		SavedAt:        u.now(),
	}

	if err := u.repo.PutSavedFood(ctx, uid, saved); err != nil {
		return nil, goerr.Wrap(err, "failed to save food")
	}

	logger := logging.From(ctx).With("uid", uid, "food_id", id)
	logger.Info("food saved")

	if a := input.Analysis; a.Country != "" && a.FoodName != "" {
		if err := u.repo.IncrementFoodCounter(ctx, a.Country, a.FoodName, model.CounterSave); err != nil {
			logger.Warn("failed to count food save", "error", err)
		}
	}

	return saved, nil
}

// List returns the user's saved foods, newest first
func (u *UseCase) List(ctx context.Context, uid model.UserID) ([]*model.SavedFood, error) {
	if uid == "" {
		return nil, goerr.New("user ID is required")
	}

	foods, err := u.repo.ListSavedFoods(ctx, uid)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list saved foods")
	}
	return foods, nil
}

// DeleteResult reports which IDs were removed and which did not exist
type DeleteResult struct {
	Deleted  []model.SavedFoodID `json:"deleted" yaml:"deleted"`
	NotFound []model.SavedFoodID `json:"notFound" yaml:"notFound"`
}

// Delete removes each of ids. Missing IDs are reported, not treated as
// errors; any other failure aborts.
func (u *UseCase) Delete(ctx context.Context, uid model.UserID, ids []model.SavedFoodID) (*DeleteResult, error) {
	if uid == "" {
		return nil, goerr.New("user ID is required")
	}

	result := &DeleteResult{
		Deleted:  []model.SavedFoodID{},
		NotFound: []model.SavedFoodID{},
	}
	for _, id := range ids {
		err := u.repo.DeleteSavedFood(ctx, uid, id)
		switch {
		case err == nil:
			result.Deleted = append(result.Deleted, id)
		case errors.Is(err, repository.ErrNotFound):
			result.NotFound = append(result.NotFound, id)
		default:
			return result, goerr.Wrap(err, "failed to delete saved food", goerr.V("food_id", id))
		}
	}

	logging.From(ctx).Info("saved foods deleted",
		"uid", uid,
		"deleted", len(result.Deleted),
		"not_found", len(result.NotFound))

	return result, nil
}
