package repository

import (
	"context"

	"github.com/unithon/tastemate/pkg/model"
)

// UserDocument is a raw user document and whether the store has it
type UserDocument struct {
	Exists bool
	Data   model.UserProfile
}

// Repository defines the interface for user data persistence
type Repository interface {
	// GetUser fetches users/{uid}. A missing document is not an error; it is
	// reported with Exists=false.
	GetUser(ctx context.Context, uid model.UserID) (*UserDocument, error)

	// PutSavedFood saves or overwrites a food under users/{uid}/saved_foods
	PutSavedFood(ctx context.Context, uid model.UserID, food *model.SavedFood) error

	// ListSavedFoods returns saved foods of the user, newest first
	ListSavedFoods(ctx context.Context, uid model.UserID) ([]*model.SavedFood, error)

	// DeleteSavedFood removes a saved food. It returns ErrNotFound when the
	// food does not exist.
	DeleteSavedFood(ctx context.Context, uid model.UserID, id model.SavedFoodID) error

	// UpdateUser merges fields into users/{uid} and sets updatedAt. It
	// returns ErrNotFound when the user does not exist.
	UpdateUser(ctx context.Context, uid model.UserID, fields map[string]any) error

	// IncrementFoodCounter adds one to counter of the dish in
	// food_metadata, creating the record on first use
	IncrementFoodCounter(ctx context.Context, country, foodName string, counter model.FoodCounter) error

	// ListTopFoods returns up to limit dishes of country with the most
	// searches first
	ListTopFoods(ctx context.Context, country string, limit int) ([]*model.FoodMetadata, error)
}
