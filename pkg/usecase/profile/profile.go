package profile

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/unithon/tastemate/pkg/model"
	"github.com/unithon/tastemate/pkg/repository"
	"github.com/unithon/tastemate/pkg/utils/logging"
)

// Status tells how a lookup ended
type Status int

const (
	StatusFound Status = iota
	StatusNotFound
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusNotFound:
		return "not_found"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// LookupResult is the outcome of a single profile lookup
type LookupResult struct {
	Status Status
	Data   model.UserProfile
	Err    error
}

// UseCase looks up user profiles
type UseCase struct {
	repo repository.Repository
}

func New(repo repository.Repository) *UseCase {
	return &UseCase{repo: repo}
}

// Resolve fetches users/{uid} once and classifies the outcome
func (u *UseCase) Resolve(ctx context.Context, uid model.UserID) *LookupResult {
	doc, err := u.repo.GetUser(ctx, uid)
	switch {
	case err != nil:
		return &LookupResult{Status: StatusFailed, Err: err}
	case doc == nil || !doc.Exists:
		return &LookupResult{Status: StatusNotFound}
	default:
		return &LookupResult{Status: StatusFound, Data: doc.Data}
	}
}

// Get returns the profile of uid, or nil when it is unavailable. A missing
// user and a failed read both return nil; they differ only in what is
// logged. Use Resolve to tell them apart.
func (u *UseCase) Get(ctx context.Context, uid model.UserID) model.UserProfile {
	logger := logging.From(ctx).With("uid", uid)

	result := u.Resolve(ctx, uid)
	switch result.Status {
	case StatusFound:
		logger.Info("user profile loaded", "data", map[string]any(result.Data))
		return result.Data
	case StatusNotFound:
		logger.Warn("user not found")
	default:
		logger.Error("error reading user profile", "error", result.Err)
	}
	return nil
}

// Constraints returns dietary constraints of uid. An unavailable profile
// yields no constraints.
func (u *UseCase) Constraints(ctx context.Context, uid model.UserID) model.DietaryConstraints {
	if uid == "" {
		return model.DietaryConstraints{}
	}
	return u.Get(ctx, uid).Constraints()
}

// Update changes the editable fields of an existing user and returns the
// stored profile afterwards
func (u *UseCase) Update(ctx context.Context, uid model.UserID, update model.ProfileUpdate) (model.UserProfile, error) {
	if uid == "" {
		return nil, goerr.New("user ID is required")
	}

	fields, err := update.Fields()
	if err != nil {
		return nil, err
	}

	if err := u.repo.UpdateUser(ctx, uid, fields); err != nil {
		return nil, goerr.Wrap(err, "failed to update user profile", goerr.V("uid", uid))
	}

	result := u.Resolve(ctx, uid)
	switch result.Status {
	case StatusFound:
		logging.From(ctx).Info("user profile updated", "uid", uid, "fields", fields)
		return result.Data, nil
	case StatusNotFound:
		return nil, goerr.Wrap(repository.ErrNotFound, "updated user disappeared", goerr.V("uid", uid))
	default:
		return nil, goerr.Wrap(result.Err, "failed to read updated profile", goerr.V("uid", uid))
	}
}
