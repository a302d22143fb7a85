package ranking

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/unithon/tastemate/pkg/model"
	"github.com/unithon/tastemate/pkg/repository"
	"github.com/unithon/tastemate/pkg/utils/logging"
)

const (
	DefaultLimit = 3
	MaxLimit     = 10
)

var ErrUnknownCountry = goerr.New("unknown country")

// UseCase serves the most searched dishes per country
type UseCase struct {
	repo repository.Repository
}

func New(repo repository.Repository) *UseCase {
	return &UseCase{repo: repo}
}

// TopFoods returns the dishes of country searched most often, at most limit
// of them. A limit of zero or less means DefaultLimit; it is capped at
// MaxLimit.
func (u *UseCase) TopFoods(ctx context.Context, country string, limit int) ([]*model.FoodMetadata, error) {
	code := model.NormalizeCountry(strings.ToUpper(strings.TrimSpace(country)))
	if code == "" {
		return nil, goerr.Wrap(ErrUnknownCountry, "cannot rank foods", goerr.V("country", country))
	}

	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}

	foods, err := u.repo.ListTopFoods(ctx, code, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get food ranking", goerr.V("country", code))
	}

	logging.From(ctx).Debug("food ranking loaded", "country", code, "count", len(foods))
	return foods, nil
}
