package model

import (
	"strings"
	"time"
)

type SavedFoodID string

// NewSavedFoodID derives a stable ID such as "JP_tonkatsu" so that saving the
// same dish twice overwrites instead of duplicating.
func NewSavedFoodID(a *FoodAnalysis) SavedFoodID {
	name := a.DishName
	if a.FoodName != "" {
		name = a.FoodName
	}
	return SavedFoodID(foodKey(a.Country, name))
}

var pathSeparator = strings.NewReplacer("/", "_")

// foodKey builds a single Firestore document ID from a country code and a
// dish name. "/" would split the ID into path segments.
func foodKey(country, name string) string {
	key := strings.Join(strings.Fields(strings.ToLower(name)), "_")
	key = pathSeparator.Replace(key)

	if country == "" {
		return key
	}
	return country + "_" + key
}

// SavedFood is a food analysis kept by a user, stored under
// users/{uid}/saved_foods/{id}
type SavedFood struct {
	ID             SavedFoodID   `json:"id" yaml:"id" firestore:"id"`
	FoodInfo       *FoodAnalysis `json:"foodInfo" yaml:"foodInfo" firestore:"foodInfo"`
	RestaurantName string        `json:"restaurantName,omitempty" yaml:"restaurantName,omitempty" firestore:"restaurantName,omitempty"`
	SavedAt        time.Time     `json:"savedAt" yaml:"savedAt" firestore:"savedAt"`
}
