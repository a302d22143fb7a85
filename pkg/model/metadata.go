package model

import "time"

type FoodMetadataID string

// NewFoodMetadataID returns the ID of the counter document of a dish, e.g.
// "JP_tonkatsu"
func NewFoodMetadataID(country, foodName string) FoodMetadataID {
	return FoodMetadataID(foodKey(country, foodName))
}

// FoodCounter names a popularity counter kept per dish
type FoodCounter string

const (
	CounterSearch FoodCounter = "searchCount"
	CounterSave   FoodCounter = "saveCount"
)

// FoodMetadata is the popularity record of a dish in a country, stored in
// food_metadata/{id}
type FoodMetadata struct {
	ID             FoodMetadataID `json:"foodId" yaml:"foodId" firestore:"-"`
	Country        string         `json:"country" yaml:"country" firestore:"country"`
	FoodName       string         `json:"foodName" yaml:"foodName" firestore:"foodName"`
	SearchCount    int64          `json:"searchCount" yaml:"searchCount" firestore:"searchCount"`
	SaveCount      int64          `json:"saveCount" yaml:"saveCount" firestore:"saveCount"`
	CreatedAt      time.Time      `json:"createdAt" yaml:"createdAt" firestore:"createdAt"`
	LastSearchedAt time.Time      `json:"lastSearchedAt,omitempty" yaml:"lastSearchedAt,omitempty" firestore:"lastSearchedAt,omitempty"`
	LastSavedAt    time.Time      `json:"lastSavedAt,omitempty" yaml:"lastSavedAt,omitempty" firestore:"lastSavedAt,omitempty"`
}

// TimestampField returns the document field recording the last update of c
func (c FoodCounter) TimestampField() string {
	switch c {
	case CounterSave:
		return "lastSavedAt"
	default:
		return "lastSearchedAt"
	}
}
