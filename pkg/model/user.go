package model

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

var ErrInvalidProfile = goerr.New("invalid profile update")

// UserID is the document key of a user in the users collection
type UserID string

// UserProfile is a user document as stored. No schema is enforced; the shape
// is whatever the document store holds.
type UserProfile map[string]any

// DietaryConstraints is the subset of a profile used to tailor food analysis
type DietaryConstraints struct {
	Allergies []string
	Religion  string
}

// Constraints extracts allergies and dietary restrictions from the profile.
// A nil profile yields empty constraints.
func (p UserProfile) Constraints() DietaryConstraints {
	var c DietaryConstraints
	if p == nil {
		return c
	}

	c.Allergies = toStrings(p["allergies"])

	switch v := p["dietaryRestrictions"].(type) {
	case string:
		c.Religion = strings.TrimSpace(v)
	case []any, []string:
		c.Religion = strings.Join(toStrings(v), ", ")
	}

	return c
}

// ProfileUpdate holds the profile fields a user may change. Nil fields are
// left untouched.
type ProfileUpdate struct {
	DisplayName         *string
	Allergies           []string
	DietaryRestrictions []string
	// CurrentCountry is the travel destination; an empty string clears it
	CurrentCountry *string
}

// Fields validates the update and returns it as document fields. Allergies
// are canonicalized like analysis allergens; unknown ones are rejected.
func (x ProfileUpdate) Fields() (map[string]any, error) {
	fields := map[string]any{}

	if x.DisplayName != nil {
		name := strings.TrimSpace(*x.DisplayName)
		if name == "" {
			return nil, goerr.Wrap(ErrInvalidProfile, "display name is empty")
		}
		fields["displayName"] = name
	}

	if x.Allergies != nil {
		allergies := []string{}
		for _, a := range x.Allergies {
			v, ok := NormalizeAllergen(a)
			if !ok {
				return nil, goerr.Wrap(ErrInvalidProfile, "unknown allergen", goerr.V("allergen", a))
			}
			allergies = append(allergies, v)
		}
		fields["allergies"] = uniq(allergies)
	}

	if x.DietaryRestrictions != nil {
		restrictions := []string{}
		for _, r := range toStrings(x.DietaryRestrictions) {
			restrictions = append(restrictions, strings.ToUpper(r))
		}
		fields["dietaryRestrictions"] = uniq(restrictions)
	}

	if x.CurrentCountry != nil {
		code := strings.ToUpper(strings.TrimSpace(*x.CurrentCountry))
		switch {
		case code == "":
			fields["currentCountry"] = nil
		case NormalizeCountry(code) == "":
			return nil, goerr.Wrap(ErrInvalidProfile, "unknown country", goerr.V("country", *x.CurrentCountry))
		default:
			fields["currentCountry"] = code
		}
	}

	if len(fields) == 0 {
		return nil, goerr.Wrap(ErrInvalidProfile, "nothing to update")
	}
	return fields, nil
}

func toStrings(v any) []string {
	var out []string
	switch vs := v.(type) {
	case []string:
		for _, s := range vs {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, x := range vs {
			if s, ok := x.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
		}
	}
	return out
}
