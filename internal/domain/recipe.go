// Package domain defines the records shared by every layer of larder.
// It depends on nothing else in the module.
package domain

import (
	"math"
	"strconv"
	"strings"
)

// Recipe is a single catalog record as served by the remote recipes endpoint.
// Records are immutable once fetched.
type Recipe struct {
	ID                 int      `json:"id"`
	Name               string   `json:"name"`
	Ingredients        []string `json:"ingredients"`
	Instructions       []string `json:"instructions"`
	PrepTimeMinutes    int      `json:"prepTimeMinutes,omitempty"`
	CookTimeMinutes    int      `json:"cookTimeMinutes,omitempty"`
	Servings           int      `json:"servings,omitempty"`
	Difficulty         string   `json:"difficulty,omitempty"`
	Cuisine            string   `json:"cuisine,omitempty"`
	CaloriesPerServing int      `json:"caloriesPerServing,omitempty"`
	Tags               []string `json:"tags,omitempty"`
	Image              string   `json:"image,omitempty"`
	Rating             float64  `json:"rating,omitempty"`
	ReviewCount        int      `json:"reviewCount,omitempty"`
	MealType           []string `json:"mealType,omitempty"`
}

// TotalMinutes is prep plus cook time.
func (r Recipe) TotalMinutes() int {
	return r.PrepTimeMinutes + r.CookTimeMinutes
}

// TimeLabel renders the total time, or "-" when unknown.
func (r Recipe) TimeLabel() string {
	if total := r.TotalMinutes(); total > 0 {
		return strconv.Itoa(total)
	}
	return "-"
}

// Stars renders the rating as five glyphs, rounding to the nearest whole star.
func (r Recipe) Stars() string {
	full := int(math.Round(r.Rating))
	if full < 0 {
		full = 0
	}
	if full > 5 {
		full = 5
	}
	return strings.Repeat("★", full) + strings.Repeat("☆", 5-full)
}

// Normalized returns a copy whose list fields are never nil.
func (r Recipe) Normalized() Recipe {
	r.Ingredients = orEmpty(r.Ingredients)
	r.Instructions = orEmpty(r.Instructions)
	r.Tags = orEmpty(r.Tags)
	r.MealType = orEmpty(r.MealType)
	return r
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
