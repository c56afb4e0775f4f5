package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecipe_TimeLabel(t *testing.T) {
	assert.Equal(t, "-", Recipe{}.TimeLabel())
	assert.Equal(t, "35", Recipe{PrepTimeMinutes: 15, CookTimeMinutes: 20}.TimeLabel())
	assert.Equal(t, 20, Recipe{CookTimeMinutes: 20}.TotalMinutes())
}

func TestRecipe_Stars(t *testing.T) {
	tests := []struct {
		rating float64
		want   string
	}{
		{0, "☆☆☆☆☆"},
		{4.6, "★★★★★"},
		{4.4, "★★★★☆"},
		{2.5, "★★★☆☆"},
		{-1, "☆☆☆☆☆"},
		{9, "★★★★★"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Recipe{Rating: tt.rating}.Stars(), "rating %v", tt.rating)
	}
}

func TestRecipe_Normalized(t *testing.T) {
	r := Recipe{ID: 1, Name: "Toast"}.Normalized()

	assert.NotNil(t, r.Ingredients)
	assert.NotNil(t, r.Instructions)
	assert.NotNil(t, r.Tags)
	assert.NotNil(t, r.MealType)
	assert.Empty(t, r.Ingredients)

	kept := Recipe{Tags: []string{"quick"}}.Normalized()
	assert.Equal(t, []string{"quick"}, kept.Tags)
}
