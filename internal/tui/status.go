package tui

import "fmt"

// Canonical short status messages used across the app.
const (
	MsgLoadingRecipes = "Loading recipes…"
	MsgLoadFailed     = "Could not load recipes. Try again later."
	MsgNoRecipes      = "No recipes found."
	MsgAllCuisines    = "All cuisines"
	MsgNoSteps        = "No steps available."
	MsgNoIngredients  = "No ingredients listed."
	MsgRendering      = "Preparing recipe…"
	MsgImageOpened    = "Image opened"
	MsgSigningOut     = "Signing out…"
)

func MsgShowing(shown, matches int) string {
	return fmt.Sprintf("showing %d of %d", shown, matches)
}

// MsgCuisine labels the active cuisine filter; "" means no filter.
func MsgCuisine(label string) string {
	if label == "" {
		label = MsgAllCuisines
	}
	return "Cuisine: " + label
}
