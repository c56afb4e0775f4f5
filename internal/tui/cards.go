package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/glamour"

	"github.com/pders01/larder/internal/domain"
)

// cardHeight is the title line plus the meta and ingredient lines.
const cardHeight = 3

type recipeItem struct {
	recipe         domain.Recipe
	maxIngredients int
}

func (i recipeItem) Title() string {
	return CardTitleStyle.Render(orDash(i.recipe.Name))
}

func (i recipeItem) Description() string {
	return cardMeta(i.recipe) + "\n" + renderMuted(cardIngredients(i.recipe, i.maxIngredients))
}

func (i recipeItem) FilterValue() string { return i.recipe.Name }

// cardMeta is the time, difficulty, cuisine and rating line of a card.
func cardMeta(r domain.Recipe) string {
	parts := []string{
		fmt.Sprintf("⏱ %s min", r.TimeLabel()),
		"Difficulty: " + orDash(r.Difficulty),
		"🍽 " + orDash(r.Cuisine),
		RatingStyle.Render(fmt.Sprintf("%s (%s)", r.Stars(), formatRating(r.Rating))),
	}
	return strings.Join(parts, " • ")
}

func cardIngredients(r domain.Recipe, limit int) string {
	shown := firstN(r.Ingredients, limit)
	if len(shown) == 0 {
		return MsgNoIngredients
	}
	return strings.Join(shown, " · ")
}

func formatRating(rating float64) string {
	return strconv.FormatFloat(rating, 'f', -1, 64)
}

func newRecipeItems(recipes []domain.Recipe, maxIngredients int) []list.Item {
	items := make([]list.Item, len(recipes))
	for i, r := range recipes {
		items[i] = recipeItem{recipe: r, maxIngredients: maxIngredients}
	}
	return items
}

// cuisineItem is one option of the cuisine picker. The empty label is
// "All cuisines".
type cuisineItem struct {
	label  string
	active bool
}

func (i cuisineItem) Title() string {
	name := i.label
	if name == "" {
		name = MsgAllCuisines
	}
	if i.active {
		return HeaderStyle.Render("● " + name)
	}
	return "  " + name
}

func (i cuisineItem) Description() string { return "" }
func (i cuisineItem) FilterValue() string { return i.label }

func newCuisineItems(cuisines []string, active string) []list.Item {
	items := make([]list.Item, 0, len(cuisines)+1)
	items = append(items, cuisineItem{label: "", active: active == ""})
	for _, c := range cuisines {
		items = append(items, cuisineItem{label: c, active: c == active})
	}
	return items
}

// recipeMarkdown is the detail overlay source handed to glamour. Record text
// is escaped so it always renders literally.
func recipeMarkdown(r domain.Recipe) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", orDash(escapeMarkdown(r.Name)))
	if r.Image != "" {
		fmt.Fprintf(&b, "**Image:** %s\n\n", escapeMarkdown(r.Image))
	}
	fmt.Fprintf(&b, "- **Cooking time:** %s min\n", r.TimeLabel())
	fmt.Fprintf(&b, "- **Difficulty:** %s\n", orDash(escapeMarkdown(r.Difficulty)))
	fmt.Fprintf(&b, "- **Category:** %s\n", orDash(escapeMarkdown(r.Cuisine)))
	fmt.Fprintf(&b, "- **Rating:** %s %s\n", formatRating(r.Rating), r.Stars())
	if r.Servings > 0 {
		fmt.Fprintf(&b, "- **Servings:** %d\n", r.Servings)
	}
	if r.CaloriesPerServing > 0 {
		fmt.Fprintf(&b, "- **Calories per serving:** %d\n", r.CaloriesPerServing)
	}

	b.WriteString("\n## Ingredients\n\n")
	if len(r.Ingredients) == 0 {
		b.WriteString("_" + MsgNoIngredients + "_\n")
	}
	for _, ing := range r.Ingredients {
		fmt.Fprintf(&b, "- %s\n", escapeMarkdown(ing))
	}

	b.WriteString("\n## Steps\n\n")
	if len(r.Instructions) == 0 {
		b.WriteString("_" + MsgNoSteps + "_\n")
	}
	for i, step := range r.Instructions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, escapeMarkdown(step))
	}

	if len(r.Tags) > 0 {
		tags := make([]string, len(r.Tags))
		for i, tag := range r.Tags {
			tags[i] = escapeMarkdown(tag)
		}
		fmt.Fprintf(&b, "\n---\n\n**Tags:** %s\n", strings.Join(tags, ", "))
	}
	return b.String()
}

// CardSummary is the meta line of a recipe card, for plain listings.
func CardSummary(r domain.Recipe) string {
	return cardMeta(r)
}

// RenderRecipe renders the detail overlay for a plain terminal.
func RenderRecipe(r domain.Recipe, wordWrap int) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wordWrap),
	)
	if err != nil {
		return "", wrapErr("creating renderer", err)
	}
	return renderer.Render(recipeMarkdown(r))
}
