package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/larder/internal/catalog"
	"github.com/pders01/larder/internal/config"
	"github.com/pders01/larder/internal/domain"
	"github.com/pders01/larder/internal/media"
)

type stubSource struct {
	recipes []domain.Recipe
	err     error
}

func (s *stubSource) Recipes(context.Context) ([]domain.Recipe, error) {
	return s.recipes, s.err
}

type stubGate struct {
	calls int
	err   error
}

func (g *stubGate) Logout() error {
	g.calls++
	return g.err
}

type stubOpener struct {
	opened []string
	err    error
}

func (o *stubOpener) Open(url string) error {
	if url == "" {
		return media.ErrNoImage
	}
	o.opened = append(o.opened, url)
	return o.err
}

func sampleRecipes(n int) []domain.Recipe {
	out := make([]domain.Recipe, n)
	for i := range out {
		out[i] = domain.Recipe{
			ID:              i + 1,
			Name:            fmt.Sprintf("Recipe %d", i+1),
			Ingredients:     []string{"salt", "pepper"},
			PrepTimeMinutes: 10,
			CookTimeMinutes: 5,
			Difficulty:      "Easy",
			Cuisine:         "Italian",
			Rating:          4.5,
			Image:           fmt.Sprintf("https://cdn.example.com/recipe-images/%d.webp", i+1),
		}
	}
	if n > 2 {
		out[1].Cuisine = "Thai"
		out[2].Name = "Chicken Curry"
		out[2].Cuisine = "Indian"
	}
	return out
}

func newTestApp(t *testing.T, source catalog.Source) (*App, *stubGate, *stubOpener) {
	t.Helper()
	gate := &stubGate{}
	opener := &stubOpener{}
	app := NewApp(config.TestConfig(), source, domain.Session{UserID: 1, FirstName: "Emily"}, gate)
	app.launcher = opener
	t.Cleanup(app.Close)
	return app, gate, opener
}

// drain runs every queued controller closure through Update.
func drain(a *App) {
	for {
		select {
		case f := <-a.work:
			a.Update(workMsg{run: f})
		default:
			return
		}
	}
}

func loadedApp(t *testing.T, recipes []domain.Recipe) (*App, *stubGate, *stubOpener) {
	t.Helper()
	app, gate, opener := newTestApp(t, &stubSource{recipes: recipes})
	app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	assert.Nil(t, app.startCatalog()())
	drain(app)
	require.Equal(t, catalog.StatusReady, app.projection.Status)
	return app, gate, opener
}

func recipeNames(a *App) []string {
	var names []string
	for _, item := range a.recipeList.Items() {
		names = append(names, item.(recipeItem).recipe.Name)
	}
	return names
}

func typeText(a *App, text string) {
	for _, r := range text {
		a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestApp_StartPresentsFirstPage(t *testing.T) {
	app, _, _ := loadedApp(t, sampleRecipes(20))

	assert.Len(t, app.recipeList.Items(), catalog.PageSize)
	assert.True(t, app.projection.HasMore)
	assert.Equal(t, []string{"Indian", "Italian", "Thai"}, app.cuisines)
	assert.Len(t, app.cuisineList.Items(), 4, "All cuisines plus each cuisine")

	view := app.View()
	assert.Contains(t, view, "Hi, Emily!")
	assert.Contains(t, view, "showing 8 of 20")
}

func TestApp_ShowsLoadingBeforeFetchCompletes(t *testing.T) {
	app, _, _ := newTestApp(t, &stubSource{recipes: sampleRecipes(3)})
	app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	assert.True(t, app.loading())
	assert.Contains(t, app.View(), MsgLoadingRecipes)
}

func TestApp_FetchFailureShowsMessage(t *testing.T) {
	app, _, _ := newTestApp(t, &stubSource{err: errors.New("connection refused")})
	app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	assert.Nil(t, app.startCatalog()())
	drain(app)

	assert.Equal(t, catalog.StatusFailed, app.projection.Status)
	assert.Empty(t, app.recipeList.Items())
	assert.Contains(t, app.View(), MsgLoadFailed)
}

func TestApp_MissingSessionIsAnError(t *testing.T) {
	app := NewApp(config.TestConfig(), &stubSource{}, domain.Session{}, &stubGate{})
	defer app.Close()

	msg := app.startCatalog()()

	em, ok := msg.(errorMsg)
	require.True(t, ok)
	assert.ErrorIs(t, em.err, catalog.ErrMissingSession)
}

func TestApp_ShowMoreAppendsItems(t *testing.T) {
	app, _, _ := loadedApp(t, sampleRecipes(20))

	app.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	assert.Len(t, app.recipeList.Items(), 16)
	assert.Equal(t, 8, app.recipeList.Index(), "cursor moves to the first new card")

	app.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	assert.Len(t, app.recipeList.Items(), 20)
	assert.False(t, app.projection.HasMore)
	assert.Contains(t, app.View(), "showing 20 of 20")

	app.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	assert.Len(t, app.recipeList.Items(), 20, "nothing left to show")
}

func TestApp_TypingIsDebounced(t *testing.T) {
	app, _, _ := loadedApp(t, sampleRecipes(10))

	typeText(app, "chick")
	assert.Equal(t, "chick", app.searchInput.Value())
	assert.Len(t, app.recipeList.Items(), 8, "the list waits for typing to pause")

	select {
	case f := <-app.work:
		app.Update(workMsg{run: f})
	case <-time.After(2 * time.Second):
		t.Fatal("debounced query never arrived")
	}

	assert.Equal(t, []string{"Chicken Curry"}, recipeNames(app))
	assert.Equal(t, "chick", app.projection.Query)

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, app.work, "one query per burst")
}

func TestApp_EscClearsSearch(t *testing.T) {
	app, _, _ := loadedApp(t, sampleRecipes(10))
	app.searchInput.SetValue("curry")
	app.controller.ApplyQuery("curry")
	require.Len(t, app.recipeList.Items(), 1)

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})

	assert.Empty(t, app.searchInput.Value())
	assert.Len(t, app.recipeList.Items(), 8)
	assert.Equal(t, ViewCatalog, app.view)
}

func TestApp_CuisinePicker(t *testing.T) {
	app, _, _ := loadedApp(t, sampleRecipes(10))

	app.Update(tea.KeyMsg{Type: tea.KeyCtrlF})
	require.Equal(t, ViewCuisines, app.view)
	assert.False(t, app.searchInput.Focused())

	// All cuisines, Indian, Italian, Thai
	app.Update(tea.KeyMsg{Type: tea.KeyDown})
	app.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, ViewCatalog, app.view)
	assert.True(t, app.searchInput.Focused())
	assert.Equal(t, "Indian", app.projection.Cuisine)
	assert.Equal(t, []string{"Chicken Curry"}, recipeNames(app))
	assert.Contains(t, app.View(), "Cuisine: Indian")

	app.Update(tea.KeyMsg{Type: tea.KeyCtrlF})
	assert.Equal(t, 1, app.cuisineList.Index(), "picker opens on the active cuisine")
	app.Update(tea.KeyMsg{Type: tea.KeyUp})
	app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "", app.projection.Cuisine)
	assert.Len(t, app.recipeList.Items(), 8)
}

func TestApp_EmptyResultMessage(t *testing.T) {
	app, _, _ := loadedApp(t, sampleRecipes(5))

	app.controller.ApplyQuery("nothing like this")

	assert.Equal(t, catalog.StatusEmpty, app.projection.Status)
	assert.Empty(t, app.recipeList.Items())
	assert.Contains(t, app.View(), MsgNoRecipes)
}

func TestApp_DetailOverlay(t *testing.T) {
	app, _, _ := loadedApp(t, sampleRecipes(5))
	app.Update(tea.KeyMsg{Type: tea.KeyDown})

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.Equal(t, ViewDetail, app.view)
	require.NotNil(t, app.currentRecipe)
	assert.Equal(t, 2, app.currentRecipe.ID)
	assert.True(t, app.loadingDetail)
	require.NotNil(t, cmd)

	rendered := app.renderRecipe(*app.currentRecipe)()
	app.Update(rendered)
	assert.False(t, app.loadingDetail)
	assert.Contains(t, app.viewport.View(), "Recipe 2")

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewCatalog, app.view)
	assert.Nil(t, app.currentRecipe)
	assert.True(t, app.searchInput.Focused())
}

func TestApp_OpenImage(t *testing.T) {
	app, _, opener := loadedApp(t, sampleRecipes(3))
	app.Update(tea.KeyMsg{Type: tea.KeyEnter})

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
	require.NotNil(t, cmd)
	app.Update(cmd())

	assert.Equal(t, []string{"https://cdn.example.com/recipe-images/1.webp"}, opener.opened)
	assert.Equal(t, MsgImageOpened, app.status)
}

func TestApp_OpenImageWithoutImage(t *testing.T) {
	recipes := sampleRecipes(1)
	recipes[0].Image = ""
	app, _, opener := loadedApp(t, recipes)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
	app.Update(cmd())

	assert.Empty(t, opener.opened)
	require.Error(t, app.err)
	assert.Contains(t, app.err.Error(), "has no image")
	assert.Contains(t, app.View(), "✗")
}

func TestApp_Logout(t *testing.T) {
	app, gate, _ := loadedApp(t, sampleRecipes(3))

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	require.NotNil(t, cmd)
	_, quit := app.Update(cmd())

	assert.Equal(t, 1, gate.calls)
	assert.True(t, app.SignedOut())
	require.NotNil(t, quit)
	assert.IsType(t, tea.QuitMsg{}, quit())
}

func TestApp_LogoutFailureKeepsSession(t *testing.T) {
	app, gate, _ := loadedApp(t, sampleRecipes(3))
	gate.err = errors.New("database locked")

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	app.Update(cmd())

	assert.False(t, app.SignedOut())
	assert.ErrorContains(t, app.err, "database locked")
}

func TestApp_SpinnerStopsAfterLoad(t *testing.T) {
	app, _, _ := loadedApp(t, sampleRecipes(3))

	_, cmd := app.Update(app.spinner.Tick())

	assert.Nil(t, cmd)
}

func TestApp_StatusBarShowsHelp(t *testing.T) {
	app, _, _ := loadedApp(t, sampleRecipes(20))

	bar := app.getCustomStatusBar()
	for _, want := range []string{"ctrl+f: cuisine", "ctrl+n: show more", "ctrl+l: logout"} {
		assert.True(t, strings.Contains(bar, want), "missing %q in %q", want, bar)
	}
}
