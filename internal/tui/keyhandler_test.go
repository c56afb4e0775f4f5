package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/pders01/larder/internal/config"
	"github.com/pders01/larder/internal/domain"
)

func TestKeyHandler_ModifierKey(t *testing.T) {
	cfg := config.TestConfig()
	app := NewApp(cfg, &stubSource{}, domain.Session{FirstName: "Emily"}, &stubGate{})
	defer app.Close()

	assert.NotNil(t, app.keyHandler)
	assert.Equal(t, "ctrl+", app.keyHandler.modifierKey)
}

func TestKeyHandler_CustomModifier(t *testing.T) {
	cfg := config.TestConfig()
	cfg.Keys.Modifier = "alt"
	app := NewApp(cfg, &stubSource{recipes: sampleRecipes(3)}, domain.Session{FirstName: "Emily"}, &stubGate{})
	defer app.Close()
	app.startCatalog()()
	drain(app)

	app.Update(tea.KeyMsg{Type: tea.KeyCtrlF})
	assert.Equal(t, ViewCatalog, app.view, "ctrl+f is not bound under alt")

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'f'}, Alt: true})
	assert.Equal(t, ViewCuisines, app.view)
}

func TestKeyHandler_FilterIgnoredWhileLoading(t *testing.T) {
	app, _, _ := newTestApp(t, &stubSource{recipes: sampleRecipes(3)})

	app.Update(tea.KeyMsg{Type: tea.KeyCtrlF})

	assert.Equal(t, ViewCatalog, app.view)
}

func TestKeyHandler_TypingFeedsSearchBox(t *testing.T) {
	app, _, _ := loadedApp(t, sampleRecipes(3))

	typeText(app, "q")

	assert.Equal(t, "q", app.searchInput.Value(), "plain letters are search text, not commands")
	assert.Equal(t, ViewCatalog, app.view)
}

func TestKeyHandler_CtrlCQuits(t *testing.T) {
	app, _, _ := loadedApp(t, sampleRecipes(3))

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	if assert.NotNil(t, cmd) {
		assert.IsType(t, tea.QuitMsg{}, cmd())
	}
}

func TestKeyHandler_HelpPerView(t *testing.T) {
	app, _, _ := loadedApp(t, sampleRecipes(3))
	kh := app.keyHandler

	assert.NotContains(t, kh.GetHelpForCurrentView(), "ctrl+n: show more", "no more pages to show")

	app.view = ViewCuisines
	assert.Equal(t, []string{"enter: apply", "esc: back"}, kh.GetHelpForCurrentView())

	app.view = ViewDetail
	assert.Equal(t, []string{"ctrl+o: open image", "esc: back"}, kh.GetHelpForCurrentView())
}

func TestViewStateTransitions(t *testing.T) {
	tests := []struct {
		name         string
		initialView  View
		msg          tea.Msg
		expectedView View
	}{
		{"catalog to detail on enter", ViewCatalog, tea.KeyMsg{Type: tea.KeyEnter}, ViewDetail},
		{"catalog to cuisines on ctrl+f", ViewCatalog, tea.KeyMsg{Type: tea.KeyCtrlF}, ViewCuisines},
		{"detail to catalog on esc", ViewDetail, tea.KeyMsg{Type: tea.KeyEsc}, ViewCatalog},
		{"cuisines to catalog on esc", ViewCuisines, tea.KeyMsg{Type: tea.KeyEsc}, ViewCatalog},
		{"cuisines to catalog on enter", ViewCuisines, tea.KeyMsg{Type: tea.KeyEnter}, ViewCatalog},
		{"catalog stays on esc", ViewCatalog, tea.KeyMsg{Type: tea.KeyEsc}, ViewCatalog},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _, _ := loadedApp(t, sampleRecipes(3))
			app.view = tt.initialView

			updated, _ := app.Update(tt.msg)

			assert.Equal(t, tt.expectedView, updated.(*App).view)
		})
	}
}
