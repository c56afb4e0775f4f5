package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/larder/internal/catalog"
	"github.com/pders01/larder/internal/config"
	"github.com/pders01/larder/internal/debuglog"
)

type KeyHandler struct {
	app         *App
	config      *config.Config
	modifierKey string
}

func NewKeyHandler(app *App, cfg *config.Config) *KeyHandler {
	modifierKey := cfg.Keys.Modifier + "+"
	return &KeyHandler{app: app, config: cfg, modifierKey: modifierKey}
}

func (kh *KeyHandler) bound(action string) string {
	return kh.modifierKey + action
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	kh.app.err = nil
	if !kh.app.loadingDetail {
		kh.app.setStatus("", StatusInfo)
	}

	if model, cmd, handled := kh.handleCustomKeys(key); handled {
		return model, cmd
	}

	if kh.isInTextInputMode() {
		return kh.handleTextInputMode(msg)
	}

	return kh.delegateToCharm(msg)
}

func (kh *KeyHandler) isInTextInputMode() bool {
	return kh.app.view == ViewCatalog && kh.app.searchInput.Focused()
}

// handleTextInputMode splits keys between the search box and the recipe list.
func (kh *KeyHandler) handleTextInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		return kh.openDetail()
	case "up", "down", "pgup", "pgdown":
		var cmd tea.Cmd
		kh.app.recipeList, cmd = kh.app.recipeList.Update(msg)
		return kh.app, cmd
	default:
		return kh.delegateToTextInput(msg)
	}
}

// delegateToTextInput feeds the search box and hands changed text to the
// controller, which debounces it.
func (kh *KeyHandler) delegateToTextInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	prev := kh.app.searchInput.Value()
	newSearchInput, cmd := kh.app.searchInput.Update(msg)
	kh.app.searchInput = newSearchInput

	if val := kh.app.searchInput.Value(); val != prev {
		kh.app.controller.InputQuery(val)
	}
	return kh.app, cmd
}

// handleCustomKeys handles only our custom action keys
func (kh *KeyHandler) handleCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	b := kh.config.Keys.Bindings

	switch key {
	case kh.bound(b.Quit):
		kh.app.cancel()
		return kh.app, tea.Quit, true
	case b.Back:
		model, cmd := kh.navigateBack()
		return model, cmd, true
	case kh.bound(b.Logout):
		kh.app.setStatus(MsgSigningOut, StatusInfo)
		return kh.app, kh.app.signOut(), true
	}

	switch kh.app.view {
	case ViewCatalog:
		return kh.handleCatalogCustomKeys(key)
	case ViewDetail:
		return kh.handleDetailCustomKeys(key)
	default:
		return kh.app, nil, false
	}
}

func (kh *KeyHandler) handleCatalogCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	b := kh.config.Keys.Bindings

	switch key {
	case kh.bound(b.Filter):
		if !kh.catalogLoaded() {
			return kh.app, nil, true
		}
		kh.app.cuisineList.SetItems(newCuisineItems(kh.app.cuisines, kh.app.projection.Cuisine))
		kh.app.cuisineList.Select(kh.cuisineIndex(kh.app.projection.Cuisine))
		kh.app.searchInput.Blur()
		kh.app.view = ViewCuisines
		return kh.app, nil, true
	case kh.bound(b.ShowMore):
		if kh.app.projection.HasMore {
			kh.app.controller.ShowMore()
		}
		return kh.app, nil, true
	case kh.bound(b.OpenImage):
		if r, ok := kh.app.selectedRecipe(); ok {
			return kh.app, kh.app.openImage(r), true
		}
		return kh.app, nil, true
	}
	return kh.app, nil, false
}

func (kh *KeyHandler) handleDetailCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	if key == kh.bound(kh.config.Keys.Bindings.OpenImage) {
		if kh.app.currentRecipe != nil {
			return kh.app, kh.app.openImage(*kh.app.currentRecipe), true
		}
		return kh.app, nil, true
	}
	return kh.app, nil, false
}

// delegateToCharm lets Charm handle all keys we don't intercept
func (kh *KeyHandler) delegateToCharm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch kh.app.view {
	case ViewCatalog:
		kh.app.recipeList, cmd = kh.app.recipeList.Update(msg)
		if msg.String() == "enter" {
			return kh.openDetail()
		}
		return kh.app, cmd

	case ViewCuisines:
		kh.app.cuisineList, cmd = kh.app.cuisineList.Update(msg)
		if msg.String() == "enter" {
			if i, ok := kh.app.cuisineList.SelectedItem().(cuisineItem); ok {
				return kh.chooseCuisine(i.label)
			}
		}
		return kh.app, cmd

	case ViewDetail:
		kh.app.viewport, cmd = kh.app.viewport.Update(msg)
		return kh.app, cmd

	default:
		return kh.app, nil
	}
}

func (kh *KeyHandler) openDetail() (tea.Model, tea.Cmd) {
	r, ok := kh.app.selectedRecipe()
	if !ok {
		return kh.app, nil
	}
	kh.app.currentRecipe = &r
	kh.app.loadingDetail = true
	kh.app.viewport.SetContent("")
	kh.app.searchInput.Blur()
	kh.app.view = ViewDetail
	debuglog.WithFields(map[string]interface{}{"recipe_id": r.ID}).Debugf("opening recipe detail")
	return kh.app, tea.Batch(kh.app.spinner.Tick, kh.app.renderRecipe(r))
}

func (kh *KeyHandler) chooseCuisine(label string) (tea.Model, tea.Cmd) {
	kh.app.view = ViewCatalog
	kh.app.searchInput.Focus()
	kh.app.controller.SetCuisine(label)
	return kh.app, nil
}

// navigateBack closes the picker or the detail overlay. On the catalog it
// clears a non-empty search immediately.
func (kh *KeyHandler) navigateBack() (tea.Model, tea.Cmd) {
	switch kh.app.view {
	case ViewCuisines:
		kh.app.view = ViewCatalog
		kh.app.searchInput.Focus()
		return kh.app, nil

	case ViewDetail:
		kh.app.view = ViewCatalog
		kh.app.currentRecipe = nil
		kh.app.loadingDetail = false
		kh.app.searchInput.Focus()
		return kh.app, nil

	default:
		if kh.app.searchInput.Value() != "" {
			kh.app.searchInput.Reset()
			kh.app.controller.ApplyQuery("")
		}
		return kh.app, nil
	}
}

func (kh *KeyHandler) catalogLoaded() bool {
	switch kh.app.projection.Status {
	case catalog.StatusReady, catalog.StatusEmpty:
		return true
	}
	return false
}

func (kh *KeyHandler) cuisineIndex(label string) int {
	for i, item := range kh.app.cuisineList.Items() {
		if c, ok := item.(cuisineItem); ok && c.label == label {
			return i
		}
	}
	return 0
}

// GetHelpForCurrentView returns only our custom help text (Charm handles the rest)
func (kh *KeyHandler) GetHelpForCurrentView() []string {
	b := kh.config.Keys.Bindings

	switch kh.app.view {
	case ViewCatalog:
		if !kh.catalogLoaded() {
			return []string{kh.bound(b.Quit) + ": quit"}
		}
		help := []string{"enter: view recipe", kh.bound(b.Filter) + ": cuisine"}
		if kh.app.projection.HasMore {
			help = append(help, kh.bound(b.ShowMore)+": show more")
		}
		return append(help, kh.bound(b.OpenImage)+": image", kh.bound(b.Logout)+": logout", kh.bound(b.Quit)+": quit")

	case ViewCuisines:
		return []string{"enter: apply", b.Back + ": back"}

	case ViewDetail:
		return []string{kh.bound(b.OpenImage) + ": open image", b.Back + ": back"}

	default:
		return []string{}
	}
}
