package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/larder/internal/catalog"
	"github.com/pders01/larder/internal/config"
	"github.com/pders01/larder/internal/debuglog"
	"github.com/pders01/larder/internal/domain"
	"github.com/pders01/larder/internal/media"
	"github.com/pders01/larder/internal/session"
)

// catalogChrome is every catalog row that is not the list: greeting and
// filter label, the framed search box, separator, status and key help.
const catalogChrome = 2 + 3 + 1 + 2

// workQueueSize bounds deferred controller work waiting for Update.
const workQueueSize = 64

// SignOuter ends the persisted session.
type SignOuter interface {
	Logout() error
}

type imageOpener interface {
	Open(url string) error
}

type App struct {
	config          *config.Config
	controller      *catalog.Controller
	session         domain.Session
	gate            SignOuter
	launcher        imageOpener
	keyHandler      *KeyHandler
	recipeList      list.Model
	cuisineList     list.Model
	searchInput     textinput.Model
	viewport        viewport.Model
	spinner         spinner.Model
	view            View
	projection      catalog.Projection
	cuisines        []string
	currentRecipe   *domain.Recipe
	work            chan func()
	ctx             context.Context
	cancel          context.CancelFunc
	width           int
	height          int
	err             error
	status          string
	statusKind      StatusKind
	signedOut       bool
	loadingDetail   bool
	glamourRenderer *glamour.TermRenderer
	rendererWidth   int
}

// NewApp builds the catalog view for a signed-in user. All controller work,
// including debounced queries, is funnelled through Update.
func NewApp(cfg *config.Config, source catalog.Source, sess domain.Session, gate SignOuter) *App {
	ApplyColors(cfg.UI.Colors)

	cardDelegate := list.NewDefaultDelegate()
	cardDelegate.SetHeight(cardHeight)

	recipeList := list.New([]list.Item{}, cardDelegate, 0, 0)
	recipeList.Title = "› recipes"
	recipeList.SetShowStatusBar(false)
	recipeList.SetFilteringEnabled(false)
	recipeList.SetShowHelp(false)
	recipeList.KeyMap.Quit.SetEnabled(false)

	pickerDelegate := list.NewDefaultDelegate()
	pickerDelegate.ShowDescription = false
	pickerDelegate.SetSpacing(0)

	cuisineList := list.New(newCuisineItems(nil, ""), pickerDelegate, 0, 0)
	cuisineList.Title = "› cuisine"
	cuisineList.SetShowStatusBar(false)
	cuisineList.SetFilteringEnabled(false)
	cuisineList.SetShowHelp(true)
	cuisineList.KeyMap.Quit.SetEnabled(false)

	si := textinput.New()
	si.Placeholder = "Search recipes, ingredients, tags, cuisines..."
	si.Prompt = "⌕ "
	si.CharLimit = 256
	si.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(AccentColor)

	ctx, cancel := context.WithCancel(context.Background())

	app := &App{
		config:      cfg,
		session:     sess,
		gate:        gate,
		launcher:    media.NewLauncher(cfg),
		recipeList:  recipeList,
		cuisineList: cuisineList,
		searchInput: si,
		viewport:    viewport.New(0, 0),
		spinner:     sp,
		view:        ViewCatalog,
		work:        make(chan func(), workQueueSize),
		ctx:         ctx,
		cancel:      cancel,
	}

	app.controller = catalog.NewController(source, app,
		catalog.WithDispatcher(app.dispatch),
		catalog.WithSearchDelay(cfg.Catalog.SearchDebounce),
	)
	app.keyHandler = NewKeyHandler(app, cfg)

	return app
}

// SignedOut reports whether the session ended from inside the app.
func (a *App) SignedOut() bool {
	return a.signedOut
}

// Close cancels an outstanding catalog fetch.
func (a *App) Close() {
	a.cancel()
}

// dispatch queues controller work for the event loop. It may be called from
// any goroutine.
func (a *App) dispatch(f func()) {
	a.work <- f
}

func (a *App) waitForWork() tea.Cmd {
	return func() tea.Msg {
		select {
		case f := <-a.work:
			return workMsg{run: f}
		case <-a.ctx.Done():
			return nil
		}
	}
}

func (a *App) startCatalog() tea.Cmd {
	return func() tea.Msg {
		err := a.controller.Start(a.ctx, a.session.FirstName)
		if errors.Is(err, catalog.ErrFetchFailed) {
			// Already presented as a failed projection.
			return nil
		}
		if err != nil {
			return errorMsg{err: err}
		}
		return nil
	}
}

// Present applies a controller projection. The controller only calls it
// from work run by Update or from key handling, so it never races View.
func (a *App) Present(p catalog.Projection) {
	maxIngredients := a.config.UI.Card.MaxIngredients

	switch p.Mode {
	case catalog.ModeReplace:
		a.recipeList.SetItems(newRecipeItems(p.Items, maxIngredients))
		a.recipeList.ResetSelected()
	case catalog.ModeAppend:
		existing := a.recipeList.Items()
		items := make([]list.Item, 0, len(existing)+len(p.Items))
		items = append(items, existing...)
		items = append(items, newRecipeItems(p.Items, maxIngredients)...)
		a.recipeList.SetItems(items)
		if len(p.Items) > 0 {
			a.recipeList.Select(len(existing))
		}
	}

	if p.Cuisines != nil {
		a.cuisines = p.Cuisines
	}
	a.cuisineList.SetItems(newCuisineItems(a.cuisines, p.Cuisine))
	a.projection = p

	debuglog.WithFields(map[string]interface{}{
		"status": p.Status.String(),
		"items":  len(p.Items),
		"shown":  p.Shown,
	}).Debugf("projection presented")
}

func (a *App) getRenderer() (*glamour.TermRenderer, error) {
	maxWidth := a.config.UI.Detail.WordWrapMaxWidth
	minWidth := a.config.UI.Detail.WordWrapMinWidth

	wordWrapWidth := (a.width * 9) / 10
	if wordWrapWidth > maxWidth {
		wordWrapWidth = maxWidth
	}
	if wordWrapWidth < minWidth {
		wordWrapWidth = minWidth
	}
	if a.width < minWidth+10 {
		wordWrapWidth = a.width - 4
		if wordWrapWidth < 20 {
			wordWrapWidth = 20
		}
	}

	if a.glamourRenderer == nil || abs(a.rendererWidth-wordWrapWidth) > 10 {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wordWrapWidth),
		)
		if err != nil {
			return nil, err
		}
		a.glamourRenderer = r
		a.rendererWidth = wordWrapWidth
	}

	return a.glamourRenderer, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.startCatalog(),
		a.waitForWork(),
		a.spinner.Tick,
		tea.EnterAltScreen,
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

		listHeight := msg.Height - catalogChrome
		if listHeight < cardHeight {
			listHeight = cardHeight
		}
		a.recipeList.SetSize(msg.Width, listHeight)
		a.cuisineList.SetSize(msg.Width, msg.Height-3)
		a.viewport.Width = msg.Width
		a.viewport.Height = msg.Height - 4

		inputWidth := msg.Width - 8
		if inputWidth < 10 {
			inputWidth = msg.Width - 4
		}
		a.searchInput.Width = inputWidth

	case tea.KeyMsg:
		return a.keyHandler.HandleKey(msg)

	case workMsg:
		msg.run()
		return a, a.waitForWork()

	case spinner.TickMsg:
		if !a.loading() {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case detailRenderedMsg:
		if a.view == ViewDetail {
			a.viewport.SetContent(msg.content)
			a.viewport.GotoTop()
			a.loadingDetail = false
			a.setStatus("", StatusInfo)
		}

	case imageOpenedMsg:
		a.err = nil
		a.setStatus(MsgImageOpened, StatusSuccess)

	case signedOutMsg:
		if msg.err != nil {
			a.err = msg.err
			return a, nil
		}
		a.signedOut = true
		a.cancel()
		return a, tea.Quit

	case errorMsg:
		a.err = msg.err
	}

	switch a.view {
	case ViewCatalog:
		newListModel, cmd := a.recipeList.Update(msg)
		a.recipeList = newListModel
		cmds = append(cmds, cmd)
	case ViewCuisines:
		newListModel, cmd := a.cuisineList.Update(msg)
		a.cuisineList = newListModel
		cmds = append(cmds, cmd)
	case ViewDetail:
		switch msg.(type) {
		case tea.WindowSizeMsg, tea.MouseMsg:
			newViewport, cmd := a.viewport.Update(msg)
			a.viewport = newViewport
			cmds = append(cmds, cmd)
		}
	}

	return a, tea.Batch(cmds...)
}

func (a *App) loading() bool {
	switch a.projection.Status {
	case catalog.StatusIdle, catalog.StatusLoading:
		return true
	}
	return a.loadingDetail
}

func (a *App) setStatus(text string, kind StatusKind) {
	a.status = text
	a.statusKind = kind
}

// renderRecipe renders the detail overlay off the event loop.
func (a *App) renderRecipe(r domain.Recipe) tea.Cmd {
	renderer, err := a.getRenderer()
	if err != nil {
		return func() tea.Msg { return errorMsg{err: wrapErr("rendering recipe", err)} }
	}
	source := recipeMarkdown(r)
	return func() tea.Msg {
		out, err := renderer.Render(source)
		if err != nil {
			return detailRenderedMsg{content: source}
		}
		return detailRenderedMsg{content: out}
	}
}

func (a *App) openImage(r domain.Recipe) tea.Cmd {
	return func() tea.Msg {
		if err := a.launcher.Open(r.Image); err != nil {
			if errors.Is(err, media.ErrNoImage) {
				return errorMsg{err: fmt.Errorf("%s has no image", orDash(r.Name))}
			}
			return errorMsg{err: wrapErr("opening image", err)}
		}
		return imageOpenedMsg{}
	}
}

func (a *App) signOut() tea.Cmd {
	return func() tea.Msg {
		return signedOutMsg{err: a.gate.Logout()}
	}
}

func (a *App) selectedRecipe() (domain.Recipe, bool) {
	if i, ok := a.recipeList.SelectedItem().(recipeItem); ok {
		return i.recipe, true
	}
	return domain.Recipe{}, false
}

func (a *App) View() string {
	var content string

	switch a.view {
	case ViewCatalog:
		content = a.catalogView()
	case ViewCuisines:
		content = a.cuisineList.View()
	case ViewDetail:
		title := "› recipe"
		subtitle := ""
		if a.currentRecipe != nil {
			title = "› " + orDash(a.currentRecipe.Name)
			if a.currentRecipe.Image != "" {
				subtitle = truncateMiddle(a.currentRecipe.Image, a.width-2)
			}
		}
		body := a.viewport.View()
		if a.loadingDetail {
			body = renderCentered(a.width, a.height-4, renderMuted(a.spinner.View()+" "+MsgRendering))
		}
		content = lipgloss.JoinVertical(lipgloss.Top, renderHeader(title, subtitle, a.width), body)
	}

	return lipgloss.JoinVertical(lipgloss.Top, content, renderSeparator(a.width), a.getCustomStatusBar())
}

func (a *App) catalogView() string {
	header := renderHeader(session.Greeting(a.session), MsgCuisine(a.projection.Cuisine), a.width)
	search := renderInputFrame(a.searchInput.View(), a.searchInput.Focused(), a.searchInput.Width)

	listHeight := a.height - catalogChrome
	var body string
	switch a.projection.Status {
	case catalog.StatusIdle, catalog.StatusLoading:
		body = renderCentered(a.width, listHeight, lipgloss.JoinVertical(lipgloss.Center,
			GetWelcomeMessage(), "", renderMuted(a.spinner.View()+" "+MsgLoadingRecipes)))
	case catalog.StatusFailed:
		body = renderCentered(a.width, listHeight, ErrorMessageStyle.Render(MsgLoadFailed))
	case catalog.StatusEmpty:
		body = renderCentered(a.width, listHeight, renderHelp(MsgNoRecipes))
	default:
		body = a.recipeList.View()
	}

	return lipgloss.JoinVertical(lipgloss.Top, header, search, body)
}

// catalogStatus is the status line text derived from the last projection.
func (a *App) catalogStatus() (string, StatusKind) {
	p := a.projection
	switch p.Status {
	case catalog.StatusIdle, catalog.StatusLoading:
		return MsgLoadingRecipes, StatusInfo
	case catalog.StatusFailed:
		return MsgLoadFailed, StatusError
	case catalog.StatusEmpty:
		return MsgNoRecipes, StatusWarn
	default:
		return MsgShowing(p.Shown, p.Matches), StatusInfo
	}
}

func (a *App) getCustomStatusBar() string {
	var statusText string
	switch {
	case a.err != nil:
		statusText = StatusErrorStyle.Render(fmt.Sprintf("✗ %v", a.err))
	case a.status != "":
		statusText = a.statusKind.style().Render(a.status)
	default:
		text, kind := a.catalogStatus()
		statusText = kind.style().Render(text)
	}

	commands := strings.Join(a.keyHandler.GetHelpForCurrentView(), " • ")

	return StatusBarStyle.
		Width(a.width).
		Render(lipgloss.JoinVertical(lipgloss.Top, statusText, commands))
}

type workMsg struct {
	run func()
}

type detailRenderedMsg struct {
	content string
}

type imageOpenedMsg struct{}

type signedOutMsg struct {
	err error
}

type errorMsg struct {
	err error
}
