package catalog

import "github.com/pders01/larder/internal/domain"

// Mode tells the presenter what to do with the items of a Projection.
type Mode int

const (
	// ModeReplace discards previously rendered items.
	ModeReplace Mode = iota
	// ModeAppend adds strictly new items after the ones already shown.
	ModeAppend
)

// Status is the user-visible state of the catalog view.
type Status int

const (
	// StatusIdle is the state before Start.
	StatusIdle Status = iota
	// StatusLoading means the catalog fetch is in flight.
	StatusLoading
	// StatusReady means the filtered view has at least one record.
	StatusReady
	// StatusEmpty means the filtered view has no records. It is not an error.
	StatusEmpty
	// StatusFailed means the fetch failed; the store stays empty.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusEmpty:
		return "empty"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Projection is the render-ready output of the Controller.
type Projection struct {
	Mode    Mode
	Status  Status
	Items   []domain.Recipe
	HasMore bool
	// Page is the cursor the items belong to.
	Page int
	// Shown counts every item rendered so far, including earlier pages.
	Shown   int
	Matches int
	Total   int
	Query   string
	Cuisine string
	// Cuisines is set on the projection that follows a load.
	Cuisines []string
	Err      error
}

// Presenter receives projections. The Controller never calls it while
// holding its own lock, so a presenter may call back into the Controller.
type Presenter interface {
	Present(Projection)
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(Projection)

// Present calls f(p).
func (f PresenterFunc) Present(p Projection) { f(p) }
