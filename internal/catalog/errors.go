package catalog

import "errors"

var (
	// ErrFetchFailed marks a failed catalog load. There is no automatic retry.
	ErrFetchFailed = errors.New("catalog fetch failed")
	// ErrMissingSession is returned when the catalog is entered without a
	// signed-in user.
	ErrMissingSession = errors.New("no session: sign in first")
	// ErrAlreadyStarted guards the one-fetch-per-view rule.
	ErrAlreadyStarted = errors.New("catalog already started")
)

// FetchError wraps the network or decode failure behind ErrFetchFailed.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	return "loading catalog: " + e.Err.Error()
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrFetchFailed) hold for every FetchError.
func (e *FetchError) Is(target error) bool { return target == ErrFetchFailed }
