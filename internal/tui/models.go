package tui

type View int

const (
	ViewCatalog View = iota
	ViewCuisines
	ViewDetail
)

func (v View) String() string {
	switch v {
	case ViewCatalog:
		return "catalog"
	case ViewCuisines:
		return "cuisines"
	case ViewDetail:
		return "detail"
	default:
		return "unknown"
	}
}
