package model

// CabinDims holds the seating dimensions of one category of an
// airplane: the number of rows and the number of seat columns per row.
type CabinDims struct {
	Rows int
	Cols int
}

// Airplane describes an aircraft model shared by every flight built on
// it. The ID never changes after construction and the number of
// categories always equals the length of the dimensions list.
//
// Fields:
//  ID         – immutable decimal string identifier.
//  Model      – manufacturer model name, e.g. "737".
//  Dimensions – per-category (rows, cols) pairs, first class first.
type Airplane struct {
	ID         string
	Model      string
	Dimensions []CabinDims
}

// NewAirplane builds an airplane. The same constructor serves both the
// fresh path (repository-generated ID) and reconstruction from a stored
// row (original ID supplied).
func NewAirplane(id, airModel string, dims []CabinDims) *Airplane {
	return &Airplane{ID: id, Model: airModel, Dimensions: dims}
}

// CategoryCount reports the number of seating categories.
func (a *Airplane) CategoryCount() int { return len(a.Dimensions) }
