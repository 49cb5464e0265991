package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNoSuchSeat is returned when a category/row/column triple falls
// outside the flight's seat grid.
var ErrNoSuchSeat = errors.New("no such seat")

// Flight is a scheduled departure on a specific airplane. The flight
// exclusively owns its seat grid, generated once at construction from
// the plane's dimension table; the grid shape is fixed afterwards.
//
// Fields:
//  ID             – immutable decimal string identifier.
//  Plane          – referenced airplane, shared and non-owning.
//  Depart, Arrive – departure and arrival timestamps.
//  Origin         – origin airport code.
//  Destination    – destination airport code.
//  CategoryPrices – seat price per category, same order as the plane's
//                   dimension list.
type Flight struct {
	ID             string
	Plane          *Airplane
	Depart         time.Time
	Arrive         time.Time
	Origin         string
	Destination    string
	CategoryPrices []float64

	seats [][][]*Seat // category x row x column
}

// NewFlight builds a flight and generates its seat grid. The price list
// must carry exactly one price per plane category.
func NewFlight(id string, plane *Airplane, depart, arrive time.Time, origin, destination string, prices []float64) (*Flight, error) {
	if plane == nil {
		return nil, errors.New("flight requires a plane")
	}
	if len(prices) != plane.CategoryCount() {
		return nil, fmt.Errorf("plane %s has %d categories, got %d prices",
			plane.ID, plane.CategoryCount(), len(prices))
	}
	f := &Flight{
		ID:             id,
		Plane:          plane,
		Depart:         depart,
		Arrive:         arrive,
		Origin:         origin,
		Destination:    destination,
		CategoryPrices: prices,
	}
	f.generateSeats()
	return f, nil
}

// generateSeats builds the category x row x column grid sized from the
// plane's dimension table. Invoked once at construction.
func (f *Flight) generateSeats() {
	f.seats = make([][][]*Seat, len(f.Plane.Dimensions))
	for i, dim := range f.Plane.Dimensions {
		grid := make([][]*Seat, dim.Rows)
		for r := 0; r < dim.Rows; r++ {
			row := make([]*Seat, dim.Cols)
			for c := 0; c < dim.Cols; c++ {
				row[c] = NewSeat(f.ID, r, c, f.CategoryPrices[i])
			}
			grid[r] = row
		}
		f.seats[i] = grid
	}
}

// Seat returns the seat at the given category, row and column.
func (f *Flight) Seat(category, row, col int) (*Seat, error) {
	if category < 0 || category >= len(f.seats) {
		return nil, fmt.Errorf("category %d: %w", category, ErrNoSuchSeat)
	}
	grid := f.seats[category]
	if row < 0 || row >= len(grid) || col < 0 || col >= len(grid[row]) {
		return nil, fmt.Errorf("row %d col %d: %w", row, col, ErrNoSuchSeat)
	}
	return grid[row][col], nil
}

// SeatStates encodes the reservation state of every category as a
// bit-string, one character per seat in row-major order: '1' reserved,
// '0' free. AssignSeatStates is its exact inverse.
func (f *Flight) SeatStates() []string {
	states := make([]string, len(f.seats))
	for i, grid := range f.seats {
		var b strings.Builder
		for _, row := range grid {
			for _, seat := range row {
				if seat.Reserved() {
					b.WriteByte('1')
				} else {
					b.WriteByte('0')
				}
			}
		}
		states[i] = b.String()
	}
	return states
}

// AssignSeatStates restores reservation flags from bit-strings produced
// by SeatStates. A missing category string, a wrong length or a
// character other than '0'/'1' is rejected without partial application.
func (f *Flight) AssignSeatStates(states []string) error {
	if len(states) != len(f.seats) {
		return fmt.Errorf("flight %s: got %d seat state strings, want %d", f.ID, len(states), len(f.seats))
	}
	for i, grid := range f.seats {
		want := 0
		for _, row := range grid {
			want += len(row)
		}
		if len(states[i]) != want {
			return fmt.Errorf("flight %s category %d: bitmap length %d, want %d", f.ID, i, len(states[i]), want)
		}
		for _, ch := range states[i] {
			if ch != '0' && ch != '1' {
				return fmt.Errorf("flight %s category %d: bad bitmap character %q", f.ID, i, ch)
			}
		}
	}
	for i, grid := range f.seats {
		for r, row := range grid {
			cols := len(row)
			for c, seat := range row {
				if states[i][r*cols+c] == '1' {
					seat.Reserve()
				} else {
					seat.Cancel()
				}
			}
		}
	}
	return nil
}

// Describe returns a one-line flight summary.
func (f *Flight) Describe() string {
	return fmt.Sprintf("Flight %s | %s (%s) --> %s (%s)",
		f.ID, f.Origin, f.Depart.Format("15:04 02/01/2006"),
		f.Destination, f.Arrive.Format("15:04 02/01/2006"))
}

// DepartsOn reports whether the flight departs on the same calendar day
// as t. Used by the search path.
func (f *Flight) DepartsOn(t time.Time) bool {
	y1, m1, d1 := f.Depart.Date()
	y2, m2, d2 := t.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
