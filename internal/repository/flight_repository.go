package repository

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/iliyamo/airline-reservation/internal/conv"
	"github.com/iliyamo/airline-reservation/internal/model"
	"github.com/iliyamo/airline-reservation/internal/storage"
)

// FlightRepo owns the flight collection, its seat inventory and its
// data file. Booking is a read-modify-write of a stored row, so every
// mutating path runs under the repo mutex: two concurrent purchases of
// the same seat can never both observe it free.
type FlightRepo struct {
	mu      sync.RWMutex
	store   *storage.Store
	seq     Sequence
	planes  *AirplaneRepo
	flights []*model.Flight
}

// NewFlightRepo constructs a FlightRepo. Plane references inside
// flight rows resolve against the given airplane repository, which
// must therefore be loaded first.
func NewFlightRepo(store *storage.Store, planes *AirplaneRepo) *FlightRepo {
	return &FlightRepo{store: store, planes: planes}
}

// Load replaces the collection with the file contents. Rows referencing
// an unknown plane are skipped with an UnresolvedReferenceError; rows
// that fail to parse are skipped with a CorruptRecordError.
func (r *FlightRepo) Load() []error {
	rows, errs := r.store.LoadAll()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.flights = r.flights[:0]
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		f, err := r.decodeFlight(row.Fields)
		if err != nil {
			var unresolved *UnresolvedReferenceError
			if errors.As(err, &unresolved) {
				unresolved.Path = r.store.Path()
				unresolved.Line = row.Line
				errs = append(errs, unresolved)
			} else {
				errs = append(errs, &storage.CorruptRecordError{Path: r.store.Path(), Line: row.Line, Err: err})
			}
			continue
		}
		r.flights = append(r.flights, f)
		ids = append(ids, f.ID)
	}
	r.seq.Reseed(ids)
	return errs
}

// Create schedules a fresh flight on the given plane and appends it to
// the file. The seat grid starts fully free.
func (r *FlightRepo) Create(planeID string, depart, arrive time.Time, origin, destination string, prices []float64) (*model.Flight, error) {
	plane, err := r.planes.ByID(planeID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	f, err := model.NewFlight(r.seq.Next(), plane, depart, arrive, origin, destination, prices)
	if err != nil {
		return nil, err
	}
	if err := r.store.Append(encodeFlight(f)); err != nil {
		return nil, err
	}
	r.flights = append(r.flights, f)
	return f, nil
}

// ByID returns the flight with the given ID or ErrNotFound.
func (r *FlightRepo) ByID(id string) (*model.Flight, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byIDLocked(id)
}

func (r *FlightRepo) byIDLocked(id string) (*model.Flight, error) {
	for _, f := range r.flights {
		if f.ID == id {
			return f, nil
		}
	}
	return nil, fmt.Errorf("flight %q: %w", id, ErrNotFound)
}

// All returns a snapshot of the collection.
func (r *FlightRepo) All() []*model.Flight {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.Flight, len(r.flights))
	copy(out, r.flights)
	return out
}

// Search returns the flights matching origin, destination and
// departure day, in collection order.
func (r *FlightRepo) Search(origin, destination string, day time.Time) []*model.Flight {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.Flight
	for _, f := range r.flights {
		if f.Origin == origin && f.Destination == destination && f.DepartsOn(day) {
			out = append(out, f)
		}
	}
	return out
}

// PurchaseSeat is the atomic booking path: it reserves the seat,
// persists the flight's new seat bitmap and returns the unsaved
// transaction record for the ledger to commit. On a persistence
// failure the reservation is rolled back so memory and file agree.
func (r *FlightRepo) PurchaseSeat(flightID string, category, row, col int, client *model.Client, date time.Time) (*model.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := r.byIDLocked(flightID)
	if err != nil {
		return nil, err
	}
	seat, err := f.Seat(category, row, col)
	if err != nil {
		return nil, err
	}
	rec, err := seat.Purchase(client, date)
	if err != nil {
		return nil, err
	}
	if err := r.store.OverwriteOne(f.ID, encodeFlight(f)); err != nil {
		seat.Cancel()
		return nil, fmt.Errorf("persist reservation: %w", err)
	}
	return rec, nil
}

// CancelSeat releases a reserved seat and persists the change.
func (r *FlightRepo) CancelSeat(flightID string, category, row, col int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := r.byIDLocked(flightID)
	if err != nil {
		return err
	}
	seat, err := f.Seat(category, row, col)
	if err != nil {
		return err
	}
	if !seat.Reserved() {
		return nil
	}
	seat.Cancel()
	if err := r.store.OverwriteOne(f.ID, encodeFlight(f)); err != nil {
		seat.Reserve()
		return fmt.Errorf("persist cancellation: %w", err)
	}
	return nil
}

// SeatByInventoryID resolves a composite seat ID back to the live seat
// by scanning every flight's grid. Used when loading the record ledger.
func (r *FlightRepo) SeatByInventoryID(id string) (model.Inventory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, f := range r.flights {
		for cat, dim := range f.Plane.Dimensions {
			for row := 0; row < dim.Rows; row++ {
				for col := 0; col < dim.Cols; col++ {
					seat, err := f.Seat(cat, row, col)
					if err != nil {
						continue
					}
					if seat.InventoryID() == id {
						return seat, nil
					}
				}
			}
		}
	}
	return nil, fmt.Errorf("inventory item %q: %w", id, ErrNotFound)
}

// Clear drops the collection and truncates the data file.
func (r *FlightRepo) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.store.Truncate(); err != nil {
		return err
	}
	r.flights = nil
	r.seq.Reseed(nil)
	return nil
}

// encodeFlight renders a flight row: header fields, one price per
// category, then one seat bitmap per category. Bitmaps are plain
// '0'/'1' strings, delimiter-free by construction.
func encodeFlight(f *model.Flight) []string {
	fields := []string{
		f.ID,
		f.Plane.ID,
		conv.FormatDateTime(f.Depart),
		conv.FormatDateTime(f.Arrive),
		f.Origin,
		f.Destination,
	}
	for _, p := range f.CategoryPrices {
		fields = append(fields, strconv.FormatFloat(p, 'f', -1, 64))
	}
	fields = append(fields, f.SeatStates()...)
	return fields
}

// decodeFlight parses a flight row. The category count comes from the
// resolved plane: 6 header fields, then count prices, then count
// bitmaps.
func (r *FlightRepo) decodeFlight(fields []string) (*model.Flight, error) {
	if len(fields) < 6 {
		return nil, fmt.Errorf("flight row has %d fields, want at least 6", len(fields))
	}
	plane, err := r.planes.ByID(fields[1])
	if err != nil {
		return nil, &UnresolvedReferenceError{Kind: "airplane", ID: fields[1]}
	}
	count := plane.CategoryCount()
	if len(fields) != 6+2*count {
		return nil, fmt.Errorf("flight row has %d fields, want %d for %d categories", len(fields), 6+2*count, count)
	}
	depart, err := conv.ParseDateTime(fields[2])
	if err != nil {
		return nil, fmt.Errorf("bad departure %q: %w", fields[2], err)
	}
	arrive, err := conv.ParseDateTime(fields[3])
	if err != nil {
		return nil, fmt.Errorf("bad arrival %q: %w", fields[3], err)
	}
	prices := make([]float64, 0, count)
	for _, raw := range fields[6 : 6+count] {
		p, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("bad price %q: %w", raw, err)
		}
		prices = append(prices, p)
	}
	f, err := model.NewFlight(fields[0], plane, depart, arrive, fields[4], fields[5], prices)
	if err != nil {
		return nil, err
	}
	if err := f.AssignSeatStates(fields[6+count:]); err != nil {
		return nil, err
	}
	return f, nil
}
