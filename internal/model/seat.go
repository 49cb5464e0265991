package model

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/iliyamo/airline-reservation/internal/conv"
)

// Seat is one purchasable place on a flight. Its ID is derived from
// the owning flight and the seat position, never from a counter:
// flightID + column letter + row number, e.g. "4C12".
type Seat struct {
	FlightID string
	Row      int
	Col      int
	Price    float64

	mu       sync.Mutex
	reserved bool
}

// NewSeat builds a free seat for the given flight position.
func NewSeat(flightID string, row, col int, price float64) *Seat {
	return &Seat{FlightID: flightID, Row: row, Col: col, Price: price}
}

// InventoryID implements Inventory.
func (s *Seat) InventoryID() string {
	return s.FlightID + conv.ColumnLabel(s.Col) + strconv.Itoa(s.Row)
}

// Reserved reports the current reservation flag.
func (s *Seat) Reserved() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reserved
}

// Reserve is an atomic check-and-set: among any number of concurrent
// calls on a free seat exactly one returns true.
func (s *Seat) Reserve() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reserved {
		return false
	}
	s.reserved = true
	return true
}

// Cancel releases the seat so it can be booked again.
func (s *Seat) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reserved = false
}

// Purchase reserves the seat and returns the transaction record linking
// it to the client. The record carries no ID yet; the record repository
// assigns one when the transaction is appended to the ledger.
func (s *Seat) Purchase(client *Client, date time.Time) (*Record, error) {
	if !s.Reserve() {
		return nil, ErrSeatReserved
	}
	return &Record{
		InventoryID: s.InventoryID(),
		ClientID:    client.ID,
		Item:        s,
		Client:      client,
		Date:        date,
	}, nil
}

// Describe implements Inventory.
func (s *Seat) Describe() string {
	return fmt.Sprintf("Seat %s%d | Flight: %s", conv.ColumnLabel(s.Col), s.Row, s.FlightID)
}
