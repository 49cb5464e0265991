package model

import (
	"errors"
	"time"
)

// ErrSeatReserved is the reservation conflict: a purchase attempt on an
// item that is already reserved. Callers receive it instead of a
// sentinel empty record so the failure cannot be mistaken for a valid
// transaction.
var ErrSeatReserved = errors.New("seat already reserved")

// Inventory is the capability shared by every purchasable item. Seats
// implement it today; further variants (cars, rooms) would satisfy the
// same interface.
type Inventory interface {
	// InventoryID returns the item's unique identifier.
	InventoryID() string
	// Reserve flips the item to reserved and reports true only if it
	// was free. A reserved item is left unchanged and reports false.
	Reserve() bool
	// Purchase reserves the item and returns the transaction record
	// linking it to the client and date. On conflict it returns
	// ErrSeatReserved and no state changes.
	Purchase(client *Client, date time.Time) (*Record, error)
	// Describe returns a human-readable summary. Side-effect free.
	Describe() string
}
