package model

import (
	"fmt"
	"time"

	"github.com/iliyamo/airline-reservation/internal/conv"
)

// Record is one PNR: a committed transaction linking a client to a
// purchased inventory item on a reservation date. Records are
// append-only and never updated in place. The on-disk representation
// keeps only the ID cross-references; Item and Client are the live
// handles resolved at load time.
//
// Fields:
//  ID          – immutable decimal string identifier (empty until the
//                ledger assigns one).
//  InventoryID – ID of the purchased item.
//  ClientID    – ID of the purchasing client.
//  Item        – resolved inventory handle, non-owning.
//  Client      – resolved client handle, non-owning.
//  Date        – reservation date.
type Record struct {
	ID          string
	InventoryID string
	ClientID    string
	Item        Inventory
	Client      *Client
	Date        time.Time
}

// Describe returns a one-line summary of the transaction.
func (r *Record) Describe() string {
	return fmt.Sprintf("Record %s | item %s | client %s | %s",
		r.ID, r.InventoryID, r.ClientID, conv.FormatDate(r.Date))
}
