package repository

import (
	"errors"
	"fmt"
	"sync"

	"github.com/iliyamo/airline-reservation/internal/conv"
	"github.com/iliyamo/airline-reservation/internal/model"
	"github.com/iliyamo/airline-reservation/internal/storage"
)

// RecordRepo is the append-only PNR ledger. Records are written once
// and never rewritten; the only file operation besides load is append.
type RecordRepo struct {
	mu      sync.RWMutex
	store   *storage.Store
	seq     Sequence
	records []*model.Record
}

// NewRecordRepo constructs a RecordRepo over the given file store.
func NewRecordRepo(store *storage.Store) *RecordRepo {
	return &RecordRepo{store: store}
}

// Load replaces the ledger with the file contents, resolving the
// client and inventory references against the already-loaded
// collections. Rows whose references have no match are skipped with an
// UnresolvedReferenceError rather than stored with nil links.
func (r *RecordRepo) Load(clients *ClientRepo, flights *FlightRepo) []error {
	rows, errs := r.store.LoadAll()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = r.records[:0]
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		rec, err := decodeRecord(row.Fields, clients, flights)
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
		r.records = append(r.records, rec)
		ids = append(ids, rec.ID)
	}
	r.seq.Reseed(ids)
	return errs
}

// Commit assigns the record its ID and appends it to the ledger. The
// record must come from a successful Purchase and carry no ID yet.
func (r *RecordRepo) Commit(rec *model.Record) error {
	if rec.ID != "" {
		return fmt.Errorf("record %q is already committed", rec.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	rec.ID = r.seq.Next()
	if err := r.store.Append(encodeRecord(rec)); err != nil {
		rec.ID = ""
		return err
	}
	r.records = append(r.records, rec)
	return nil
}

// ByClient returns every record linked to the given client ID.
func (r *RecordRepo) ByClient(clientID string) []*model.Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.Record
	for _, rec := range r.records {
		if rec.ClientID == clientID {
			out = append(out, rec)
		}
	}
	return out
}

// All returns a snapshot of the ledger.
func (r *RecordRepo) All() []*model.Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.Record, len(r.records))
	copy(out, r.records)
	return out
}

// Clear drops the ledger and truncates the data file.
func (r *RecordRepo) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.store.Truncate(); err != nil {
		return err
	}
	r.records = nil
	r.seq.Reseed(nil)
	return nil
}

func encodeRecord(rec *model.Record) []string {
	return []string{rec.ID, rec.InventoryID, rec.ClientID, conv.FormatDate(rec.Date)}
}

func decodeRecord(fields []string, clients *ClientRepo, flights *FlightRepo) (*model.Record, error) {
	if len(fields) != 4 {
		return nil, fmt.Errorf("record row has %d fields, want 4", len(fields))
	}
	date, err := conv.ParseDate(fields[3])
	if err != nil {
		return nil, fmt.Errorf("bad reservation date %q: %w", fields[3], err)
	}
	item, err := flights.SeatByInventoryID(fields[1])
	if err != nil {
		return nil, &UnresolvedReferenceError{Kind: "inventory", ID: fields[1]}
	}
	client, err := clients.ByID(fields[2])
	if err != nil {
		return nil, &UnresolvedReferenceError{Kind: "client", ID: fields[2]}
	}
	return &model.Record{
		ID:          fields[0],
		InventoryID: fields[1],
		ClientID:    fields[2],
		Item:        item,
		Client:      client,
		Date:        date,
	}, nil
}
