package repository

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/iliyamo/airline-reservation/internal/model"
	"github.com/iliyamo/airline-reservation/internal/storage"
)

// AirplaneRepo owns the airplane collection and its data file. A single
// mutex guards the read-modify-write path so creation and lookup never
// race.
type AirplaneRepo struct {
	mu     sync.RWMutex
	store  *storage.Store
	seq    Sequence
	planes []*model.Airplane
}

// NewAirplaneRepo constructs an AirplaneRepo over the given file store.
func NewAirplaneRepo(store *storage.Store) *AirplaneRepo {
	return &AirplaneRepo{store: store}
}

// Load replaces the in-memory collection with the file contents and
// reseeds the ID sequence. Corrupt rows are skipped and returned as
// per-line errors; the load itself never fails.
func (r *AirplaneRepo) Load() []error {
	rows, errs := r.store.LoadAll()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.planes = r.planes[:0]
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		p, err := decodeAirplane(row.Fields)
		if err != nil {
			errs = append(errs, &storage.CorruptRecordError{Path: r.store.Path(), Line: row.Line, Err: err})
			continue
		}
		r.planes = append(r.planes, p)
		ids = append(ids, p.ID)
	}
	r.seq.Reseed(ids)
	return errs
}

// Create registers a fresh airplane: a new ID is generated and the row
// is appended to the file before the plane joins the collection.
func (r *AirplaneRepo) Create(airModel string, dims []model.CabinDims) (*model.Airplane, error) {
	if airModel == "" || len(dims) == 0 {
		return nil, fmt.Errorf("airplane needs a model and at least one category")
	}
	for _, d := range dims {
		if d.Rows < 1 || d.Cols < 1 || d.Cols > 26 {
			return nil, fmt.Errorf("invalid cabin dimensions %dx%d", d.Rows, d.Cols)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	p := model.NewAirplane(r.seq.Next(), airModel, dims)
	if err := r.store.Append(encodeAirplane(p)); err != nil {
		return nil, err
	}
	r.planes = append(r.planes, p)
	return p, nil
}

// ByID returns the plane with the given ID or ErrNotFound.
func (r *AirplaneRepo) ByID(id string) (*model.Airplane, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.planes {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("airplane %q: %w", id, ErrNotFound)
}

// All returns a snapshot of the collection.
func (r *AirplaneRepo) All() []*model.Airplane {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.Airplane, len(r.planes))
	copy(out, r.planes)
	return out
}

// Clear drops the collection and truncates the data file.
func (r *AirplaneRepo) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.store.Truncate(); err != nil {
		return err
	}
	r.planes = nil
	r.seq.Reseed(nil)
	return nil
}

// encodeAirplane renders a plane as its file row:
// ID, model, category_count, "<rows> <cols>" per category. The
// dimension pair is a single space-joined field so the row keeps one
// column per category regardless of cabin size.
func encodeAirplane(p *model.Airplane) []string {
	fields := []string{p.ID, p.Model, strconv.Itoa(p.CategoryCount())}
	for _, d := range p.Dimensions {
		fields = append(fields, strconv.Itoa(d.Rows)+" "+strconv.Itoa(d.Cols))
	}
	return fields
}

func decodeAirplane(fields []string) (*model.Airplane, error) {
	if len(fields) < 3 {
		return nil, fmt.Errorf("airplane row has %d fields, want at least 3", len(fields))
	}
	count, err := strconv.Atoi(fields[2])
	if err != nil || count < 1 {
		return nil, fmt.Errorf("bad category count %q", fields[2])
	}
	if len(fields) != 3+count {
		return nil, fmt.Errorf("airplane row has %d fields, want %d for %d categories", len(fields), 3+count, count)
	}
	dims := make([]model.CabinDims, 0, count)
	for _, raw := range fields[3:] {
		parts := strings.Fields(raw)
		if len(parts) != 2 {
			return nil, fmt.Errorf("bad dimension pair %q", raw)
		}
		rows, err1 := strconv.Atoi(parts[0])
		cols, err2 := strconv.Atoi(parts[1])
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("bad dimension pair %q", raw)
		}
		dims = append(dims, model.CabinDims{Rows: rows, Cols: cols})
	}
	return model.NewAirplane(fields[0], fields[1], dims), nil
}
