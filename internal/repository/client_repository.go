package repository

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/iliyamo/airline-reservation/internal/conv"
	"github.com/iliyamo/airline-reservation/internal/model"
	"github.com/iliyamo/airline-reservation/internal/storage"
	"github.com/iliyamo/airline-reservation/internal/utils"
)

// ClientRepo owns the client collection and its data file.
type ClientRepo struct {
	mu      sync.RWMutex
	store   *storage.Store
	seq     Sequence
	clients []*model.Client
}

// NewClientRepo constructs a ClientRepo over the given file store.
func NewClientRepo(store *storage.Store) *ClientRepo {
	return &ClientRepo{store: store}
}

// RegisterParams carries the input of a fresh client registration. The
// plain password is hashed before anything is stored.
type RegisterParams struct {
	Name     string
	Passport model.Passport
	Email    string
	Phone    int64
	Username string
	Password string
}

// Load replaces the in-memory collection with the file contents and
// reseeds the ID sequence. Corrupt rows are skipped and reported.
func (r *ClientRepo) Load() []error {
	rows, errs := r.store.LoadAll()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients = r.clients[:0]
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		c, err := decodeClient(row.Fields)
		if err != nil {
			errs = append(errs, &storage.CorruptRecordError{Path: r.store.Path(), Line: row.Line, Err: err})
			continue
		}
		r.clients = append(r.clients, c)
		ids = append(ids, c.ID)
	}
	r.seq.Reseed(ids)
	return errs
}

// Register creates a fresh client. The username must be unused; cost is
// the bcrypt cost applied to the password.
func (r *ClientRepo) Register(p RegisterParams, cost int) (*model.Client, error) {
	p.Username = strings.TrimSpace(p.Username)
	if p.Username == "" || p.Password == "" {
		return nil, fmt.Errorf("username and password are required")
	}
	hash, err := utils.HashPassword(p.Password, cost)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.clients {
		if c.Username == p.Username {
			return nil, ErrUsernameExists
		}
	}
	c := &model.Client{
		ID:           r.seq.Next(),
		Name:         p.Name,
		Passport:     p.Passport,
		Email:        p.Email,
		Phone:        p.Phone,
		Username:     p.Username,
		PasswordHash: hash,
	}
	if err := r.store.Append(encodeClient(c)); err != nil {
		return nil, err
	}
	r.clients = append(r.clients, c)
	return c, nil
}

// Authenticate validates a username/password pair. An unknown username
// and a wrong password are indistinguishable to the caller.
func (r *ClientRepo) Authenticate(username, password string) (*model.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.clients {
		if c.Username == username {
			if utils.VerifyPassword(c.PasswordHash, password) {
				return c, nil
			}
			return nil, ErrInvalidCredentials
		}
	}
	return nil, ErrInvalidCredentials
}

// ByID returns the client with the given ID or ErrNotFound.
func (r *ClientRepo) ByID(id string) (*model.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.clients {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, fmt.Errorf("client %q: %w", id, ErrNotFound)
}

// All returns a snapshot of the collection.
func (r *ClientRepo) All() []*model.Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.Client, len(r.clients))
	copy(out, r.clients)
	return out
}

// AddMiles credits the mileage counter. Miles live only in memory; the
// file layout carries no miles column, matching the stored format.
func (r *ClientRepo) AddMiles(id string, miles int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.clients {
		if c.ID == id {
			c.Miles += miles
			return nil
		}
	}
	return fmt.Errorf("client %q: %w", id, ErrNotFound)
}

// Clear drops the collection and truncates the data file.
func (r *ClientRepo) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.store.Truncate(); err != nil {
		return err
	}
	r.clients = nil
	r.seq.Reseed(nil)
	return nil
}

// encodeClient renders the fourteen-column client row: identity,
// embedded passport, contacts, then credentials.
func encodeClient(c *model.Client) []string {
	return []string{
		c.ID,
		c.Name,
		c.Passport.ID,
		c.Passport.Type,
		c.Passport.Name,
		c.Passport.Country,
		conv.FormatDate(c.Passport.DoB),
		conv.FormatDate(c.Passport.DoI),
		conv.FormatDate(c.Passport.DoE),
		c.Passport.Sex,
		c.Email,
		strconv.FormatInt(c.Phone, 10),
		c.Username,
		c.PasswordHash,
	}
}

func decodeClient(fields []string) (*model.Client, error) {
	if len(fields) != 14 {
		return nil, fmt.Errorf("client row has %d fields, want 14", len(fields))
	}
	dob, err := conv.ParseDate(fields[6])
	if err != nil {
		return nil, fmt.Errorf("bad date of birth %q: %w", fields[6], err)
	}
	doi, err := conv.ParseDate(fields[7])
	if err != nil {
		return nil, fmt.Errorf("bad date of issue %q: %w", fields[7], err)
	}
	doe, err := conv.ParseDate(fields[8])
	if err != nil {
		return nil, fmt.Errorf("bad date of expiry %q: %w", fields[8], err)
	}
	phone, err := strconv.ParseInt(fields[11], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad phone %q: %w", fields[11], err)
	}
	return &model.Client{
		ID:   fields[0],
		Name: fields[1],
		Passport: model.Passport{
			ID:      fields[2],
			Type:    fields[3],
			Name:    fields[4],
			Country: fields[5],
			DoB:     dob,
			DoI:     doi,
			DoE:     doe,
			Sex:     fields[9],
		},
		Email:        fields[10],
		Phone:        phone,
		Username:     fields[12],
		PasswordHash: fields[13],
	}, nil
}
