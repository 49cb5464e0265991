package repository

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/airline-reservation/internal/model"
	"github.com/iliyamo/airline-reservation/internal/storage"
)

// env bundles one full repository set over a shared data directory so a
// test can reload from disk by building a second env on the same dir.
type env struct {
	dir     string
	planes  *AirplaneRepo
	clients *ClientRepo
	flights *FlightRepo
	records *RecordRepo
}

func newEnv(t *testing.T, dir string) *env {
	t.Helper()
	cipher, err := storage.NewCipher(667, 3, 411)
	require.NoError(t, err)

	planes := NewAirplaneRepo(storage.NewStore(filepath.Join(dir, "Airplanes.csv"), cipher))
	clients := NewClientRepo(storage.NewStore(filepath.Join(dir, "Clients.csv"), cipher))
	flights := NewFlightRepo(storage.NewStore(filepath.Join(dir, "Flights.csv"), cipher), planes)
	records := NewRecordRepo(storage.NewStore(filepath.Join(dir, "Records.csv"), cipher))
	return &env{dir: dir, planes: planes, clients: clients, flights: flights, records: records}
}

func (e *env) loadAll(t *testing.T) []error {
	t.Helper()
	var errs []error
	errs = append(errs, e.planes.Load()...)
	errs = append(errs, e.clients.Load()...)
	errs = append(errs, e.flights.Load()...)
	errs = append(errs, e.records.Load(e.clients, e.flights)...)
	return errs
}

func testPassport() model.Passport {
	return model.Passport{
		ID:      "U1234567",
		Type:    "P",
		Name:    "Alice Example",
		Country: "TR",
		DoB:     time.Date(1990, time.May, 4, 0, 0, 0, 0, time.UTC),
		DoI:     time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
		DoE:     time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC),
		Sex:     "F",
	}
}

func registerAlice(t *testing.T, e *env) *model.Client {
	t.Helper()
	c, err := e.clients.Register(RegisterParams{
		Name:     "Alice Example",
		Passport: testPassport(),
		Email:    "alice@example.com",
		Phone:    905551234567,
		Username: "alice",
		Password: "secret123",
	}, 4)
	require.NoError(t, err)
	return c
}

func TestAirplaneRepo_CreateAndReload(t *testing.T) {
	dir := t.TempDir()
	e := newEnv(t, dir)

	p, err := e.planes.Create("Boeing 737", []model.CabinDims{{Rows: 2, Cols: 3}})
	require.NoError(t, err)
	assert.Equal(t, "0", p.ID)

	p2, err := e.planes.Create("A330", []model.CabinDims{{Rows: 2, Cols: 2}, {Rows: 10, Cols: 6}})
	require.NoError(t, err)
	assert.Equal(t, "1", p2.ID)

	fresh := newEnv(t, dir)
	require.Empty(t, fresh.planes.Load())

	got, err := fresh.planes.ByID("0")
	require.NoError(t, err)
	assert.Equal(t, "Boeing 737", got.Model)
	assert.Equal(t, []model.CabinDims{{Rows: 2, Cols: 3}}, got.Dimensions)

	got, err = fresh.planes.ByID("1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.CategoryCount())

	// the reseeded sequence must not reuse loaded IDs
	p3, err := fresh.planes.Create("A320", []model.CabinDims{{Rows: 5, Cols: 6}})
	require.NoError(t, err)
	assert.Equal(t, "2", p3.ID)
}

func TestAirplaneRepo_RejectsBadDimensions(t *testing.T) {
	e := newEnv(t, t.TempDir())
	for _, dims := range [][]model.CabinDims{
		nil,
		{{Rows: 0, Cols: 3}},
		{{Rows: 2, Cols: 0}},
		{{Rows: 2, Cols: 27}},
	} {
		_, err := e.planes.Create("X", dims)
		assert.Error(t, err, "dims %v", dims)
	}
}

func TestClientRepo_RegisterAuthenticate(t *testing.T) {
	dir := t.TempDir()
	e := newEnv(t, dir)
	c := registerAlice(t, e)
	assert.Equal(t, "0", c.ID)
	assert.NotEqual(t, "secret123", c.PasswordHash)

	got, err := e.clients.Authenticate("alice", "secret123")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	_, err = e.clients.Authenticate("alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = e.clients.Authenticate("nobody", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// credentials survive a reload
	fresh := newEnv(t, dir)
	require.Empty(t, fresh.clients.Load())
	got, err = fresh.clients.Authenticate("alice", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.Equal(t, "U1234567", got.Passport.ID)
}

func TestClientRepo_DuplicateUsername(t *testing.T) {
	e := newEnv(t, t.TempDir())
	registerAlice(t, e)

	_, err := e.clients.Register(RegisterParams{
		Name:     "Other Alice",
		Passport: testPassport(),
		Email:    "other@example.com",
		Phone:    1,
		Username: "alice",
		Password: "hunter2",
	}, 4)
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestClientRepo_AddMiles(t *testing.T) {
	e := newEnv(t, t.TempDir())
	c := registerAlice(t, e)

	require.NoError(t, e.clients.AddMiles(c.ID, 500))
	require.NoError(t, e.clients.AddMiles(c.ID, 250))
	got, err := e.clients.ByID(c.ID)
	require.NoError(t, err)
	assert.Equal(t, 750, got.Miles)

	assert.ErrorIs(t, e.clients.AddMiles("42", 10), ErrNotFound)
}

func TestFlightRepo_CreateSearchReload(t *testing.T) {
	dir := t.TempDir()
	e := newEnv(t, dir)

	_, err := e.planes.Create("Boeing 737", []model.CabinDims{{Rows: 2, Cols: 3}})
	require.NoError(t, err)

	depart := time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)
	arrive := depart.Add(3 * time.Hour)
	f, err := e.flights.Create("0", depart, arrive, "IST", "LHR", []float64{120})
	require.NoError(t, err)
	assert.Equal(t, "0", f.ID)
	assert.Equal(t, []string{"000000"}, f.SeatStates())

	_, err = e.flights.Create("42", depart, arrive, "IST", "LHR", []float64{120})
	assert.ErrorIs(t, err, ErrNotFound)

	day := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	assert.Len(t, e.flights.Search("IST", "LHR", day), 1)
	assert.Empty(t, e.flights.Search("LHR", "IST", day))
	assert.Empty(t, e.flights.Search("IST", "LHR", day.AddDate(0, 0, 1)))

	fresh := newEnv(t, dir)
	require.Empty(t, fresh.planes.Load())
	require.Empty(t, fresh.flights.Load())
	got, err := fresh.flights.ByID("0")
	require.NoError(t, err)
	assert.True(t, got.Depart.Equal(depart))
	assert.Equal(t, "IST", got.Origin)
	assert.Equal(t, []float64{120}, got.CategoryPrices)
}

func TestFlightRepo_PurchasePersistsAndRejectsTaken(t *testing.T) {
	dir := t.TempDir()
	e := newEnv(t, dir)
	alice := registerAlice(t, e)

	_, err := e.planes.Create("Boeing 737", []model.CabinDims{{Rows: 2, Cols: 3}})
	require.NoError(t, err)
	depart := time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)
	_, err = e.flights.Create("0", depart, depart.Add(3*time.Hour), "IST", "LHR", []float64{120})
	require.NoError(t, err)

	date := time.Date(2025, time.May, 20, 0, 0, 0, 0, time.UTC)
	rec, err := e.flights.PurchaseSeat("0", 0, 1, 2, alice, date)
	require.NoError(t, err)
	assert.Equal(t, "0C1", rec.InventoryID)
	require.NoError(t, e.records.Commit(rec))
	assert.Equal(t, "0", rec.ID)

	// the same seat cannot be sold twice
	_, err = e.flights.PurchaseSeat("0", 0, 1, 2, alice, date)
	assert.ErrorIs(t, err, model.ErrSeatReserved)

	_, err = e.flights.PurchaseSeat("0", 0, 9, 9, alice, date)
	assert.ErrorIs(t, err, model.ErrNoSuchSeat)
	_, err = e.flights.PurchaseSeat("42", 0, 0, 0, alice, date)
	assert.ErrorIs(t, err, ErrNotFound)

	// the reservation is already on disk
	fresh := newEnv(t, dir)
	require.Empty(t, fresh.loadAll(t))
	got, err := fresh.flights.ByID("0")
	require.NoError(t, err)
	assert.Equal(t, []string{"000001"}, got.SeatStates())

	recs := fresh.records.ByClient(alice.ID)
	require.Len(t, recs, 1)
	assert.Equal(t, "0C1", recs[0].InventoryID)
	require.NotNil(t, recs[0].Client)
	assert.Equal(t, "alice", recs[0].Client.Username)
	require.NotNil(t, recs[0].Item)
	assert.Equal(t, "0C1", recs[0].Item.InventoryID())
	assert.True(t, recs[0].Date.Equal(date))
}

func TestFlightRepo_ConcurrentPurchaseSingleWinner(t *testing.T) {
	e := newEnv(t, t.TempDir())
	alice := registerAlice(t, e)

	_, err := e.planes.Create("Boeing 737", []model.CabinDims{{Rows: 2, Cols: 3}})
	require.NoError(t, err)
	depart := time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)
	_, err = e.flights.Create("0", depart, depart.Add(time.Hour), "IST", "LHR", []float64{120})
	require.NoError(t, err)

	const attempts = 16
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		wins   int
		losses int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.flights.PurchaseSeat("0", 0, 0, 0, alice, time.Now())
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
			} else if errors.Is(err, model.ErrSeatReserved) {
				losses++
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
	assert.Equal(t, attempts-1, losses)
}

func TestFlightRepo_CancelSeat(t *testing.T) {
	dir := t.TempDir()
	e := newEnv(t, dir)
	alice := registerAlice(t, e)

	_, err := e.planes.Create("Boeing 737", []model.CabinDims{{Rows: 2, Cols: 3}})
	require.NoError(t, err)
	depart := time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)
	_, err = e.flights.Create("0", depart, depart.Add(time.Hour), "IST", "LHR", []float64{120})
	require.NoError(t, err)

	_, err = e.flights.PurchaseSeat("0", 0, 0, 1, alice, time.Now())
	require.NoError(t, err)
	require.NoError(t, e.flights.CancelSeat("0", 0, 0, 1))

	// cancelling a free seat is a no-op
	require.NoError(t, e.flights.CancelSeat("0", 0, 0, 1))

	fresh := newEnv(t, dir)
	require.Empty(t, fresh.planes.Load())
	require.Empty(t, fresh.flights.Load())
	got, err := fresh.flights.ByID("0")
	require.NoError(t, err)
	assert.Equal(t, []string{"000000"}, got.SeatStates())
}

func TestRecordRepo_CommitRejectsCommitted(t *testing.T) {
	e := newEnv(t, t.TempDir())
	rec := &model.Record{ID: "5", InventoryID: "0A0", ClientID: "0", Date: time.Now()}
	assert.Error(t, e.records.Commit(rec))
}

func TestFlightRepo_LoadSkipsUnresolvedPlane(t *testing.T) {
	dir := t.TempDir()
	e := newEnv(t, dir)

	_, err := e.planes.Create("Boeing 737", []model.CabinDims{{Rows: 2, Cols: 3}})
	require.NoError(t, err)
	depart := time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)
	_, err = e.flights.Create("0", depart, depart.Add(time.Hour), "IST", "LHR", []float64{120})
	require.NoError(t, err)

	// a flight row pointing at a plane that does not exist
	cipher, err := storage.NewCipher(667, 3, 411)
	require.NoError(t, err)
	rogue := storage.NewStore(filepath.Join(dir, "Flights.csv"), cipher)
	require.NoError(t, rogue.Append([]string{"9", "42", "10:00 01/06/2025", "12:00 01/06/2025", "IST", "CDG", "99", "000000"}))

	fresh := newEnv(t, dir)
	require.Empty(t, fresh.planes.Load())
	errs := fresh.flights.Load()
	require.Len(t, errs, 1)

	var unresolved *UnresolvedReferenceError
	require.True(t, errors.As(errs[0], &unresolved))
	assert.Equal(t, "airplane", unresolved.Kind)
	assert.Equal(t, "42", unresolved.ID)
	assert.Equal(t, 2, unresolved.Line)

	// the healthy flight still loads
	_, err = fresh.flights.ByID("0")
	assert.NoError(t, err)
	_, err = fresh.flights.ByID("9")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordRepo_LoadSkipsUnresolvedReferences(t *testing.T) {
	dir := t.TempDir()
	e := newEnv(t, dir)
	alice := registerAlice(t, e)

	_, err := e.planes.Create("Boeing 737", []model.CabinDims{{Rows: 2, Cols: 3}})
	require.NoError(t, err)
	depart := time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)
	_, err = e.flights.Create("0", depart, depart.Add(time.Hour), "IST", "LHR", []float64{120})
	require.NoError(t, err)

	rec, err := e.flights.PurchaseSeat("0", 0, 0, 0, alice, time.Now())
	require.NoError(t, err)
	require.NoError(t, e.records.Commit(rec))

	cipher, err := storage.NewCipher(667, 3, 411)
	require.NoError(t, err)
	rogue := storage.NewStore(filepath.Join(dir, "Records.csv"), cipher)
	// unknown seat, then unknown client
	require.NoError(t, rogue.Append([]string{"7", "XX9", alice.ID, "01/06/2025"}))
	require.NoError(t, rogue.Append([]string{"8", "0A0", "42", "01/06/2025"}))

	fresh := newEnv(t, dir)
	require.Empty(t, fresh.planes.Load())
	require.Empty(t, fresh.clients.Load())
	require.Empty(t, fresh.flights.Load())
	errs := fresh.records.Load(fresh.clients, fresh.flights)
	require.Len(t, errs, 2)

	kinds := map[string]bool{}
	for _, err := range errs {
		var unresolved *UnresolvedReferenceError
		require.True(t, errors.As(err, &unresolved))
		kinds[unresolved.Kind] = true
	}
	assert.True(t, kinds["inventory"])
	assert.True(t, kinds["client"])

	// only the resolvable record survives
	require.Len(t, fresh.records.All(), 1)
	assert.Equal(t, "0", fresh.records.All()[0].ID)
}

func TestRepos_Clear(t *testing.T) {
	dir := t.TempDir()
	e := newEnv(t, dir)
	alice := registerAlice(t, e)

	_, err := e.planes.Create("Boeing 737", []model.CabinDims{{Rows: 2, Cols: 3}})
	require.NoError(t, err)
	depart := time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)
	_, err = e.flights.Create("0", depart, depart.Add(time.Hour), "IST", "LHR", []float64{120})
	require.NoError(t, err)
	rec, err := e.flights.PurchaseSeat("0", 0, 0, 0, alice, time.Now())
	require.NoError(t, err)
	require.NoError(t, e.records.Commit(rec))

	require.NoError(t, e.records.Clear())
	require.NoError(t, e.flights.Clear())
	require.NoError(t, e.planes.Clear())
	require.NoError(t, e.clients.Clear())

	fresh := newEnv(t, dir)
	require.Empty(t, fresh.loadAll(t))
	assert.Empty(t, fresh.planes.All())
	assert.Empty(t, fresh.clients.All())
	assert.Empty(t, fresh.flights.All())
	assert.Empty(t, fresh.records.All())

	// sequences restart from zero after a clear
	p, err := fresh.planes.Create("A320", []model.CabinDims{{Rows: 1, Cols: 1}})
	require.NoError(t, err)
	assert.Equal(t, "0", p.ID)
}
