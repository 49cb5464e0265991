package model

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFlight(t *testing.T, dims []CabinDims, prices []float64) *Flight {
	t.Helper()
	plane := NewAirplane("0", "Boeing 737", dims)
	f, err := NewFlight("0", plane,
		time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2025, time.June, 1, 12, 30, 0, 0, time.UTC),
		"IST", "LHR", prices)
	require.NoError(t, err)
	return f
}

func TestNewFlight_PriceCountMustMatchCategories(t *testing.T) {
	plane := NewAirplane("0", "A330", []CabinDims{{Rows: 2, Cols: 2}, {Rows: 10, Cols: 6}})
	_, err := NewFlight("0", plane, time.Now(), time.Now(), "IST", "LHR", []float64{100})
	assert.Error(t, err)

	_, err = NewFlight("0", nil, time.Now(), time.Now(), "IST", "LHR", nil)
	assert.Error(t, err)
}

func TestFlightSeatGrid(t *testing.T) {
	f := testFlight(t, []CabinDims{{Rows: 2, Cols: 3}}, []float64{120})

	seat, err := f.Seat(0, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 120.0, seat.Price)
	assert.Equal(t, "0C1", seat.InventoryID())

	for _, bad := range [][3]int{{1, 0, 0}, {0, 2, 0}, {0, 0, 3}, {-1, 0, 0}, {0, -1, 0}, {0, 0, -1}} {
		_, err := f.Seat(bad[0], bad[1], bad[2])
		assert.ErrorIs(t, err, ErrNoSuchSeat, "coords %v", bad)
	}
}

func TestFlightSeatStates_BitPosition(t *testing.T) {
	f := testFlight(t, []CabinDims{{Rows: 2, Cols: 3}}, []float64{120})
	require.Equal(t, []string{"000000"}, f.SeatStates())

	seat, err := f.Seat(0, 1, 2)
	require.NoError(t, err)
	require.True(t, seat.Reserve())

	// row-major: row*cols+col = 1*3+2 = 5
	assert.Equal(t, []string{"000001"}, f.SeatStates())
}

func TestFlightSeatStates_RoundTrip(t *testing.T) {
	f := testFlight(t, []CabinDims{{Rows: 2, Cols: 2}, {Rows: 3, Cols: 4}}, []float64{300, 100})

	for _, pos := range [][3]int{{0, 0, 1}, {1, 2, 3}, {1, 0, 0}} {
		seat, err := f.Seat(pos[0], pos[1], pos[2])
		require.NoError(t, err)
		require.True(t, seat.Reserve())
	}
	states := f.SeatStates()

	g := testFlight(t, []CabinDims{{Rows: 2, Cols: 2}, {Rows: 3, Cols: 4}}, []float64{300, 100})
	require.NoError(t, g.AssignSeatStates(states))
	assert.Equal(t, states, g.SeatStates())

	seat, err := g.Seat(1, 2, 3)
	require.NoError(t, err)
	assert.True(t, seat.Reserved())
	free, err := g.Seat(1, 1, 1)
	require.NoError(t, err)
	assert.False(t, free.Reserved())
}

func TestFlightAssignSeatStates_RejectsWithoutPartialApply(t *testing.T) {
	f := testFlight(t, []CabinDims{{Rows: 2, Cols: 3}}, []float64{120})

	assert.Error(t, f.AssignSeatStates(nil))
	assert.Error(t, f.AssignSeatStates([]string{"000"}))
	assert.Error(t, f.AssignSeatStates([]string{"00000x"}))
	assert.Error(t, f.AssignSeatStates([]string{"000000", "0"}))

	// a rejected assignment leaves every seat untouched
	assert.Equal(t, []string{"000000"}, f.SeatStates())
}

func TestSeatReserve_AtMostOnce(t *testing.T) {
	seat := NewSeat("7", 0, 0, 99)
	assert.True(t, seat.Reserve())
	assert.False(t, seat.Reserve())
	seat.Cancel()
	assert.True(t, seat.Reserve())
}

func TestSeatReserve_AtMostOnceConcurrent(t *testing.T) {
	seat := NewSeat("7", 3, 1, 99)

	const attempts = 64
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if seat.Reserve() {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
	assert.True(t, seat.Reserved())
}

func TestSeatPurchase(t *testing.T) {
	seat := NewSeat("4", 12, 2, 250)
	client := &Client{ID: "3", Username: "alice"}
	date := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

	rec, err := seat.Purchase(client, date)
	require.NoError(t, err)
	assert.Empty(t, rec.ID)
	assert.Equal(t, "4C12", rec.InventoryID)
	assert.Equal(t, "3", rec.ClientID)
	assert.Same(t, client, rec.Client)

	_, err = seat.Purchase(client, date)
	assert.ErrorIs(t, err, ErrSeatReserved)
}
