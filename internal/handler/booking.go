package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/airline-reservation/internal/conv"
	"github.com/iliyamo/airline-reservation/internal/model"
	"github.com/iliyamo/airline-reservation/internal/queue"
	"github.com/iliyamo/airline-reservation/internal/repository"
	queuepublisher "github.com/iliyamo/airline-reservation/internal/service"
)

// milesPerBooking is credited to the client on every purchase.
const milesPerBooking = 500

// BookingHandler serves flight search, seat maps and seat purchase.
type BookingHandler struct {
	Clients *repository.ClientRepo
	Flights *repository.FlightRepo
	Records *repository.RecordRepo
}

func NewBookingHandler(clients *repository.ClientRepo, flights *repository.FlightRepo, records *repository.RecordRepo) *BookingHandler {
	return &BookingHandler{Clients: clients, Flights: flights, Records: records}
}

type bookSeatReq struct {
	Category int    `json:"category"`
	Row      int    `json:"row"`
	Column   string `json:"column"` // letter, A-Z
}

type recordResp struct {
	ID          string  `json:"id"`
	FlightID    string  `json:"flight_id"`
	Seat        string  `json:"seat"`
	Price       float64 `json:"price"`
	Origin      string  `json:"origin,omitempty"`
	Destination string  `json:"destination,omitempty"`
	Date        string  `json:"date"`
}

type seatMapResp struct {
	FlightID   string   `json:"flight_id"`
	Categories []string `json:"categories"` // '0' free, '1' reserved, row-major
	Prices     []float64 `json:"prices"`
}

// SearchFlights filters by origin, destination and departure day.
// All three query parameters are required.
func (h *BookingHandler) SearchFlights(c echo.Context) error {
	from := c.QueryParam("from")
	to := c.QueryParam("to")
	date := c.QueryParam("date")
	if from == "" || to == "" || date == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "from, to and date are required"})
	}
	day, err := conv.ParseDate(date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be DD/MM/YYYY"})
	}

	flights := h.Flights.Search(from, to, day)
	out := make([]flightResp, 0, len(flights))
	for _, f := range flights {
		out = append(out, toFlightResp(f))
	}
	return c.JSON(http.StatusOK, echo.Map{"flights": out})
}

// SeatMap returns the reservation bitmaps of a flight.
func (h *BookingHandler) SeatMap(c echo.Context) error {
	flight, err := h.Flights.ByID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "flight not found"})
	}
	return c.JSON(http.StatusOK, seatMapResp{
		FlightID:   flight.ID,
		Categories: flight.SeatStates(),
		Prices:     flight.CategoryPrices,
	})
}

// BookSeat purchases one seat for the authenticated client. The seat is
// reserved atomically; a taken seat yields 409 and no record.
func (h *BookingHandler) BookSeat(c echo.Context) error {
	clientID, _ := c.Get("client_id").(string)
	client, err := h.Clients.ByID(clientID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unknown client"})
	}

	var req bookSeatReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	col, err := conv.ColumnIndex(req.Column)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "column must be a letter A-Z"})
	}

	flightID := c.Param("id")
	flight, err := h.Flights.ByID(flightID)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "flight or seat not found"})
	}

	// the PNR carries the flight's departure date, not the booking
	// time. Truncated to the day because the ledger row stores the
	// date only.
	y, m, d := flight.Depart.Date()
	travelDate := time.Date(y, m, d, 0, 0, 0, 0, flight.Depart.Location())
	rec, err := h.Flights.PurchaseSeat(flightID, req.Category, req.Row, col, client, travelDate)
	switch {
	case errors.Is(err, model.ErrSeatReserved):
		return c.JSON(http.StatusConflict, echo.Map{"error": "seat already reserved"})
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, model.ErrNoSuchSeat):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "flight or seat not found"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed"})
	}

	if err := h.Records.Commit(rec); err != nil {
		// roll the seat back so the grid and the ledger stay consistent
		if cancelErr := h.Flights.CancelSeat(flightID, req.Category, req.Row, col); cancelErr != nil {
			log.Printf("booking: rollback seat after commit failure: %v", cancelErr)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed"})
	}

	if err := h.Clients.AddMiles(client.ID, milesPerBooking); err != nil {
		log.Printf("booking: credit miles for client %s: %v", client.ID, err)
	}

	// best effort, the booking already stands
	h.publishCreated(c, rec, client, flight)

	return c.JSON(http.StatusCreated, toRecordResp(rec, flight))
}

// MyRecords lists the purchase records of the authenticated client.
func (h *BookingHandler) MyRecords(c echo.Context) error {
	clientID, _ := c.Get("client_id").(string)
	recs := h.Records.ByClient(clientID)
	out := make([]recordResp, 0, len(recs))
	for _, rec := range recs {
		var flight *model.Flight
		if seat, ok := rec.Item.(*model.Seat); ok {
			flight, _ = h.Flights.ByID(seat.FlightID)
		}
		out = append(out, toRecordResp(rec, flight))
	}
	return c.JSON(http.StatusOK, echo.Map{"records": out})
}

// ListRecords is the agent view over every purchase record.
func (h *BookingHandler) ListRecords(c echo.Context) error {
	recs := h.Records.All()
	out := make([]recordResp, 0, len(recs))
	for _, rec := range recs {
		var flight *model.Flight
		if seat, ok := rec.Item.(*model.Seat); ok {
			flight, _ = h.Flights.ByID(seat.FlightID)
		}
		out = append(out, toRecordResp(rec, flight))
	}
	return c.JSON(http.StatusOK, echo.Map{"records": out})
}

func (h *BookingHandler) publishCreated(c echo.Context, rec *model.Record, client *model.Client, flight *model.Flight) {
	ev := queue.RecordCreatedEvent{
		RecordID:  rec.ID,
		ClientID:  client.ID,
		Username:  client.Username,
		SeatLabel: rec.InventoryID,
		Date:      conv.FormatDate(rec.Date),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if seat, ok := rec.Item.(*model.Seat); ok {
		ev.FlightID = seat.FlightID
		ev.Price = seat.Price
	}
	if flight != nil {
		ev.Origin = flight.Origin
		ev.Destination = flight.Destination
	}
	if err := queuepublisher.PublishRecordCreated(c.Request().Context(), ev); err != nil {
		log.Printf("booking: publish record event: %v", err)
	}
}

func toRecordResp(rec *model.Record, flight *model.Flight) recordResp {
	out := recordResp{
		ID:   rec.ID,
		Seat: rec.InventoryID,
		// the ledger row stores the date only, render the same
		Date: conv.FormatDate(rec.Date),
	}
	if seat, ok := rec.Item.(*model.Seat); ok {
		out.FlightID = seat.FlightID
		out.Price = seat.Price
	}
	if flight != nil {
		out.Origin = flight.Origin
		out.Destination = flight.Destination
	}
	return out
}
