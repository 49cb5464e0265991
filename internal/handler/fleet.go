package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/airline-reservation/internal/conv"
	"github.com/iliyamo/airline-reservation/internal/model"
	"github.com/iliyamo/airline-reservation/internal/repository"
)

// FleetHandler serves the agent-only airplane and flight management
// endpoints.
type FleetHandler struct {
	Planes  *repository.AirplaneRepo
	Flights *repository.FlightRepo
}

func NewFleetHandler(planes *repository.AirplaneRepo, flights *repository.FlightRepo) *FleetHandler {
	return &FleetHandler{Planes: planes, Flights: flights}
}

type cabinDimsReq struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

type createAirplaneReq struct {
	Model      string         `json:"model"`
	Categories []cabinDimsReq `json:"categories"`
}

type airplaneResp struct {
	ID         string         `json:"id"`
	Model      string         `json:"model"`
	Categories []cabinDimsReq `json:"categories"`
	Seats      int            `json:"seats"`
}

type createFlightReq struct {
	AirplaneID  string    `json:"airplane_id"`
	Depart      string    `json:"depart"` // HH:MM DD/MM/YYYY
	Arrive      string    `json:"arrive"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	Prices      []float64 `json:"prices"` // one per category
}

type flightResp struct {
	ID          string    `json:"id"`
	AirplaneID  string    `json:"airplane_id"`
	Depart      string    `json:"depart"`
	Arrive      string    `json:"arrive"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	Prices      []float64 `json:"prices"`
}

// CreateAirplane registers a new airplane model with its seating
// dimensions per category.
func (h *FleetHandler) CreateAirplane(c echo.Context) error {
	var req createAirplaneReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Model = strings.TrimSpace(req.Model)
	if req.Model == "" || len(req.Categories) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "model and categories required"})
	}

	dims := make([]model.CabinDims, 0, len(req.Categories))
	for _, d := range req.Categories {
		dims = append(dims, model.CabinDims{Rows: d.Rows, Cols: d.Cols})
	}
	plane, err := h.Planes.Create(req.Model, dims)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, toAirplaneResp(plane))
}

// ListAirplanes returns the whole fleet.
func (h *FleetHandler) ListAirplanes(c echo.Context) error {
	planes := h.Planes.All()
	out := make([]airplaneResp, 0, len(planes))
	for _, p := range planes {
		out = append(out, toAirplaneResp(p))
	}
	return c.JSON(http.StatusOK, echo.Map{"airplanes": out})
}

// CreateFlight schedules a flight on an existing airplane. Prices must
// match the plane's category count.
func (h *FleetHandler) CreateFlight(c echo.Context) error {
	var req createFlightReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.AirplaneID == "" || req.Origin == "" || req.Destination == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "airplane_id, origin and destination required"})
	}
	depart, err := conv.ParseDateTime(req.Depart)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "depart must be HH:MM DD/MM/YYYY"})
	}
	arrive, err := conv.ParseDateTime(req.Arrive)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "arrive must be HH:MM DD/MM/YYYY"})
	}

	flight, err := h.Flights.Create(req.AirplaneID, depart, arrive, req.Origin, req.Destination, req.Prices)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "airplane not found"})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, toFlightResp(flight))
}

// ListFlights returns all scheduled flights.
func (h *FleetHandler) ListFlights(c echo.Context) error {
	flights := h.Flights.All()
	out := make([]flightResp, 0, len(flights))
	for _, f := range flights {
		out = append(out, toFlightResp(f))
	}
	return c.JSON(http.StatusOK, echo.Map{"flights": out})
}

func toAirplaneResp(p *model.Airplane) airplaneResp {
	cats := make([]cabinDimsReq, 0, len(p.Dimensions))
	seats := 0
	for _, d := range p.Dimensions {
		cats = append(cats, cabinDimsReq{Rows: d.Rows, Cols: d.Cols})
		seats += d.Rows * d.Cols
	}
	return airplaneResp{ID: p.ID, Model: p.Model, Categories: cats, Seats: seats}
}

func toFlightResp(f *model.Flight) flightResp {
	return flightResp{
		ID:          f.ID,
		AirplaneID:  f.Plane.ID,
		Depart:      conv.FormatDateTime(f.Depart),
		Arrive:      conv.FormatDateTime(f.Arrive),
		Origin:      f.Origin,
		Destination: f.Destination,
		Prices:      f.CategoryPrices,
	}
}
