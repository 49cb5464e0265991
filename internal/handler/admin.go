package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/airline-reservation/internal/repository"
)

// AdminHandler exposes destructive maintenance operations. All of them
// sit behind the AGENT role.
type AdminHandler struct {
	Planes  *repository.AirplaneRepo
	Clients *repository.ClientRepo
	Flights *repository.FlightRepo
	Records *repository.RecordRepo
	Tokens  *repository.TokenRepo
}

func NewAdminHandler(planes *repository.AirplaneRepo, clients *repository.ClientRepo, flights *repository.FlightRepo, records *repository.RecordRepo, tokens *repository.TokenRepo) *AdminHandler {
	return &AdminHandler{Planes: planes, Clients: clients, Flights: flights, Records: records, Tokens: tokens}
}

// ClearAll wipes every data file and the in-memory collections.
// Records go first so no record ever outlives its references. Active
// sessions of the deleted clients are revoked best effort.
func (h *AdminHandler) ClearAll(c echo.Context) error {
	ctx := c.Request().Context()
	for _, client := range h.Clients.All() {
		if err := h.Tokens.RevokeAllForClient(ctx, client.ID); err != nil && !errors.Is(err, repository.ErrTokenStoreDown) {
			log.Printf("admin: revoke sessions for client %s: %v", client.ID, err)
		}
	}

	for _, clear := range []func() error{
		h.Records.Clear,
		h.Flights.Clear,
		h.Planes.Clear,
		h.Clients.Clear,
	} {
		if err := clear(); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
	}
	return c.NoContent(http.StatusNoContent)
}

// ListClients is the agent view over registered clients. Password
// hashes never leave the server.
func (h *AdminHandler) ListClients(c echo.Context) error {
	clients := h.Clients.All()
	out := make([]echo.Map, 0, len(clients))
	for _, cl := range clients {
		out = append(out, echo.Map{
			"id":       cl.ID,
			"name":     cl.Name,
			"email":    cl.Email,
			"username": cl.Username,
			"miles":    cl.Miles,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"clients": out})
}
