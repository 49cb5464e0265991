// Package queue defines message payloads exchanged over the message broker.
package queue

// RecordCreatedEvent is published when a seat purchase commits a PNR to
// the ledger. It carries enough information for downstream consumers to
// log or notify without reading the data files.
type RecordCreatedEvent struct {
	RecordID    string  `json:"record_id"`
	ClientID    string  `json:"client_id"`
	Username    string  `json:"username"`
	FlightID    string  `json:"flight_id"`
	SeatLabel   string  `json:"seat"`
	Price       float64 `json:"price"`
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	Date        string  `json:"reservation_date"`
	CreatedAt   string  `json:"created_at"`
}
