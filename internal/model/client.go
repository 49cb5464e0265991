package model

import "time"

// Passport carries the identity document embedded in every client
// record. All fields are persisted in the client row.
//
// Fields:
//  ID      – passport number.
//  Type    – one-letter document type.
//  Name    – holder name as printed.
//  Country – issuing country code.
//  DoB     – date of birth.
//  DoI     – date of issue.
//  DoE     – date of expiry.
//  Sex     – one-letter sex marker.
type Passport struct {
	ID      string
	Type    string
	Name    string
	Country string
	DoB     time.Time
	DoI     time.Time
	DoE     time.Time
	Sex     string
}

// Client is a registered traveller. The password column of the client
// file stores a bcrypt hash, never the plain password.
//
// Fields:
//  ID           – immutable decimal string identifier.
//  Name         – client name, same as the passport name.
//  Passport     – embedded identity document.
//  Email        – contact email.
//  Phone        – contact phone number.
//  Username     – login name, unique across clients.
//  PasswordHash – bcrypt hash of the login password.
//  Miles        – mileage counter accrued on purchases.
type Client struct {
	ID           string
	Name         string
	Passport     Passport
	Email        string
	Phone        int64
	Username     string
	PasswordHash string
	Miles        int
}
