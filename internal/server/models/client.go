// Package models holds the records persisted by the EmergQR server.
package models

import "time"

// Client is a registered account holder. UUID is the public identifier; ID
// never leaves the database layer except in profile responses.
type Client struct {
	ID           int64
	UUID         string
	Email        string
	PasswordHash string
	Name         string
	Phone        string
	Username     string
	AvatarURL    string
	QRToken      string
	IsActive     bool
	IsAdmin      bool
	CreatedAt    time.Time
}

// EmergencyView is the subset of a client shown to whoever scans their QR.
type EmergencyView struct {
	Name      string
	Phone     string
	AvatarURL string
}

// Emergency returns the public part of c.
func (c *Client) Emergency() EmergencyView {
	return EmergencyView{Name: c.Name, Phone: c.Phone, AvatarURL: c.AvatarURL}
}
