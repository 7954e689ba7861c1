package models

import (
	"net/mail"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	maxClientNameLen  = 120
	maxClientPhoneLen = 30
)

// Client is a registered API client that owns cards and charges.
type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ClientCreateRequest struct {
	Name  string  `json:"name" binding:"required"`
	Email string  `json:"email" binding:"required"`
	Phone *string `json:"phone"`
}

type ClientUpdateRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
}

// NewClient validates the inbound fields and builds a Client with fresh
// timestamps. The ID is assigned by the store on insert.
func NewClient(name, email string, phone *string) (*Client, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxClientNameLen {
		return nil, NewValidationError("name must be between 1 and 120 characters")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, NewValidationError("email is not a valid address")
	}
	if phone != nil && len(*phone) > maxClientPhoneLen {
		return nil, NewValidationError("phone must be at most 30 characters")
	}

	now := time.Now().UTC()
	return &Client{
		Name:      name,
		Email:     email,
		Phone:     phone,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ApplyUpdate mutates name/phone when provided and reports whether
// anything changed. UpdatedAt is bumped only on change.
func (c *Client) ApplyUpdate(req *ClientUpdateRequest) (bool, error) {
	updated := false
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" || len(name) > maxClientNameLen {
			return false, NewValidationError("name must be between 1 and 120 characters")
		}
		c.Name = name
		updated = true
	}
	if req.Phone != nil {
		if len(*req.Phone) > maxClientPhoneLen {
			return false, NewValidationError("phone must be at most 30 characters")
		}
		c.Phone = req.Phone
		updated = true
	}
	if updated {
		c.UpdatedAt = time.Now().UTC()
	}
	return updated, nil
}

// IsValidID reports whether s is a syntactically valid record id.
func IsValidID(s string) bool {
	_, err := primitive.ObjectIDFromHex(s)
	return err == nil
}
