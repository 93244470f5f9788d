package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/lacarta/lacarta/pkg/models"
)

// Reservation management

// CreateReservation creates a table reservation.
func (c *Client) CreateReservation(ctx context.Context, r *models.Reservation) (*models.Reservation, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/reservations", r)
	if err != nil {
		return nil, err
	}

	var result models.Reservation
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// GetReservation retrieves a reservation by id.
func (c *Client) GetReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/api/reservations/%d", id), nil)
	if err != nil {
		return nil, err
	}

	var result models.Reservation
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// ListReservations lists reservations, optionally filtered to one date
// (YYYY-MM-DD).
func (c *Client) ListReservations(ctx context.Context, date string) ([]*models.Reservation, error) {
	path := "/api/reservations"
	if date != "" {
		path += "?date=" + url.QueryEscape(date)
	}
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var result []*models.Reservation
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}

	return result, nil
}

// UpdateReservation updates an existing reservation.
func (c *Client) UpdateReservation(ctx context.Context, r *models.Reservation) error {
	resp, err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/api/reservations/%d", r.ID), r)
	if err != nil {
		return err
	}

	return decodeResponse(resp, nil)
}

// DeleteReservation removes a reservation.
func (c *Client) DeleteReservation(ctx context.Context, id int64) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/api/reservations/%d", id), nil)
	if err != nil {
		return err
	}

	return decodeResponse(resp, nil)
}

// Staff time tracking

// ClockIn opens a shift for the named staff member.
func (c *Client) ClockIn(ctx context.Context, staff string) (*models.TimeEntry, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/time-entries", map[string]string{"staff": staff})
	if err != nil {
		return nil, err
	}

	var result models.TimeEntry
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// ClockOut closes an open shift.
func (c *Client) ClockOut(ctx context.Context, entryID int64) (*models.TimeEntry, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, fmt.Sprintf("/api/time-entries/%d/clock-out", entryID), nil)
	if err != nil {
		return nil, err
	}

	var result models.TimeEntry
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// ListTimeEntries lists shifts, optionally filtered by staff member.
func (c *Client) ListTimeEntries(ctx context.Context, staff string) ([]*models.TimeEntry, error) {
	path := "/api/time-entries"
	if staff != "" {
		path += "?staff=" + url.QueryEscape(staff)
	}
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var result []*models.TimeEntry
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}

	return result, nil
}

// Invoicing

// CreateInvoice issues an invoice. The server computes the total from the
// lines and assigns the invoice number when left blank.
func (c *Client) CreateInvoice(ctx context.Context, inv *models.Invoice) (*models.Invoice, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/invoices", inv)
	if err != nil {
		return nil, err
	}

	var result models.Invoice
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// GetInvoice retrieves an invoice by id.
func (c *Client) GetInvoice(ctx context.Context, id int64) (*models.Invoice, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/api/invoices/%d", id), nil)
	if err != nil {
		return nil, err
	}

	var result models.Invoice
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// ListInvoices lists all invoices.
func (c *Client) ListInvoices(ctx context.Context) ([]*models.Invoice, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/invoices", nil)
	if err != nil {
		return nil, err
	}

	var result []*models.Invoice
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}

	return result, nil
}
