// Package client is the Go API client for the ChurrasApp service: the
// same envelope decoding, pre-flight validation and shopping-list
// preview the web frontend performs, reusing the models package rules
// so validation is defined exactly once.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"churrasapp/catalog"
	"churrasapp/models"
)

// APIError is a non-2xx response surfaced with the envelope's message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *string         `json:"error"`
	Meta  map[string]any  `json:"meta"`
}

// Client talks to one ChurrasApp API instance.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) (map[string]any, error) {
	var r *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		r = bytes.NewReader(b)
	} else {
		r = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("client: decode response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := fmt.Sprintf("HTTP %d", resp.StatusCode)
		if env.Error != nil {
			msg = *env.Error
		}
		return env.Meta, &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return env.Meta, fmt.Errorf("client: decode data: %w", err)
		}
	}
	return env.Meta, nil
}

// EventDetails is the GET /api/events/:id composition.
type EventDetails struct {
	Event               models.Event       `json:"event"`
	Guests              []models.Guest     `json:"guests"`
	Items               []models.EventItem `json:"items"`
	GuestCount          int                `json:"guestCount"`
	ConfirmedGuestCount int64              `json:"confirmedGuestCount"`
}

// Page is the pagination block from list responses.
type Page struct {
	Total   int64
	Limit   int64
	Offset  int64
	HasMore bool
}

// CreateEvent validates locally first so obvious mistakes never reach
// the wire; the server remains authoritative.
func (c *Client) CreateEvent(ctx context.Context, e models.Event, items []models.EventItem) (*models.Event, error) {
	models.NormalizeEvent(&e)
	if err := models.ValidateEvent(&e, true); err != nil {
		return nil, err
	}

	payload := map[string]any{
		"name":                  e.Name,
		"date":                  e.Date,
		"location":              e.Location,
		"estimatedParticipants": e.EstimatedParticipants,
	}
	if e.ConfirmationDeadline != nil {
		payload["confirmationDeadline"] = e.ConfirmationDeadline
	}
	if len(items) > 0 {
		payload["items"] = items
	}

	var created models.Event
	if _, err := c.do(ctx, http.MethodPost, "/api/events", payload, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) GetEvent(ctx context.Context, id string) (*EventDetails, error) {
	if id == "" {
		return nil, fmt.Errorf("client: event id is required")
	}
	var out EventDetails
	if _, err := c.do(ctx, http.MethodGet, "/api/events/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListEvents(ctx context.Context, status string, limit, offset int64) ([]models.Event, Page, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	if limit > 0 {
		q.Set("limit", strconv.FormatInt(limit, 10))
	}
	if offset > 0 {
		q.Set("offset", strconv.FormatInt(offset, 10))
	}
	path := "/api/events"
	if enc := q.Encode(); enc != "" {
		path += "?" + enc
	}

	var events []models.Event
	meta, err := c.do(ctx, http.MethodGet, path, nil, &events)
	if err != nil {
		return nil, Page{}, err
	}
	return events, pageFromMeta(meta), nil
}

func pageFromMeta(meta map[string]any) Page {
	num := func(key string) int64 {
		if f, ok := meta[key].(float64); ok {
			return int64(f)
		}
		return 0
	}
	hasMore, _ := meta["hasMore"].(bool)
	return Page{Total: num("total"), Limit: num("limit"), Offset: num("offset"), HasMore: hasMore}
}

func (c *Client) UpdateEvent(ctx context.Context, id string, u models.EventUpdate) (*models.Event, error) {
	var out models.Event
	if _, err := c.do(ctx, http.MethodPut, "/api/events/"+url.PathEscape(id), u, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteEvent cancels the event; the record itself survives.
func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/events/"+url.PathEscape(id), nil, nil)
	return err
}

func (c *Client) AddGuest(ctx context.Context, eventID string, g models.Guest) (*models.Guest, error) {
	g.EventID = eventID
	models.NormalizeGuest(&g)
	if err := models.ValidateGuest(&g); err != nil {
		return nil, err
	}

	var out models.Guest
	if _, err := c.do(ctx, http.MethodPost, "/api/events/"+url.PathEscape(eventID)+"/guests", g, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AddItem(ctx context.Context, eventID string, it models.EventItem) (*models.EventItem, error) {
	it.EventID = eventID
	models.NormalizeItem(&it)
	if err := models.ValidateItem(&it); err != nil {
		return nil, err
	}

	var out models.EventItem
	if _, err := c.do(ctx, http.MethodPost, "/api/events/"+url.PathEscape(eventID)+"/items", it, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Templates(ctx context.Context) ([]models.EventItem, error) {
	var out []models.EventItem
	if _, err := c.do(ctx, http.MethodGet, "/api/templates", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PreviewShoppingList derives the display-only list for a headcount
// without touching the server; the server computes the same kind of
// list independently.
func (c *Client) PreviewShoppingList(estimatedParticipants int) []models.EventItem {
	return catalog.CalculateItems(estimatedParticipants)
}
