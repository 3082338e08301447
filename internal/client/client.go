// Package client is the API client behind cmd/cli. It mirrors the mobile
// app's contract: one in-memory session for the process lifetime, a bearer
// token on authenticated calls, no retry and no token refresh.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"notebazaar/internal/market"
)

var ErrNotLoggedIn = errors.New("not logged in")

type Session struct {
	User  market.User
	Token string
}

type Client struct {
	BaseURL string
	HTTP    *http.Client

	session *Session
}

func New(baseURL string) *Client {
	return &Client{BaseURL: baseURL, HTTP: &http.Client{}}
}

func (c *Client) Session() *Session { return c.session }

type apiError struct {
	Error string `json:"error"`
}

// decode reads the response, turning {"error": ...} bodies into plain errors.
func decode(resp *http.Response, out any) error {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		var e apiError
		if json.Unmarshal(body, &e) == nil && e.Error != "" {
			return errors.New(e.Error)
		}
		return fmt.Errorf("http %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.attachToken(req)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	return decode(resp, out)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	c.attachToken(req)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	return decode(resp, out)
}

func (c *Client) attachToken(req *http.Request) {
	if c.session != nil {
		req.Header.Set("Authorization", "Bearer "+c.session.Token)
	}
}

type RegisterInput struct {
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
	Program     string `json:"program"`
}

func (c *Client) Register(ctx context.Context, in RegisterInput) (*market.User, error) {
	var u market.User
	if err := c.postJSON(ctx, "/register", in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login stores the returned session; later calls attach its token.
func (c *Client) Login(ctx context.Context, identifier, password string) (*Session, error) {
	var resp struct {
		User  market.User `json:"user"`
		Token string      `json:"token"`
	}
	in := map[string]string{"identifier": identifier, "password": password}
	if err := c.postJSON(ctx, "/login", in, &resp); err != nil {
		return nil, err
	}
	c.session = &Session{User: resp.User, Token: resp.Token}
	return c.session, nil
}

func (c *Client) Notes(ctx context.Context, seller string) ([]market.Note, error) {
	path := "/notes"
	if seller != "" {
		path += "?seller=" + seller
	}
	var notes []market.Note
	if err := c.getJSON(ctx, path, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

type UploadInput struct {
	Title       string
	Description string
	Program     string
	Semester    int
	Subject     string
	Price       int
	Filename    string
	PDF         io.Reader
}

func (c *Client) UploadNote(ctx context.Context, in UploadInput) (*market.Note, error) {
	if c.session == nil {
		return nil, ErrNotLoggedIn
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := map[string]string{
		"title":       in.Title,
		"description": in.Description,
		"program":     in.Program,
		"semester":    strconv.Itoa(in.Semester),
		"subject":     in.Subject,
		"price":       strconv.Itoa(in.Price),
		"seller":      c.session.User.Username,
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	if in.PDF != nil {
		fw, err := mw.CreateFormFile("pdf", in.Filename)
		if err != nil {
			return nil, err
		}
		if _, err := io.Copy(fw, in.PDF); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/notes", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.attachToken(req)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	var note market.Note
	if err := decode(resp, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// Purchase buys a note for the logged-in user. The payment intent id, when
// present, ends up on the payment ledger row.
func (c *Client) Purchase(ctx context.Context, noteID int64, paymentIntentID string) (*market.Purchase, error) {
	if c.session == nil {
		return nil, ErrNotLoggedIn
	}
	in := map[string]any{"buyer": c.session.User.Username, "note_id": noteID}
	if paymentIntentID != "" {
		in["payment_intent_id"] = paymentIntentID
	}
	var p market.Purchase
	if err := c.postJSON(ctx, "/purchases", in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) Purchases(ctx context.Context) ([]market.Note, error) {
	if c.session == nil {
		return nil, ErrNotLoggedIn
	}
	var notes []market.Note
	if err := c.getJSON(ctx, "/purchases/"+c.session.User.Username, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// CreatePaymentIntent asks the server for a Stripe client secret. Amount is
// in minor units; MinorUnits converts a note price.
func (c *Client) CreatePaymentIntent(ctx context.Context, amount int64, currency string) (string, error) {
	var resp struct {
		ClientSecret string `json:"clientSecret"`
	}
	in := map[string]any{"amount": amount, "currency": currency}
	if err := c.postJSON(ctx, "/create-payment-intent", in, &resp); err != nil {
		return "", err
	}
	return resp.ClientSecret, nil
}

// MinorUnits converts a catalog price (major units) to processor minor units.
func MinorUnits(price int) int64 { return int64(price) * 100 }
