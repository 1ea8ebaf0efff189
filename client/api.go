// Package client is the application side of the POS: a thin API client, the
// cart reducer, persisted session state and the kitchen display poller.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"restaurant-pos-api/models"
	"restaurant-pos-api/services"

	"github.com/pkg/errors"
)

const defaultAddr = "http://localhost:5000"

// APIError is a non-2xx response; Message is the server's error string
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Count   int             `json:"count"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
	Token   string          `json:"token"`
	User    *models.User    `json:"user"`
}

// Session is the persisted login
type Session struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

type Client struct {
	addr       string
	token      string
	httpClient *http.Client
}

func New(addr, token string) *Client {
	if addr == "" {
		addr = defaultAddr
	}
	return &Client{
		addr:       strings.TrimRight(addr, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) SetToken(token string) { c.token = token }

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) (*envelope, error) {
	u := c.addr + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var payload bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&payload).Encode(body); err != nil {
			return nil, errors.Wrap(err, "encode request")
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, u, &payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 300 {
			return nil, &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return nil, errors.Wrap(err, "decode response")
	}
	if resp.StatusCode >= 300 || !env.Success {
		msg := env.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &APIError{Status: resp.StatusCode, Message: msg}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, errors.Wrap(err, "decode data")
		}
	}
	return &env, nil
}

// Login returns the session for valid credentials and starts using its token
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/auth/login", nil,
		map[string]string{"email": email, "password": password}, nil)
	if err != nil {
		return nil, err
	}
	return c.session(env)
}

// Register returns a session for customers. Staff accounts come back with a
// nil session and the server's pending message.
func (c *Client) Register(ctx context.Context, in services.RegisterInput) (*Session, string, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/auth/register", nil, in, nil)
	if err != nil {
		return nil, "", err
	}
	if env.Token == "" {
		return nil, env.Message, nil
	}
	s, err := c.session(env)
	return s, env.Message, err
}

func (c *Client) session(env *envelope) (*Session, error) {
	if env.Token == "" || env.User == nil {
		return nil, errors.New("login response carried no token")
	}
	c.token = env.Token
	return &Session{Token: env.Token, User: *env.User}, nil
}

func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	if _, err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) Categories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	_, err := c.do(ctx, http.MethodGet, "/api/categories", nil, nil, &out)
	return out, err
}

// MenuItems lists the menu; categoryID 0 means all categories
func (c *Client) MenuItems(ctx context.Context, categoryID uint) ([]models.MenuItem, error) {
	q := url.Values{}
	if categoryID != 0 {
		q.Set("category", fmt.Sprint(categoryID))
	}
	var out []models.MenuItem
	_, err := c.do(ctx, http.MethodGet, "/api/menu-items", q, nil, &out)
	return out, err
}

func (c *Client) CreateOrder(ctx context.Context, in services.CreateOrderInput) (*models.Order, error) {
	var o models.Order
	if _, err := c.do(ctx, http.MethodPost, "/api/orders", nil, in, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// OrderQuery mirrors the server's order list filters
type OrderQuery struct {
	Statuses      []models.OrderStatus
	Date          string
	PaymentStatus models.PaymentStatus
	PaymentMethod models.PaymentMethod
}

func (q OrderQuery) values() url.Values {
	v := url.Values{}
	for _, s := range q.Statuses {
		v.Add("status", string(s))
	}
	if q.Date != "" {
		v.Set("date", q.Date)
	}
	if q.PaymentStatus != "" {
		v.Set("paymentStatus", string(q.PaymentStatus))
	}
	if q.PaymentMethod != "" {
		v.Set("paymentMethod", string(q.PaymentMethod))
	}
	return v
}

func (c *Client) Orders(ctx context.Context, q OrderQuery) ([]models.Order, error) {
	var out []models.Order
	_, err := c.do(ctx, http.MethodGet, "/api/orders", q.values(), nil, &out)
	return out, err
}

func (c *Client) UpdateOrder(ctx context.Context, id uint, in services.UpdateOrderInput) (*models.Order, error) {
	var o models.Order
	if _, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/orders/%d", id), nil, in, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// SetStatus is the kitchen/waiter shortcut for a status-only update
func (c *Client) SetStatus(ctx context.Context, id uint, status models.OrderStatus) (*models.Order, error) {
	return c.UpdateOrder(ctx, id, services.UpdateOrderInput{Status: &status})
}

// MarkPaid records payment with the given method
func (c *Client) MarkPaid(ctx context.Context, id uint, method models.PaymentMethod) (*models.Order, error) {
	paid := models.PaymentPaid
	return c.UpdateOrder(ctx, id, services.UpdateOrderInput{PaymentStatus: &paid, PaymentMethod: &method})
}

func (c *Client) Stats(ctx context.Context) (*services.Dashboard, error) {
	var d services.Dashboard
	if _, err := c.do(ctx, http.MethodGet, "/api/stats", nil, nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *Client) Analytics(ctx context.Context) (*services.Analytics, error) {
	var a services.Analytics
	if _, err := c.do(ctx, http.MethodGet, "/api/analytics", nil, nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}
