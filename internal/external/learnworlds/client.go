// Package learnworlds implements the LearnWorlds admin API v2 client.
package learnworlds

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/go-querystring/query"
)

// ErrNotFound is returned when the API answers 404, e.g. looking up a user
// that does not exist in the school.
var ErrNotFound = errors.New("learnworlds: not found")

type Client struct {
	BaseURL  string
	lwClient string
	token    string
	HTTP     *http.Client
}

// New creates a LearnWorlds client. baseURL is the full admin API base,
// e.g. "https://school.example.com/admin/api/v2".
func New(baseURL, lwClient, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		BaseURL:  baseURL,
		lwClient: lwClient,
		token:    token,
		HTTP:     httpClient,
	}
}

type enrollmentBody struct {
	ProductID   string `json:"productId"`
	ProductType string `json:"productType"`
}

// Unenroll removes the learner's access to one product. The raw response
// body is returned so the webhook report can echo it verbatim.
func (c *Client) Unenroll(ctx context.Context, email, productID, productType string) (json.RawMessage, error) {
	body := enrollmentBody{
		ProductID:   productID,
		ProductType: productType,
	}
	return c.do(ctx, http.MethodDelete, c.userPath(email, "/enrollment"), "", body)
}

// EnrollmentRequest is the payload for granting access to one product.
type EnrollmentRequest struct {
	ProductID           string  `json:"productId"`
	ProductType         string  `json:"productType"`
	Justification       string  `json:"justification"`
	Price               float64 `json:"price"`
	SendEnrollmentEmail bool    `json:"send_enrollment_email"`
}

// Enroll grants the learner access to one product.
func (c *Client) Enroll(ctx context.Context, email string, req EnrollmentRequest) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, c.userPath(email, "/enrollment"), "", req)
}

// User is the subset of a LearnWorlds user this service reads.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Suspended bool   `json:"is_suspended"`
}

type userParams struct {
	IncludeSuspended bool `url:"include_suspended"`
}

// GetUser fetches a user by email, including suspended accounts.
func (c *Client) GetUser(ctx context.Context, email string) (*User, error) {
	params, _ := query.Values(userParams{IncludeSuspended: true})

	raw, err := c.do(ctx, http.MethodGet, c.userPath(email, ""), params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	return &u, nil
}

// Course is one course assigned to a user.
type Course struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GetUserCourses lists courses assigned to the user.
func (c *Client) GetUserCourses(ctx context.Context, email string) ([]Course, error) {
	raw, err := c.do(ctx, http.MethodGet, c.userPath(email, "/courses"), "", nil)
	if err != nil {
		return nil, err
	}

	var courses []Course
	if err := json.Unmarshal(raw, &courses); err != nil {
		return nil, fmt.Errorf("unmarshal courses: %w", err)
	}
	return courses, nil
}

// Product is one product (course or bundle) owned by a user.
type Product struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// GetUserProducts lists products the user has access to.
func (c *Client) GetUserProducts(ctx context.Context, email string) ([]Product, error) {
	raw, err := c.do(ctx, http.MethodGet, c.userPath(email, "/products"), "", nil)
	if err != nil {
		return nil, err
	}

	var products []Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, fmt.Errorf("unmarshal products: %w", err)
	}
	return products, nil
}

func (c *Client) userPath(email, suffix string) string {
	return "/users/" + url.PathEscape(email) + suffix
}

func (c *Client) do(ctx context.Context, method, path, rawQuery string, body any) (json.RawMessage, error) {
	var reqBody io.Reader
	if body != nil {
		j, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal: %w", err)
		}
		reqBody = bytes.NewReader(j)
	}

	fullURL := c.BaseURL + path
	if rawQuery != "" {
		fullURL += "?" + rawQuery
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Lw-Client", c.lwClient)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, method, path)
	}
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("learnworlds %s: %s", resp.Status, string(raw))
	}

	return raw, nil
}
