package learnworlds

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	method string
	path   string
	query  string
	header http.Header
	body   []byte
}

func testServer(t *testing.T, status int, response string) (*Client, *[]recordedRequest) {
	t.Helper()

	var requests []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		requests = append(requests, recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			header: r.Header.Clone(),
			body:   body,
		})
		w.WriteHeader(status)
		w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)

	return New(srv.URL, "client-id", "api-token", srv.Client()), &requests
}

func TestClient_Unenroll(t *testing.T) {
	t.Run("issues an authenticated DELETE with the product payload", func(t *testing.T) {
		client, requests := testServer(t, http.StatusOK, `{"success":true}`)

		resp, err := client.Unenroll(context.Background(), "jane@example.com", "prod-1", "course")

		require.NoError(t, err)
		assert.JSONEq(t, `{"success":true}`, string(resp))

		require.Len(t, *requests, 1)
		req := (*requests)[0]
		assert.Equal(t, http.MethodDelete, req.method)
		assert.Equal(t, "/users/jane@example.com/enrollment", req.path)
		assert.Equal(t, "Bearer api-token", req.header.Get("Authorization"))
		assert.Equal(t, "client-id", req.header.Get("Lw-Client"))
		assert.Equal(t, "application/json", req.header.Get("Content-Type"))

		var body enrollmentBody
		require.NoError(t, json.Unmarshal(req.body, &body))
		assert.Equal(t, "prod-1", body.ProductID)
		assert.Equal(t, "course", body.ProductType)
	})

	t.Run("surfaces the remote status and body on failure", func(t *testing.T) {
		client, _ := testServer(t, http.StatusBadGateway, `{"error":"upstream"}`)

		_, err := client.Unenroll(context.Background(), "jane@example.com", "prod-1", "course")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "502")
		assert.Contains(t, err.Error(), "upstream")
	})

	t.Run("escapes the email path segment", func(t *testing.T) {
		client, requests := testServer(t, http.StatusOK, `{}`)

		_, err := client.Unenroll(context.Background(), "jane+test@example.com", "p", "course")

		require.NoError(t, err)
		assert.Equal(t, "/users/jane+test@example.com/enrollment", (*requests)[0].path)
	})
}

func TestClient_Enroll(t *testing.T) {
	client, requests := testServer(t, http.StatusOK, `{"enrolled":true}`)

	resp, err := client.Enroll(context.Background(), "jane@example.com", EnrollmentRequest{
		ProductID:           "bundle-7",
		ProductType:         "bundle",
		Justification:       "Added by admin",
		Price:               49.99,
		SendEnrollmentEmail: true,
	})

	require.NoError(t, err)
	assert.JSONEq(t, `{"enrolled":true}`, string(resp))

	req := (*requests)[0]
	assert.Equal(t, http.MethodPost, req.method)
	assert.Equal(t, "/users/jane@example.com/enrollment", req.path)

	var body EnrollmentRequest
	require.NoError(t, json.Unmarshal(req.body, &body))
	assert.Equal(t, "bundle-7", body.ProductID)
	assert.Equal(t, 49.99, body.Price)
	assert.True(t, body.SendEnrollmentEmail)
}

func TestClient_UserReads(t *testing.T) {
	t.Run("GetUser includes suspended accounts", func(t *testing.T) {
		client, requests := testServer(t, http.StatusOK,
			`{"id":"u1","email":"jane@example.com","username":"jane","is_suspended":true}`)

		user, err := client.GetUser(context.Background(), "jane@example.com")

		require.NoError(t, err)
		assert.Equal(t, "u1", user.ID)
		assert.True(t, user.Suspended)

		req := (*requests)[0]
		assert.Equal(t, http.MethodGet, req.method)
		assert.Equal(t, "/users/jane@example.com", req.path)
		assert.Equal(t, "include_suspended=true", req.query)
	})

	t.Run("GetUser reports a missing user as ErrNotFound", func(t *testing.T) {
		client, _ := testServer(t, http.StatusNotFound, `{"error":"user not found"}`)

		_, err := client.GetUser(context.Background(), "ghost@example.com")

		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("GetUserCourses", func(t *testing.T) {
		client, requests := testServer(t, http.StatusOK, `[{"id":"c1","name":"Threat Modeling"}]`)

		courses, err := client.GetUserCourses(context.Background(), "jane@example.com")

		require.NoError(t, err)
		require.Len(t, courses, 1)
		assert.Equal(t, "Threat Modeling", courses[0].Name)
		assert.Equal(t, "/users/jane@example.com/courses", (*requests)[0].path)
	})

	t.Run("GetUserProducts", func(t *testing.T) {
		client, requests := testServer(t, http.StatusOK,
			`[{"id":"p1","name":"All Access","type":"bundle"}]`)

		products, err := client.GetUserProducts(context.Background(), "jane@example.com")

		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "bundle", products[0].Type)
		assert.Equal(t, "/users/jane@example.com/products", (*requests)[0].path)
	})
}
