package restdb_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ecofinds/pkg/restdb"

	"github.com/stretchr/testify/assert"
)

type row struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Price float64 `json:"price"`
}

func newClient(server *httptest.Server) *restdb.Client {
	return restdb.New(server.URL, "anon-key", 2*time.Second)
}

func TestQuery_GetBuildsFiltersAndHeaders(t *testing.T) {
	var gotPath, gotQuery, gotAPIKey, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAPIKey = r.Header.Get("apikey")
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]row{{ID: "p1", Title: "Chair", Price: 30}})
	}))
	defer server.Close()

	var rows []row
	err := newClient(server).From("products").
		Select("*, profiles:user_id (username)").
		Eq("user_id", "u1").
		Order("created_at", false).
		Limit(4).
		Get(context.Background(), &rows)

	assert.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, "p1", rows[0].ID)
	assert.Equal(t, "/rest/v1/products", gotPath)
	assert.Contains(t, gotQuery, "user_id=eq.u1")
	assert.Contains(t, gotQuery, "order=created_at.desc")
	assert.Contains(t, gotQuery, "limit=4")
	assert.Equal(t, "anon-key", gotAPIKey)
	assert.Equal(t, "Bearer anon-key", gotAuth)
}

func TestQuery_InsertReturnsRepresentation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))
		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Chair", body["title"])
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode([]row{{ID: "p9", Title: "Chair", Price: 30}})
	}))
	defer server.Close()

	var created []row
	err := newClient(server).From("products").
		Insert(context.Background(), map[string]interface{}{"title": "Chair", "price": 30}, &created)

	assert.NoError(t, err)
	assert.Len(t, created, 1)
	assert.Equal(t, "p9", created[0].ID)
}

func TestQuery_UpdateReportsMatchedRows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		// Owner filter rejected the write: zero rows
		json.NewEncoder(w).Encode([]json.RawMessage{})
	}))
	defer server.Close()

	rows, err := newClient(server).From("products").
		Eq("id", "p1").
		Eq("user_id", "not-the-owner").
		Update(context.Background(), map[string]interface{}{"price": 5})

	assert.NoError(t, err)
	assert.Equal(t, 0, rows)
}

func TestClient_BackendErrorIsTyped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "JWT expired", "code": "401"})
	}))
	defer server.Close()

	var rows []row
	err := newClient(server).From("products").Get(context.Background(), &rows)

	var apiErr *restdb.Error
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Contains(t, apiErr.Message, "JWT expired")
}

func TestClient_TransportErrorIsNotTyped(t *testing.T) {
	client := restdb.New("http://127.0.0.1:1", "anon-key", 200*time.Millisecond)

	var rows []row
	err := client.From("products").Get(context.Background(), &rows)

	assert.Error(t, err)
	var apiErr *restdb.Error
	assert.False(t, errors.As(err, &apiErr))
}

func TestAuth_SignInAndGetUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/v1/token":
			assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
			json.NewEncoder(w).Encode(map[string]interface{}{
				"access_token": "token-123",
				"user": map[string]interface{}{
					"id":            "u1",
					"email":         "alice@example.com",
					"user_metadata": map[string]interface{}{"username": "alice"},
				},
			})
		case "/auth/v1/user":
			assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(map[string]interface{}{
				"id":    "u1",
				"email": "alice@example.com",
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := newClient(server)
	session, err := client.Auth.SignInWithPassword(context.Background(), "alice@example.com", "password123")
	assert.NoError(t, err)
	assert.Equal(t, "token-123", session.AccessToken)
	assert.Equal(t, "u1", session.User.ID)
	assert.Equal(t, "alice", session.User.Username())

	user, err := client.Auth.GetUser(context.Background(), session.AccessToken)
	assert.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
}
