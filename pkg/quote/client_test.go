package quote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_Requests(t *testing.T) {
	var gotMethod, gotPath, gotToken string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath, gotToken = r.Method, r.URL.Path, r.Header.Get("X-Auth-Token")
		gotBody = nil
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/api/quotes" && r.Method == http.MethodGet:
			_, _ = w.Write([]byte(`{"data":[{"id":101,"cid":123,"quote":"q","author":"a"}]}`))
		default:
			_, _ = w.Write([]byte(`{"data":{"id":1000,"cid":123,"quote":"new","author":"me"}}`))
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL + "/api/")
	ctx := context.Background()

	quotes, err := c.List(ctx)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(quotes) != 1 || quotes[0].ID != 101 {
		t.Fatalf("List() = %+v", quotes)
	}
	if gotToken != DefaultToken {
		t.Fatalf("token = %q, want %q", gotToken, DefaultToken)
	}

	q, err := c.Create(ctx, Patch{Quote: String("new")})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if q.ID != 1000 || gotMethod != http.MethodPost || gotBody["quote"] != "new" {
		t.Fatalf("Create() = %+v via %s %v", q, gotMethod, gotBody)
	}
	if _, ok := gotBody["author"]; ok {
		t.Fatal("nil patch fields should be omitted")
	}

	if _, err := c.Update(ctx, 1000, Patch{Author: String("me")}); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if gotMethod != http.MethodPatch || gotPath != "/api/quotes/1000" {
		t.Fatalf("Update() sent %s %s", gotMethod, gotPath)
	}

	if _, err := c.Delete(ctx, 1000); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if gotMethod != http.MethodDelete || gotPath != "/api/quotes/1000" {
		t.Fatalf("Delete() sent %s %s", gotMethod, gotPath)
	}

	if _, err := c.Get(ctx, 1000); err != nil || gotPath != "/api/quotes/1000" {
		t.Fatalf("Get() sent %s, err %v", gotPath, err)
	}
}

func TestClient_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Auth-Token") != "7" {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":"invalid token"}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, WithToken("x")).List(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusForbidden || apiErr.Message != "invalid token" {
		t.Fatalf("List() error = %v, want 403 APIError", err)
	}

	_, err = NewClient(srv.URL, WithToken("7"), WithHTTPClient(srv.Client())).Get(context.Background(), 1)
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound || apiErr.Message != "Not Found" {
		t.Fatalf("Get() error = %v, want 404 APIError", err)
	}
}
