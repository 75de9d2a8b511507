package platform

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestGetNon2xxIsNotAnError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"message":"nope"}}`))
	}))
	defer ts.Close()

	resp, err := NewClient().Get(context.Background(), ts.URL, nil, nil)
	if err != nil {
		t.Fatalf("remote rejection surfaced as transport error: %v", err)
	}
	if resp.OK {
		t.Error("OK=true for a 403 response")
	}
	if resp.Status != http.StatusForbidden {
		t.Errorf("status = %d, want 403", resp.Status)
	}
	if GraphErrorMessage(resp.Body) != "nope" {
		t.Errorf("error message = %q", GraphErrorMessage(resp.Body))
	}
}

func TestGetTransportFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // connection refused from here on

	_, err := NewClient().Get(context.Background(), ts.URL, nil, nil)
	if err == nil {
		t.Fatal("expected a transport error for a refused connection")
	}
}

func TestGetEncodesParams(t *testing.T) {
	var gotQuery url.Values
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	params := url.Values{}
	params.Set("fields", "username,followers_count")
	params.Set("access_token", "tok")

	if _, err := NewClient().Get(context.Background(), ts.URL, params, nil); err != nil {
		t.Fatal(err)
	}
	if gotQuery.Get("fields") != "username,followers_count" || gotQuery.Get("access_token") != "tok" {
		t.Errorf("query = %v", gotQuery)
	}
}

func TestPostFormContentType(t *testing.T) {
	var gotContentType, gotGrant string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		_ = r.ParseForm()
		gotGrant = r.PostForm.Get("grant_type")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	if _, err := NewClient().PostForm(context.Background(), ts.URL, form); err != nil {
		t.Fatal(err)
	}
	if gotContentType != "application/x-www-form-urlencoded" {
		t.Errorf("content type = %q", gotContentType)
	}
	if gotGrant != "refresh_token" {
		t.Errorf("grant_type = %q", gotGrant)
	}
}

func TestOAuthErrorMessage(t *testing.T) {
	cases := []struct {
		body []byte
		want string
	}{
		{[]byte(`{"error":"invalid_grant","error_description":"Token revoked."}`), "Token revoked."},
		{[]byte(`{"error":"invalid_grant"}`), "invalid_grant"},
		{[]byte(`not json`), "unknown error"},
	}
	for _, c := range cases {
		if got := OAuthErrorMessage(c.body); got != c.want {
			t.Errorf("OAuthErrorMessage(%s) = %q, want %q", c.body, got, c.want)
		}
	}
}
