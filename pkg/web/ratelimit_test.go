// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package web

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewRateLimit(t *testing.T) {
	if _, err := NewRateLimit("lots", nil); err == nil {
		t.Fatal("expected an error for a malformed rate")
	}

	limit, err := NewRateLimit("2-M", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	h := limit(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(host, addr string) int {
		req := httptest.NewRequest(http.MethodGet, "http://"+host+"/api/site", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Code
	}

	for i, expected := range []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests} {
		if code := send("acme.example.com", "192.0.2.1:4000"); code != expected {
			t.Fatalf("request %d: expected %d, got %d", i, expected, code)
		}
	}

	if code := send("other.example.com", "192.0.2.1:4000"); code != http.StatusOK {
		t.Fatalf("expected a separate budget per host, got %d", code)
	}

	if code := send("acme.example.com", "192.0.2.2:4000"); code != http.StatusOK {
		t.Fatalf("expected a separate budget per client, got %d", code)
	}
}
