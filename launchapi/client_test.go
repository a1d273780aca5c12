package launchapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newPagedServer serves a two-page listing where the first page links to the
// second via a full next URL.
func newPagedServer(t *testing.T) *httptest.Server {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("offset") == "2" {
			fmt.Fprint(w, `{"count": 4, "next": null, "previous": "`+server.URL+`", "results": [
				{"id": "launch-3", "name": "Mission C", "net": "2024-06-03T12:00:00Z", "status": {"abbrev": "Go"}},
				{"id": "launch-4", "name": "Mission D", "net": "2024-06-04T12:00:00Z", "status": {"abbrev": "TBD"}}
			]}`)
			return
		}
		fmt.Fprint(w, `{"count": 4, "next": "`+server.URL+`/?offset=2", "previous": null, "results": [
			{"id": "launch-1", "name": "Mission A", "net": "2024-06-01T12:00:00Z", "status": {"abbrev": "Go"}},
			{"id": "launch-2", "name": "Mission B", "net": "2024-06-02T12:00:00Z", "status": {"abbrev": "TBC"}}
		]}`)
	}))
	return server
}

func TestClient_FetchFirstPage(t *testing.T) {
	server := newPagedServer(t)
	defer server.Close()

	c := New(server.URL)
	records, err := c.FetchFirstPage(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected only the first page, got %v records", len(records))
	}
	if records[0].ID != "launch-1" || records[0].Status.Abbrev != "Go" {
		t.Fatalf("first record decoded incorrectly: %+v", records[0])
	}
}

func TestClient_FetchAllWalksTheCursor(t *testing.T) {
	server := newPagedServer(t)
	defer server.Close()

	c := New(server.URL)
	records, err := c.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected all 4 records, got %v", len(records))
	}
	if records[3].ID != "launch-4" {
		t.Fatalf("pages concatenated out of order: %+v", records)
	}
}

func TestClient_FetchAllDiscardsPartialCrawl(t *testing.T) {
	calls := 0
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls > 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"count": 2, "next": "`+server.URL+`/?offset=1", "previous": null, "results": [
			{"id": "launch-1", "name": "Mission A", "net": "2024-06-01T12:00:00Z", "status": {"abbrev": "Go"}}
		]}`)
	}))
	defer server.Close()

	c := New(server.URL)
	records, err := c.FetchAll(context.Background())
	if err == nil {
		t.Fatalf("expected an error when a page fails mid-crawl")
	}
	if records != nil {
		t.Fatalf("a failed crawl must not return partial results, got %v", records)
	}
}
