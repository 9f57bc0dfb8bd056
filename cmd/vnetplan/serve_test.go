package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return newRouter(openTestDB(t))
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	r := testRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("healthz: %d %q", w.Code, w.Body.String())
	}
}

func TestPlanEndpoint(t *testing.T) {
	r := testRouter(t)
	w := postJSON(t, r, "/plan", apiPlanRequest{
		Existing: []string{"172.16.1.0/26"},
		Subnets: []apiSubnet{
			{Role: "webapp", Prefix: 27},
			{Role: "private-endpoint", Prefix: 27},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	var doc planDocument
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc.Network != "172.16.1.64/26" {
		t.Fatalf("network: %s", doc.Network)
	}
	if doc.Params["webappSubnetAddressPrefix"] != "172.16.1.64/27" {
		t.Fatalf("params: %v", doc.Params)
	}
}

func TestPlanEndpointTypedErrors(t *testing.T) {
	r := testRouter(t)

	w := postJSON(t, r, "/plan", apiPlanRequest{
		Existing: []string{"garbage"},
		Subnets:  []apiSubnet{{Role: "a", Prefix: 27}},
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["error_kind"] != "InvalidCIDR" {
		t.Fatalf("error kind: %v", body)
	}

	w = postJSON(t, r, "/plan", apiPlanRequest{
		Existing: []string{"172.16.0.0/12"},
		Subnets:  []apiSubnet{{Role: "a", Prefix: 27}},
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	body = nil
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["error_kind"] != "SearchExhausted" {
		t.Fatalf("error kind: %v", body)
	}
}

func TestSnapshotEndpoints(t *testing.T) {
	r := testRouter(t)

	w := postJSON(t, r, "/snapshots", apiSnapshotRequest{
		Label:   "api-test",
		Entries: []string{"10.1.0.0/16"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status %d: %s", w.Code, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/snapshots/api-test", nil)
	get := httptest.NewRecorder()
	r.ServeHTTP(get, req)
	if get.Code != http.StatusOK {
		t.Fatalf("get status %d: %s", get.Code, get.Body.String())
	}
	var body struct {
		Label   string   `json:"label"`
		Entries []string `json:"entries"`
	}
	if err := json.Unmarshal(get.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Label != "api-test" || len(body.Entries) != 1 {
		t.Fatalf("snapshot body: %+v", body)
	}

	// planning against the stored snapshot
	plan := postJSON(t, r, "/plan", apiPlanRequest{
		Snapshot: "api-test",
		Base:     "10.1.0.0/16",
		Strategy: strategyBase,
		Subnets:  []apiSubnet{{Role: "a", Prefix: 27}},
	})
	if plan.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected exhaustion against a fully reserved base, got %d: %s", plan.Code, plan.Body.String())
	}
}

func TestSnapshotRejectsBadEntries(t *testing.T) {
	r := testRouter(t)
	w := postJSON(t, r, "/snapshots", apiSnapshotRequest{
		Label:   "bad-entries",
		Entries: []string{"nope"},
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
}
