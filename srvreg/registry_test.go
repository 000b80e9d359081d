package srvreg

import (
	"log"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func testRegistry() *ServiceRegistry {
	logger := log.New(os.Stderr, "", 0)
	sr := NewServiceRegistry(nil, nil, logger)
	sr.RegisterDefaultServices()
	return sr
}

func TestMatchPath(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"/inspection/:id", "/inspection/INS-1", true},
		{"/inspection/:id", "/inspection/INS-1/items", false},
		{"/inspection/:id/items/:itemID", "/inspection/INS-1/items/CHK-2", true},
		{"/inspection/:id/sign", "/inspection/INS-1/sign", true},
		{"/inspection/:id/sign", "/schedule/SCH-1/sign", false},
		{"/schedule/:id/execute", "/schedule/SCH-1/execute", true},
		{"/schedule/:id/execute", "/schedule/execute", false},
	}
	for _, tt := range tests {
		if got := matchPath(tt.pattern, tt.path); got != tt.want {
			t.Errorf("matchPath(%q, %q) = %v, want %v", tt.pattern, tt.path, got, tt.want)
		}
	}
}

func TestGetHandlerForPath(t *testing.T) {
	sr := testRegistry()
	tests := []struct {
		method string
		path   string
		found  bool
	}{
		{"POST", "/schedule", true},
		{"GET", "/schedule", true},
		{"POST", "/schedule/SCH-1/execute", true},
		{"GET", "/inspection/INS-1", true},
		{"PUT", "/inspection/INS-1/items/CHK-1", true},
		{"PUT", "/inspection/INS-1/general-status", true},
		{"POST", "/inspection/INS-1/sign", true},
		{"GET", "/matrix", true},
		{"GET", "/notifications/USR-1", true},
		{"DELETE", "/inspection/INS-1", false},
		{"GET", "/unknown", false},
	}
	for _, tt := range tests {
		if _, found := sr.GetHandlerForPath(tt.method, tt.path); found != tt.found {
			t.Errorf("GetHandlerForPath(%q, %q) found = %v, want %v", tt.method, tt.path, found, tt.found)
		}
	}
}

func TestGenerateResponseUnknownRoute(t *testing.T) {
	sr := testRegistry()
	req := &Request{Method: "GET", Path: "/nope"}
	resp, err := req.GenerateResponse(sr)
	if err != nil {
		t.Fatalf("GenerateResponse: %v", err)
	}
	if resp.StatusCode != 404 {
		t.Errorf("StatusCode = %d, want 404", resp.StatusCode)
	}
}

func TestConvertHTTPRequest(t *testing.T) {
	httpReq := httptest.NewRequest("POST", "/inspection/INS-1/sign?debug=1", strings.NewReader(`{"user_id":"USR-1"}`))
	httpReq.Header.Set("Content-Type", "application/json")

	req, err := ConvertHTTPRequest(httpReq, "req-123")
	if err != nil {
		t.Fatalf("ConvertHTTPRequest: %v", err)
	}
	if req.Method != "POST" {
		t.Errorf("Method = %q, want POST", req.Method)
	}
	if req.Path != "/inspection/INS-1/sign?debug=1" {
		t.Errorf("Path = %q, query string must be preserved", req.Path)
	}
	if req.Body != `{"user_id":"USR-1"}` {
		t.Errorf("Body = %q", req.Body)
	}
	if req.RequestID != "req-123" {
		t.Errorf("RequestID = %q, want req-123", req.RequestID)
	}
	if req.Headers["Content-Type"] != "application/json" {
		t.Errorf("Content-Type header = %q", req.Headers["Content-Type"])
	}
}

func TestPathSegments(t *testing.T) {
	req := &Request{Path: "/inspection/INS-1/items/CHK-2?full=1"}
	segments := pathSegments(req)
	want := []string{"inspection", "INS-1", "items", "CHK-2"}
	if len(segments) != len(want) {
		t.Fatalf("len(segments) = %d, want %d", len(segments), len(want))
	}
	for i := range want {
		if segments[i] != want[i] {
			t.Errorf("segments[%d] = %q, want %q", i, segments[i], want[i])
		}
	}
}
