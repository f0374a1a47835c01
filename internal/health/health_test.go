package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fd1az/liquidity-vector/internal/logger"
)

func TestHealthDegradesOnFailingCheck(t *testing.T) {
	s := NewServer(0, "test", logger.NewNop())
	s.RegisterCheck("redis", func(context.Context) (bool, string) { return true, "" })
	s.RegisterCheck("circuits", func(context.Context) (bool, string) { return false, "open: lifi" })

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d", resp.StatusCode)
	}
	var st Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatal(err)
	}
	if st.Status != "degraded" || st.Checks["circuits"].Message != "open: lifi" {
		t.Errorf("unexpected body %+v", st)
	}

	ready, err := http.Get(srv.URL + "/ready")
	if err != nil {
		t.Fatal(err)
	}
	ready.Body.Close()
	if ready.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("ready status = %d", ready.StatusCode)
	}
}

func TestReportEndpoint(t *testing.T) {
	s := NewServer(0, "test", logger.NewNop())
	s.RegisterReport("/circuits", func(context.Context) any {
		return map[string]string{"lifi": "closed"}
	})

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/circuits")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["lifi"] != "closed" {
		t.Errorf("body = %v", body)
	}

	live, err := http.Get(srv.URL + "/live")
	if err != nil {
		t.Fatal(err)
	}
	live.Body.Close()
	if live.StatusCode != http.StatusOK {
		t.Errorf("live status = %d", live.StatusCode)
	}
}
