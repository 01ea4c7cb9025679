package handler

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Ivicom76/RoboMeetServer/internal/core/service"
)

func newTestServer(t *testing.T, sweep time.Duration) *httptest.Server {
	t.Helper()
	rooms := service.NewRoomService(service.Options{})
	sup := NewSupervisor(sweep)
	go sup.Run()
	t.Cleanup(sup.Stop)

	srv := httptest.NewServer(NewHandler(rooms, sup).NewRouter())
	t.Cleanup(srv.Close)
	return srv
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, time.Minute)

	t.Run("health returns OK", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/health")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status=%d, want 200", resp.StatusCode)
		}
		body, _ := io.ReadAll(resp.Body)
		if string(body) != "OK" {
			t.Fatalf("body=%q, want OK", body)
		}
	})

	t.Run("other paths return the banner", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/whatever")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status=%d, want 200", resp.StatusCode)
		}
		body, _ := io.ReadAll(resp.Body)
		if string(body) != banner {
			t.Fatalf("body=%q, want banner", body)
		}
	})
}
