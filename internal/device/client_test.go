package device

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	addr := strings.TrimPrefix(srv.URL, "http://")
	return NewClient(addr, "/json/mailbox.json", 2*time.Second)
}

func TestFetch_wellFormed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/json/mailbox.json" {
			t.Errorf("path = %q; want /json/mailbox.json", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(`{"time": 1000, "ph": 6.5, "pulse_events": [{"time": 500, "type": 1, "len": 2.5, "interrupt": false}]}`)); err != nil {
			t.Errorf("write response: %v", err)
		}
	})

	snap, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if snap.Time != 1000 {
		t.Errorf("Time = %d; want 1000", snap.Time)
	}
	if snap.PH != 6.5 {
		t.Errorf("PH = %v; want 6.5", snap.PH)
	}
	if len(snap.PulseEvents) != 1 {
		t.Fatalf("got %d pulse events; want 1", len(snap.PulseEvents))
	}
	ev := snap.PulseEvents[0]
	if ev.Time != 500 || ev.Type != 1 || ev.Len != 2.5 || ev.Interrupt {
		t.Errorf("pulse event = %+v; want {500 1 2.5 false}", ev)
	}
}

func TestFetch_noPulseEvents(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte(`{"time": 1000, "ph": 6.5}`)); err != nil {
			t.Errorf("write response: %v", err)
		}
	})

	snap, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(snap.PulseEvents) != 0 {
		t.Errorf("got %d pulse events; want 0", len(snap.PulseEvents))
	}
}

func TestFetch_malformedJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte(`{not json`)); err != nil {
			t.Errorf("write response: %v", err)
		}
	})

	_, err := c.Fetch(context.Background())
	if !errors.Is(err, ErrBadPayload) {
		t.Fatalf("Fetch err = %v; want ErrBadPayload", err)
	}
}

func TestFetch_missingRequiredFields(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing time", `{"ph": 6.5}`},
		{"missing ph", `{"time": 1000}`},
		{"empty object", `{}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if _, err := w.Write([]byte(tc.body)); err != nil {
					t.Errorf("write response: %v", err)
				}
			})

			_, err := c.Fetch(context.Background())
			if !errors.Is(err, ErrBadPayload) {
				t.Fatalf("Fetch err = %v; want ErrBadPayload", err)
			}
		})
	}
}

func TestFetch_serverError_isNotBadPayload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := c.Fetch(context.Background())
	if err == nil {
		t.Fatal("Fetch = nil; want error on 500")
	}
	if errors.Is(err, ErrBadPayload) {
		t.Fatalf("Fetch err = %v; a 500 must stay retryable, not ErrBadPayload", err)
	}
}

func TestFetch_contextCanceled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Fetch(ctx)
	if err == nil {
		t.Fatal("Fetch = nil; want error on canceled context")
	}
}
