package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"supporterboard/internal/domain"
	"supporterboard/internal/view"
)

func readFrame(t *testing.T, rd *bufio.Reader) view.OverlayView {
	t.Helper()
	var event, data string
	for {
		line, err := rd.ReadString('\n')
		if err != nil {
			t.Fatalf("read stream: %v", err)
		}
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		case line == "" && event == "overlay":
			var frame view.OverlayView
			if err := json.Unmarshal([]byte(data), &frame); err != nil {
				t.Fatalf("decode frame: %v", err)
			}
			return frame
		}
	}
}

func TestOverlayStream(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/overlay/stream", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q", ct)
	}
	rd := bufio.NewReader(resp.Body)

	first := readFrame(t, rd)
	if !first.Empty || first.State != "loaded" {
		t.Fatalf("first frame = %+v, want loaded and empty", first)
	}

	if _, err := env.repo.Insert(context.Background(), domain.NewSupporterInput("Hala", 40, "")); err != nil {
		t.Fatalf("Insert() error: %v", err)
	}
	next := readFrame(t, rd)
	if len(next.Items) != 1 || next.Items[0].Name != "Hala" || next.Items[0].Medal != "🥇" {
		t.Fatalf("frame after insert = %+v", next)
	}

	title := "Live"
	env.app.Settings.Update(context.Background(), settingsPatchTitle(title))
	env.hub.Publish(domain.ChangeEvent{Kind: domain.ChangeUpdate, Table: settingsTable})
	if f := readFrame(t, rd); f.Title != title {
		t.Fatalf("frame title = %q, want %q", f.Title, title)
	}

	cancel()
	deadline := time.Now().Add(2 * time.Second)
	for env.hub.Len() != 1 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if env.hub.Len() != 1 {
		t.Fatalf("hub.Len() = %d after disconnect, want only the admin subscription", env.hub.Len())
	}
}

func TestOverlayJSON(t *testing.T) {
	env := newTestEnv(t)
	h := env.router()
	for _, amt := range []float64{10, 50, 30} {
		if _, err := env.repo.Insert(context.Background(), domain.NewSupporterInput("s", amt, "")); err != nil {
			t.Fatal(err)
		}
	}
	rec := doJSON(t, h, http.MethodGet, "/v1/overlay", "")
	var frame view.OverlayView
	if err := json.NewDecoder(rec.Body).Decode(&frame); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []float64{50, 30, 10}
	for i, item := range frame.Items {
		if item.Amount != want[i] || !item.TopTier {
			t.Fatalf("item %d = %+v", i, item)
		}
	}
}

type downPinger struct{}

func (downPinger) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	h := env.router()
	if rec := getPage(t, h, "/v1/healthz"); rec.Code != http.StatusOK {
		t.Fatalf("healthz = %d", rec.Code)
	}
	env.app.DB = downPinger{}
	if rec := getPage(t, h, "/v1/healthz"); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("healthz with store down = %d, want 503", rec.Code)
	}
}
