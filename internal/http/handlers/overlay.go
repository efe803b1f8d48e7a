package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"supporterboard/internal/i18n"
	"supporterboard/internal/realtime"
	"supporterboard/internal/view"
)

// streamHeartbeat keeps idle proxies from closing the overlay stream.
const streamHeartbeat = 25 * time.Second

func (a *App) OverlayJSON(w http.ResponseWriter, r *http.Request) {
	frame, err := a.overlaySnapshot(r)
	if err != nil {
		a.fail(w, r, err, i18n.NoticeLoadFailed)
		return
	}
	a.json(w, http.StatusOK, frame)
}

func (a *App) overlaySnapshot(r *http.Request) (view.OverlayView, error) {
	items, err := a.Supporters.List(r.Context())
	if err != nil {
		return view.OverlayView{}, err
	}
	return view.BuildOverlay(view.StateLoaded, items, a.Settings.Current()), nil
}

// OverlayStream mounts one overlay controller for the connection and pushes
// every re-rendered frame as a server-sent event.
func (a *App) OverlayStream(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	frames := make(chan view.OverlayView, 1)
	push := func(v view.OverlayView) {
		// Only the newest frame matters.
		for {
			select {
			case frames <- v:
				return
			default:
			}
			select {
			case <-frames:
			default:
			}
		}
	}

	ctrl := view.NewOverlayController(a.Supporters, a.Hub, a.Settings, a.Logger, push)
	if err := ctrl.Mount(r.Context()); err != nil {
		if errors.Is(err, realtime.ErrHubClosed) {
			a.error(w, http.StatusServiceUnavailable, "unavailable", "shutting down")
			return
		}
		// The first frame is already queued as loaded and empty.
		a.Logger.Warn().Err(err).Msg("overlay stream started without data")
	}
	defer ctrl.Unmount()

	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		a.Logger.Debug().Err(err).Msg("overlay stream: clear write deadline")
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, "retry: 3000\n\n")
	_ = rc.Flush()

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()
	var seq uint64
	for {
		select {
		case <-r.Context().Done():
			return
		case <-a.streams:
			return
		case frame := <-frames:
			seq++
			if err := writeEvent(w, seq, "overlay", frame); err != nil {
				return
			}
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, id uint64, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", id, event, data)
	return err
}
