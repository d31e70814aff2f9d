package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// WebhookSource is the alternative update source (§4.F): it binds an HTTP
// endpoint and emits one update per POST body, matching the same Update
// channel contract PollingSource exposes so bot.Run doesn't care which
// source fed it.
type WebhookSource struct {
	addr   string
	path   string
	logger *slog.Logger

	server *http.Server
}

// NewWebhookSource builds a WebhookSource listening on addr and accepting
// updates POSTed to path.
func NewWebhookSource(addr, path string, logger *slog.Logger) *WebhookSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookSource{addr: addr, path: path, logger: logger}
}

// Updates binds the listening address and returns a channel of updates. The
// channel closes once ctx is cancelled and the server has finished
// unwinding in-flight requests.
func (w *WebhookSource) Updates(ctx context.Context) (<-chan Update, error) {
	out := make(chan Update)

	mux := http.NewServeMux()
	mux.HandleFunc(w.path, func(rw http.ResponseWriter, r *http.Request) {
		var u Update
		if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
			w.logger.Warn("webhook: failed to decode update", "error", err)
			rw.WriteHeader(http.StatusBadRequest)
			return
		}
		select {
		case out <- u:
			rw.WriteHeader(http.StatusOK)
		case <-r.Context().Done():
		}
	})

	ln, err := net.Listen("tcp", w.addr)
	if err != nil {
		return nil, fmt.Errorf("canoe/telegram: bind webhook address: %w", err)
	}

	w.server = &http.Server{
		Handler:     mux,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	served := make(chan struct{})
	go func() {
		defer close(served)
		if err := w.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			w.logger.Error("webhook: server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		w.server.Shutdown(shutdownCtx)
		<-served
		close(out)
	}()

	return out, nil
}

// Close unbinds the webhook address immediately, without waiting for
// in-flight requests.
func (w *WebhookSource) Close() error {
	if w.server == nil {
		return nil
	}
	return w.server.Close()
}
