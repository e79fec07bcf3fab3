// serve.go hosts a supervisor run behind an HTTP+WebSocket endpoint so
// a browser or dashboard client can submit a job and watch its Event
// stream live. Grounded on ternarybob-quaero/internal/handlers/
// websocket.go's upgrader/per-connection-mutex broadcast pattern and
// cmd/quaero/main.go's goroutine-launched server with signal-driven
// graceful shutdown.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/leadscoutai/leadscout/internal/app"
	"github.com/leadscoutai/leadscout/internal/interfaces"
	"github.com/leadscoutai/leadscout/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wsSink publishes every Event as a JSON text frame to one WebSocket
// connection. Writes are serialized with a mutex since gorilla/websocket
// allows only a single concurrent writer per *websocket.Conn and the
// supervisor's worker goroutines call Publish concurrently.
type wsSink struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *wsSink) Publish(e models.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.WriteJSON(e); err != nil {
		logger.Warn().Err(err).Msg("serve: failed to write event to client")
	}
}

type runRequest struct {
	Product string                 `json:"product"`
	Target  int                    `json:"target"`
	ICP     map[string]interface{} `json:"icp,omitempty"`
}

func serveCmd(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "leadscout.toml", "Configuration file path")
	port := fs.Int("port", 0, "HTTP port (overrides config server.port when nonzero)")
	fs.Parse(args)

	bootstrap(*configPath)
	application := buildApp()
	defer application.Close()

	listenPort := config.Server.Port
	if *port != 0 {
		listenPort = *port
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handleHealthz)
	mux.HandleFunc("/ws/run", handleRunWS(application))

	addr := fmt.Sprintf("%s:%s", config.Server.Host, strconv.Itoa(listenPort))
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		logger.Info().Str("addr", addr).Msg("serve: listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("serve: server failed")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info().Msg("serve: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("serve: graceful shutdown failed")
	}
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// handleRunWS upgrades the connection, reads exactly one runRequest,
// then drives a supervisor job whose events stream back over the same
// socket until the job completes or the client disconnects.
func handleRunWS(application *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error().Err(err).Msg("serve: websocket upgrade failed")
			return
		}
		defer conn.Close()

		var req runRequest
		if err := conn.ReadJSON(&req); err != nil {
			logger.Warn().Err(err).Msg("serve: failed to read run request")
			return
		}
		if req.Product == "" {
			conn.WriteJSON(models.Event{Type: models.EventError, Message: "product is required"})
			return
		}
		if req.Target <= 0 {
			req.Target = 20
		}

		ctx := r.Context()
		cancel := interfaces.NewCancelSignal()
		go func() {
			<-ctx.Done()
			cancel.Cancel()
		}()

		sink := &wsSink{conn: conn}
		result, err := application.Supervisor.Run(ctx, req.Product, req.Target, req.ICP, sink, cancel)
		if err != nil {
			conn.WriteJSON(models.Event{Type: models.EventError, Message: err.Error()})
			return
		}

		jobID, saveErr := application.RunStore.Save(context.Background(), req.Product, req.Target, time.Now().Add(-result.Elapsed), result)
		if saveErr != nil {
			logger.Warn().Err(saveErr).Msg("serve: failed to persist run result")
		}

		final, _ := json.Marshal(struct {
			JobID  string           `json:"job_id"`
			Result models.RunResult `json:"result"`
		}{JobID: jobID, Result: result})
		conn.WriteMessage(websocket.TextMessage, final)
	}
}
