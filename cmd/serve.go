package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"prpulse/internal/bootstrap"
	"prpulse/internal/bootstrap/logging"
	"prpulse/internal/errs"
	"prpulse/internal/usecase/ingest"
	"prpulse/internal/usecase/notify"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the GitHub webhook receiver",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, services *bootstrap.Services) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		ctx = logging.WithAttrs(ctx, slog.String("command", cmd.CommandPath()))

		addr := strings.TrimSpace(app.Config.Server.Addr)
		if addr == "" {
			addr = ":8080"
		}

		server := &http.Server{
			Addr:    addr,
			Handler: newWebhookRouter(ctx, services.Ingest, services.Notify),
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.ListenAndServe()
		}()

		logging.Info(ctx, "webhook server started", slog.String("addr", addr))

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error(ctx, "webhook server failed", slog.Any("err", errs.Loggable(err)))
				return errs.Wrap(err, "serve webhooks")
			}
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return errs.Wrap(err, "shut down webhook server")
			}
			logging.Info(ctx, "webhook server stopped")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

type webhookHandler struct {
	baseCtx context.Context
	ingest  *ingest.Service
	notify  *notify.Service
}

type webhookResponse struct {
	Message    string `json:"message"`
	DeliveryID string `json:"deliveryId"`
	EventType  string `json:"eventType"`
}

type webhookErrorResponse struct {
	Error string `json:"error"`
}

func newWebhookRouter(ctx context.Context, ingestSvc *ingest.Service, notifySvc *notify.Service) http.Handler {
	h := &webhookHandler{
		baseCtx: ctx,
		ingest:  ingestSvc,
		notify:  notifySvc,
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Post("/webhooks/github", h.handleGitHub)
	return r
}

func (h *webhookHandler) handleGitHub(w http.ResponseWriter, r *http.Request) {
	eventType := strings.TrimSpace(r.Header.Get("X-GitHub-Event"))
	deliveryID := strings.TrimSpace(r.Header.Get("X-GitHub-Delivery"))
	signature := r.Header.Get("X-Hub-Signature-256")

	if eventType == "" || deliveryID == "" || strings.TrimSpace(signature) == "" {
		writeWebhookError(w, http.StatusBadRequest, "missing webhook headers")
		return
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		writeWebhookError(w, http.StatusBadRequest, "failed to read payload")
		return
	}

	// Processing continues on the server context so a dropped client
	// connection cannot half-process a stored event.
	ctx := logging.WithAttrs(h.baseCtx,
		slog.String("trace_id", uuid.NewString()),
		slog.String("delivery_id", deliveryID),
	)

	result, err := h.ingest.Ingest(ctx, ingest.IngestInput{
		EventType:  eventType,
		DeliveryID: deliveryID,
		Signature:  signature,
		Payload:    payload,
	})
	if err != nil {
		if errors.Is(err, ingest.ErrInvalidSignature) {
			writeWebhookError(w, http.StatusBadRequest, "invalid signature")
			return
		}
		logging.Error(ctx, "webhook processing failed", slog.Any("err", errs.Loggable(err)))
		writeWebhookError(w, http.StatusInternalServerError, "processing failed")
		return
	}

	message := "skipped"
	if result.Stored {
		message = "stored"
		if !result.Event.Processed {
			if _, err := h.notify.ProcessEvent(ctx, result.Event, result.Envelope); err != nil {
				logging.Error(ctx, "event fan-out failed", slog.Any("err", errs.Loggable(err)))
			} else {
				message = "processed"
			}
		}
	}

	writeWebhookJSON(w, http.StatusOK, webhookResponse{
		Message:    message,
		DeliveryID: deliveryID,
		EventType:  eventType,
	})
}

func writeWebhookError(w http.ResponseWriter, status int, message string) {
	writeWebhookJSON(w, status, webhookErrorResponse{Error: message})
}

func writeWebhookJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}
