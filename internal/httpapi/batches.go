package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/roach88/linkage/internal/config"
	"github.com/roach88/linkage/internal/engine"
	"github.com/roach88/linkage/internal/ingest"
	"github.com/roach88/linkage/internal/record"
)

// maxBatchBytes caps an uploaded batch body.
const maxBatchBytes = 32 << 20

// Runner files batches of records. Implemented by *engine.Engine.
type Runner interface {
	Run(ctx context.Context, records []record.Record) (*engine.Result, error)
	RunFresh(ctx context.Context, records []record.Record) (*engine.Result, error)
}

// BatchHandler accepts CSV uploads and runs them through the engine.
type BatchHandler struct {
	runner Runner
	cfg    config.Config
	logger *slog.Logger
}

// NewBatchHandler constructs a batch handler.
func NewBatchHandler(runner Runner, cfg config.Config, logger *slog.Logger) *BatchHandler {
	return &BatchHandler{runner: runner, cfg: cfg, logger: logger}
}

// Register mounts batch endpoints on the router.
func (h *BatchHandler) Register(r chi.Router) {
	r.Post("/batches", h.HandleRunBatch)
}

// BatchResponse is returned by POST /batches.
type BatchResponse struct {
	Rows     int                `json:"rows"`
	Rejected []*ingest.RowError `json:"rejected"`
	*engine.Result
}

// HandleRunBatch handles POST /batches.
//
// The body is CSV with a header row, or headerless rows when
// positional=true. fresh=true clears the store first.
func (h *BatchHandler) HandleRunBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	fresh, err := boolParam(r, "fresh")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	positional, err := boolParam(r, "positional")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	body := http.MaxBytesReader(w, r.Body, maxBatchBytes)
	batch, err := ingest.Read(body, h.cfg, ingest.Options{Positional: positional})
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	run := h.runner.Run
	if fresh {
		run = h.runner.RunFresh
	}
	res, err := run(ctx, batch.Records)
	if err != nil {
		h.logger.ErrorContext(ctx, "batch failed",
			"records", len(batch.Records),
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}

	h.logger.InfoContext(ctx, "batch filed",
		"records", len(batch.Records),
		"rejected", len(batch.Rejected),
		"groups_formed", res.GroupsFormed,
		"fresh", fresh,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	rejected := batch.Rejected
	if rejected == nil {
		rejected = []*ingest.RowError{}
	}
	writeJSON(w, http.StatusOK, BatchResponse{
		Rows:     len(batch.Records) + len(batch.Rejected),
		Rejected: rejected,
		Result:   res,
	})
}

func boolParam(r *http.Request, name string) (bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s parameter %q", name, v)
	}
	return b, nil
}
