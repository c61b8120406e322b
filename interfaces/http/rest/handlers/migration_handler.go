package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"blogstore/infrastructure/migration"
	"blogstore/pkg/common"
	pkgerrors "blogstore/pkg/errors"
)

// MigrationHandler exposes the schema migration admin surface. Unlike
// the public API, migration failures are reported with their raw error
// detail; the audience is an operator, not an end user.
type MigrationHandler struct {
	runner *migration.Runner
	logger *zap.Logger
}

// NewMigrationHandler creates a new migration handler
func NewMigrationHandler(runner *migration.Runner, logger *zap.Logger) *MigrationHandler {
	return &MigrationHandler{
		runner: runner,
		logger: logger,
	}
}

// ListMigrations handles GET /migrations
func (h *MigrationHandler) ListMigrations(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.runner.Status(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, statuses)
}

// RunMigrations handles POST /migrations/run. Applying an already
// up-to-date list is a no-op, so the endpoint is safe to call repeatedly.
func (h *MigrationHandler) RunMigrations(w http.ResponseWriter, r *http.Request) {
	if err := h.runner.ApplyPending(r.Context()); err != nil {
		h.respondError(w, err)
		return
	}

	statuses, err := h.runner.Status(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, statuses)
}

func (h *MigrationHandler) respondError(w http.ResponseWriter, err error) {
	h.logger.Error("Migration admin request failed", zap.Error(err))

	code := "MIGRATION_ERROR"
	if appErr := pkgerrors.GetAppError(err); appErr != nil && appErr.Code != "" {
		code = appErr.Code
	}
	common.RespondError(w, http.StatusInternalServerError, code, err.Error())
}
