package controllers

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Snapshotter writes a full copy of the entity store.
type Snapshotter interface {
	Backup(w io.Writer) error
}

// AdminController serves store maintenance endpoints
type AdminController struct {
	store  Snapshotter
	logger *zap.Logger
}

// NewAdminController creates a new AdminController
func NewAdminController(store Snapshotter, logger *zap.Logger) *AdminController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminController{store: store, logger: logger}
}

// Backup streams a snapshot that `quill serve --restore` can load
func (ac *AdminController) Backup(w http.ResponseWriter, r *http.Request) {
	name := fmt.Sprintf("quill_backup_%d.db", time.Now().Unix())
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if err := ac.store.Backup(w); err != nil {
		// Headers are already sent once the stream starts.
		ac.logger.Error("backup store", zap.Error(err))
	}
}
