package controllers

import (
	"context"
	"net/http"

	"github.com/amitrajput-dev/zelora-backend/api/responses"
	pkgerrors "github.com/amitrajput-dev/zelora-backend/pkg/errors"
	"github.com/amitrajput-dev/zelora-backend/pkg/logger"
)

// Pinger is the reachability probe implemented by downstream clients.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController exposes liveness and readiness probes.
type HealthController struct {
	db    Pinger
	cache Pinger
	log   *logger.Logger
}

func NewHealthController(db, cache Pinger, log *logger.Logger) *HealthController {
	return &HealthController{db: db, cache: cache, log: log}
}

// Live reports process liveness only.
func (c *HealthController) Live(w http.ResponseWriter, r *http.Request) {
	responses.WriteSuccess(w, map[string]string{"status": "ok"})
}

// Ready checks downstream dependencies before declaring the service ready.
func (c *HealthController) Ready(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{}

	if err := c.db.Ping(r.Context()); err != nil {
		responses.WriteError(w, r, c.log, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unreachable"))
		return
	}
	checks["database"] = "ok"

	if c.cache != nil {
		if err := c.cache.Ping(r.Context()); err != nil {
			responses.WriteError(w, r, c.log, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unreachable"))
			return
		}
		checks["redis"] = "ok"
	}

	responses.WriteSuccess(w, checks)
}
