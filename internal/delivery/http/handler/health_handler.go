package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"care-registry/pkg/response"

	"github.com/sirupsen/logrus"
)

const readinessTimeout = 2 * time.Second

// HealthCheck reports whether one dependency is reachable
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]HealthCheck
	log    *logrus.Logger
}

func NewHealthHandler(checks map[string]HealthCheck, log *logrus.Logger) *HealthHandler {
	return &HealthHandler{
		checks: checks,
		log:    log,
	}
}

// Live always answers 200 while the process serves HTTP
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready runs every dependency check and answers 503 if any of them fails
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	statuses := make(map[string]string, len(names))
	healthy := true
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			h.log.Warnf("Readiness check %s failed: %+v", name, err)
			statuses[name] = "down"
			healthy = false
			continue
		}
		statuses[name] = "up"
	}

	if !healthy {
		response.ServiceUnavailable(w, "Dependencies unavailable", statuses)
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "checks": statuses})
}
