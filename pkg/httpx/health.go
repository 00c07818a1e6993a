package httpx

import (
	"context"
	"net/http"
	"time"
)

// HealthChecker is satisfied by database.Database, cache.RedisClient and
// events.EventBus.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Probe is one named dependency checked by HealthHandler. A nil Checker is
// reported as "disabled" and never degrades the status.
type Probe struct {
	Name    string
	Checker HealthChecker
}

const (
	statusOK          = "ok"
	statusDegraded    = "degraded"
	statusUnreachable = "unreachable"
	statusDisabled    = "disabled"
)

// HealthHandler pings every probe with a shared 2s deadline and responds 503
// when any enabled dependency fails.
func HealthHandler(probes ...Probe) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := map[string]string{"status": statusOK}
		for _, p := range probes {
			switch {
			case p.Checker == nil:
				resp[p.Name] = statusDisabled
			case p.Checker.Ping(ctx) != nil:
				resp[p.Name] = statusUnreachable
				resp["status"] = statusDegraded
			default:
				resp[p.Name] = statusOK
			}
		}

		status := http.StatusOK
		if resp["status"] != statusOK {
			status = http.StatusServiceUnavailable
		}
		JSON(w, status, resp)
	}
}
