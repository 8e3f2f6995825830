package deps

import (
	"time"

	"github.com/MrSnakeDoc/subguard/internal/detect"
	"github.com/MrSnakeDoc/subguard/internal/logger"
	"github.com/MrSnakeDoc/subguard/internal/metrics"
	"github.com/MrSnakeDoc/subguard/internal/store"
	"github.com/MrSnakeDoc/subguard/internal/tracker"
)

type Deps struct {
	Logger        logger.Logger
	StartTime     time.Time
	Version       string
	Commit        string
	BuildDate     string
	GoVersion     string
	TimeNow       func() time.Time // for testing, defaults to time.Now
	AllowedCIDRS  []string         // IPs allowed to access ops endpoints
	TrustProxy    bool             // true if running behind a trusted reverse proxy
	RateBurst     int              // per-IP burst on /api
	RatePerMin    int              // per-IP refill on /api
	Engine        *detect.Engine   // detection engine (rules already compiled)
	Tracker       *tracker.Service // commitment lifecycle
	Store         store.Store      // used directly for health checks
	StoreBackend  string           // "redis" | "memory"
	TimersBackend string           // "redis" | "memory"
	ReminderLead  time.Duration    // reported by /infra
	Metrics       metrics.Provider
	SweepTrigger  chan struct{} // Channel to trigger a manual reminder sweep
}
