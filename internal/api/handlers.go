package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wellsgz/linkcheck/internal/config"
	"github.com/wellsgz/linkcheck/internal/hint"
	"github.com/wellsgz/linkcheck/internal/quality"
	"github.com/wellsgz/linkcheck/internal/runner"
)

// Version is reported by the status endpoint
const Version = "0.1.0"

// Handler holds dependencies for API handlers
type Handler struct {
	ctx       context.Context
	config    *config.Config
	runner    *runner.Runner
	hints     *hint.Feed
	startTime time.Time
}

// NewHandler creates a new Handler. Runs started through it use ctx, not
// the request context, so they survive the request.
func NewHandler(ctx context.Context, cfg *config.Config, r *runner.Runner, hints *hint.Feed) *Handler {
	return &Handler{
		ctx:       ctx,
		config:    cfg,
		runner:    r,
		hints:     hints,
		startTime: time.Now(),
	}
}

// StatusResponse represents the response for the status endpoint
type StatusResponse struct {
	Status     string       `json:"status"`
	Uptime     string       `json:"uptime"`
	UptimeSecs float64      `json:"uptime_secs"`
	Version    string       `json:"version"`
	Run        runner.State `json:"run"`
}

// GetStatus returns the current system status
func (h *Handler) GetStatus(c *gin.Context) {
	uptime := time.Since(h.startTime)

	c.JSON(http.StatusOK, StatusResponse{
		Status:     "ok",
		Uptime:     uptime.Round(time.Second).String(),
		UptimeSecs: uptime.Seconds(),
		Version:    Version,
		Run:        h.runner.State(),
	})
}

// StartRunResponse reports whether a POST /runs started anything
type StartRunResponse struct {
	Started bool         `json:"started"`
	State   runner.State `json:"state"`
}

// StartRun starts a test unless one is already in progress
func (h *Handler) StartRun(c *gin.Context) {
	started := h.runner.Start(h.ctx)

	status := http.StatusOK
	if started {
		status = http.StatusAccepted
	}
	c.JSON(status, StartRunResponse{Started: started, State: h.runner.State()})
}

// GetResult returns the most recent completed run
func (h *Handler) GetResult(c *gin.Context) {
	result, ok := h.runner.LastResult()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not Found",
			"message": "No completed run yet",
		})
		return
	}
	c.JSON(http.StatusOK, result)
}

// QualityResponse is the live quality assessment
type QualityResponse struct {
	Score  int           `json:"score"`
	Label  quality.Label `json:"label"`
	Advice string        `json:"advice"`
	Tier   quality.Tier  `json:"tier"`
	Bars   int           `json:"bars"`
	Hint   hint.Info     `json:"hint"`
}

func (h *Handler) qualityResponse() QualityResponse {
	a := h.runner.Quality()
	resp := QualityResponse{
		Score:  a.Score,
		Label:  a.Label,
		Advice: a.Label.Advice(),
		Tier:   a.Tier(),
		Bars:   a.Bars(),
	}
	if h.hints != nil {
		resp.Hint = h.hints.Current()
	}
	return resp
}

// GetQuality returns the live quality assessment
func (h *Handler) GetQuality(c *gin.Context) {
	c.JSON(http.StatusOK, h.qualityResponse())
}

// SetHint replaces the connection hint; the live quality follows it
func (h *Handler) SetHint(c *gin.Context) {
	if h.hints == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Service Unavailable",
			"message": "Hint feed is not configured",
		})
		return
	}

	var info hint.Info
	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Invalid hint: " + err.Error(),
		})
		return
	}
	if info.Downlink < 0 || info.RTT < 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "downlink and rtt must not be negative",
		})
		return
	}
	if info.EffectiveType == "" && info.RTT > 0 {
		info.EffectiveType = hint.EffectiveType(info.RTT)
	}

	h.hints.Set(info)
	c.JSON(http.StatusOK, h.qualityResponse())
}

// GetConfig returns the current configuration (read-only)
func (h *Handler) GetConfig(c *gin.Context) {
	response := gin.H{
		"server": gin.H{
			"address":    h.config.Server.Address,
			"enable_tui": h.config.Server.EnableTUI,
		},
		"test": gin.H{
			"download_url":     h.config.Test.DownloadURL,
			"upload_url":       h.config.Test.UploadURL,
			"duration":         h.config.Test.Duration.String(),
			"parallel_streams": h.config.Test.ParallelStreams,
			"passes":           h.config.Test.Passes,
			"warmup":           h.config.Test.Warmup.String(),
			"bucket_width":     h.config.Test.BucketWidth.String(),
			"percentile":       h.config.Test.Percentile,
		},
		"latency": gin.H{
			"url":     h.config.LatencyTarget(),
			"count":   h.config.Latency.Count,
			"timeout": h.config.Latency.Timeout.String(),
		},
		"provider": gin.H{
			"enabled": h.config.Provider.Enabled,
		},
	}

	c.JSON(http.StatusOK, response)
}
