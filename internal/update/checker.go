// Package update polls the release endpoint and announces newer versions.
// It shares the shell's toast queue for the user-facing notice; everything
// else rides the event bus.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/events"
)

// DefaultInterval is the documented default poll cadence.
const DefaultInterval = 30 * time.Minute

// Release is the payload the release endpoint serves.
type Release struct {
	Version string `json:"version"`
	Notes   string `json:"notes,omitempty"`
	URL     string `json:"url,omitempty"`
}

// Config drives the checker.
type Config struct {
	Endpoint       string
	Interval       time.Duration
	CurrentVersion string
}

// Toaster is the slice of the shell the checker needs.
type Toaster interface {
	ShowToast(message, severity string)
}

// Status is the queryable checker state.
type Status struct {
	CurrentVersion  string     `json:"current_version"`
	LatestVersion   string     `json:"latest_version,omitempty"`
	UpdateAvailable bool       `json:"update_available"`
	CheckedAt       *time.Time `json:"checked_at,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	URL             string     `json:"url,omitempty"`
}

// Checker polls the release endpoint. A version is announced (event plus
// toast) once; later polls seeing the same release stay quiet.
type Checker struct {
	cfg    Config
	client *http.Client
	bus    *events.Bus
	toasts Toaster
	logger *zap.SugaredLogger

	mu        sync.Mutex
	latest    *Release
	available bool
	checkedAt time.Time
	announced string
}

func NewChecker(cfg Config, bus *events.Bus, toasts Toaster, logger *zap.SugaredLogger) *Checker {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	return &Checker{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		bus:    bus,
		toasts: toasts,
		logger: logger,
	}
}

// Run polls until ctx is canceled, starting with an immediate check.
// Failed checks are logged and skipped; the loop never stops on error.
func (c *Checker) Run(ctx context.Context) {
	if _, err := c.CheckOnce(ctx); err != nil {
		c.logger.Warnw("version check failed", "err", err)
	}
	ticker := time.NewTicker(c.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := c.CheckOnce(ctx); err != nil {
				c.logger.Warnw("version check failed", "err", err)
			}
		}
	}
}

// CheckOnce fetches the release endpoint and records the result. The
// returned bool reports whether a newer release is available.
func (c *Checker) CheckOnce(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Endpoint, nil)
	if err != nil {
		return false, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("release endpoint answered %d", resp.StatusCode)
	}

	var release Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return false, fmt.Errorf("release payload: %w", err)
	}
	if release.Version == "" {
		return false, fmt.Errorf("release payload carries no version")
	}

	newer := CompareVersions(release.Version, c.cfg.CurrentVersion) > 0

	c.mu.Lock()
	c.latest = &release
	c.available = newer
	c.checkedAt = time.Now()
	announce := newer && c.announced != release.Version
	if announce {
		c.announced = release.Version
	}
	c.mu.Unlock()

	if announce {
		c.logger.Infow("update available", "current", c.cfg.CurrentVersion, "latest", release.Version)
		if c.bus != nil {
			c.bus.Publish(events.TopicUpdateAvailable, release)
		}
		if c.toasts != nil {
			c.toasts.ShowToast("A new version is available: "+release.Version, "info")
		}
	}
	return newer, nil
}

// Status reports the checker state for the HTTP surface.
func (c *Checker) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := Status{
		CurrentVersion:  c.cfg.CurrentVersion,
		UpdateAvailable: c.available,
	}
	if c.latest != nil {
		st.LatestVersion = c.latest.Version
		st.Notes = c.latest.Notes
		st.URL = c.latest.URL
	}
	if !c.checkedAt.IsZero() {
		t := c.checkedAt
		st.CheckedAt = &t
	}
	return st
}

// CompareVersions orders two dotted numeric versions: -1, 0, or 1 as a is
// older than, equal to, or newer than b. A leading "v" is ignored; missing
// segments count as zero; non-numeric segments count as zero.
func CompareVersions(a, b string) int {
	as := strings.Split(strings.TrimPrefix(strings.TrimSpace(a), "v"), ".")
	bs := strings.Split(strings.TrimPrefix(strings.TrimSpace(b), "v"), ".")
	n := len(as)
	if len(bs) > n {
		n = len(bs)
	}
	for i := 0; i < n; i++ {
		av, bv := 0, 0
		if i < len(as) {
			av, _ = strconv.Atoi(as[i])
		}
		if i < len(bs) {
			bv, _ = strconv.Atoi(bs[i])
		}
		if av != bv {
			if av > bv {
				return 1
			}
			return -1
		}
	}
	return 0
}
