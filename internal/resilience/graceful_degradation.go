package resilience

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/ZanzyTHEbar/speak-o-meter/internal/errors"
)

// DegradationLevel represents the current degradation state of a provider
type DegradationLevel int

const (
	LevelNormal DegradationLevel = iota
	LevelDegraded
	LevelCritical
	LevelUnavailable
)

func (l DegradationLevel) String() string {
	switch l {
	case LevelNormal:
		return "normal"
	case LevelDegraded:
		return "degraded"
	case LevelCritical:
		return "critical"
	case LevelUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// MarshalText renders the level by name in JSON
func (l DegradationLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// DegradationConfig holds configuration for provider health tracking
type DegradationConfig struct {
	HealthCheckInterval time.Duration `json:"health_check_interval"`
	HealthCheckTimeout  time.Duration `json:"health_check_timeout"`
	DegradedThreshold   float64       `json:"degraded_threshold"`   // error rate in [0,1]
	CriticalThreshold   float64       `json:"critical_threshold"`   // error rate in [0,1]
	UnavailableAfter    int           `json:"unavailable_after"`    // consecutive failed probes
	RecoveryTimeWindow  time.Duration `json:"recovery_time_window"` // counters reset after this much quiet
}

// DefaultDegradationConfig returns sensible defaults
func DefaultDegradationConfig() DegradationConfig {
	return DegradationConfig{
		HealthCheckInterval: 30 * time.Second,
		HealthCheckTimeout:  5 * time.Second,
		DegradedThreshold:   0.1,
		CriticalThreshold:   0.5,
		UnavailableAfter:    3,
		RecoveryTimeWindow:  5 * time.Minute,
	}
}

// ProviderHealth is the health status of one external provider
type ProviderHealth struct {
	Service          string           `json:"service"`
	Optional         bool             `json:"optional"`
	Level            DegradationLevel `json:"level"`
	ErrorRate        float64          `json:"error_rate"`
	TotalRequests    int64            `json:"total_requests"`
	ErrorCount       int64            `json:"error_count"`
	ConsecutiveFails int              `json:"consecutive_failures"`
	LastError        string           `json:"last_error,omitempty"`
	LastErrorTime    *time.Time       `json:"last_error_time,omitempty"`
	StatusMessage    string           `json:"status_message"`

	windowStart time.Time
}

// HealthCheckFunc probes a provider
type HealthCheckFunc func(ctx context.Context) error

// DegradationManager tracks provider error rates and runs periodic probes.
// It only reports; the scorer's fallbacks do the degrading.
type DegradationManager struct {
	config       DegradationConfig
	logger       *zap.Logger
	services     map[string]*ProviderHealth
	healthChecks map[string]HealthCheckFunc
	mutex        sync.RWMutex
}

// NewDegradationManager creates a new degradation manager
func NewDegradationManager(config DegradationConfig, logger *zap.Logger) *DegradationManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DegradationManager{
		config:       config,
		logger:       logger,
		services:     make(map[string]*ProviderHealth),
		healthChecks: make(map[string]HealthCheckFunc),
	}
}

// RegisterService registers a provider and its optional health probe
func (dm *DegradationManager) RegisterService(name string, optional bool, healthCheck HealthCheckFunc) {
	dm.mutex.Lock()
	defer dm.mutex.Unlock()

	dm.services[name] = &ProviderHealth{
		Service:       name,
		Optional:      optional,
		Level:         LevelNormal,
		StatusMessage: "Provider is healthy",
		windowStart:   time.Now(),
	}
	if healthCheck != nil {
		dm.healthChecks[name] = healthCheck
	}

	dm.logger.Info("Registered provider for health tracking",
		zap.String("service", name),
		zap.Bool("optional", optional),
		zap.Bool("probe", healthCheck != nil),
	)
}

// RecordOutcome records one call to a provider
func (dm *DegradationManager) RecordOutcome(name string, err error) {
	dm.mutex.Lock()
	defer dm.mutex.Unlock()

	service, exists := dm.services[name]
	if !exists {
		return
	}

	now := time.Now()
	if dm.config.RecoveryTimeWindow > 0 && now.Sub(service.windowStart) > dm.config.RecoveryTimeWindow {
		service.TotalRequests = 0
		service.ErrorCount = 0
		service.windowStart = now
	}

	service.TotalRequests++
	if err != nil {
		service.ErrorCount++
		service.ConsecutiveFails++
		service.LastError = err.Error()
		service.LastErrorTime = &now
	} else {
		service.ConsecutiveFails = 0
	}
	service.ErrorRate = float64(service.ErrorCount) / float64(service.TotalRequests)

	dm.updateDegradationLevel(service)
}

// updateDegradationLevel updates the degradation level based on current metrics
func (dm *DegradationManager) updateDegradationLevel(service *ProviderHealth) {
	oldLevel := service.Level

	switch {
	case dm.config.UnavailableAfter > 0 && service.ConsecutiveFails >= dm.config.UnavailableAfter:
		service.Level = LevelUnavailable
		service.StatusMessage = "Provider is not responding"
	case service.ErrorRate >= dm.config.CriticalThreshold:
		service.Level = LevelCritical
		service.StatusMessage = "Provider is failing often"
	case service.ErrorRate >= dm.config.DegradedThreshold:
		service.Level = LevelDegraded
		service.StatusMessage = "Provider is degraded"
	default:
		service.Level = LevelNormal
		service.StatusMessage = "Provider is healthy"
	}

	if oldLevel != service.Level {
		dm.logger.Warn("Provider degradation level changed",
			zap.String("service", service.Service),
			zap.Stringer("old_level", oldLevel),
			zap.Stringer("new_level", service.Level),
			zap.Float64("error_rate", service.ErrorRate),
			zap.Int64("total_requests", service.TotalRequests),
		)
	}
}

// GetServiceHealth returns a copy of the provider's health status
func (dm *DegradationManager) GetServiceHealth(name string) (ProviderHealth, bool) {
	dm.mutex.RLock()
	defer dm.mutex.RUnlock()

	service, exists := dm.services[name]
	if !exists {
		return ProviderHealth{}, false
	}
	return *service, true
}

// GetAllServiceHealth returns every provider's health, sorted by name
func (dm *DegradationManager) GetAllServiceHealth() []ProviderHealth {
	dm.mutex.RLock()
	defer dm.mutex.RUnlock()

	out := make([]ProviderHealth, 0, len(dm.services))
	for _, service := range dm.services {
		out = append(out, *service)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Service < out[j].Service })
	return out
}

// Healthy reports whether every required provider is usable. Optional
// providers never make the service unhealthy.
func (dm *DegradationManager) Healthy() bool {
	dm.mutex.RLock()
	defer dm.mutex.RUnlock()

	for _, service := range dm.services {
		if !service.Optional && service.Level == LevelUnavailable {
			return false
		}
	}
	return true
}

// StartHealthChecks probes every registered provider until ctx is done
func (dm *DegradationManager) StartHealthChecks(ctx context.Context) {
	ticker := time.NewTicker(dm.config.HealthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			dm.RunHealthChecks(ctx)
		}
	}
}

// RunHealthChecks probes every registered provider once, concurrently
func (dm *DegradationManager) RunHealthChecks(ctx context.Context) {
	dm.mutex.RLock()
	checks := make(map[string]HealthCheckFunc, len(dm.healthChecks))
	for name, check := range dm.healthChecks {
		checks[name] = check
	}
	dm.mutex.RUnlock()

	var wg sync.WaitGroup
	for name, check := range checks {
		wg.Add(1)
		go func(name string, check HealthCheckFunc) {
			defer wg.Done()

			checkCtx, cancel := context.WithTimeout(ctx, dm.config.HealthCheckTimeout)
			defer cancel()

			if err := check(checkCtx); err != nil {
				dm.RecordOutcome(name, apperrors.WrapError(err, "health check failed for %s", name))
				return
			}
			dm.RecordOutcome(name, nil)
		}(name, check)
	}
	wg.Wait()
}

// ResetService clears a provider's counters
func (dm *DegradationManager) ResetService(name string) {
	dm.mutex.Lock()
	defer dm.mutex.Unlock()

	if service, exists := dm.services[name]; exists {
		*service = ProviderHealth{
			Service:       service.Service,
			Optional:      service.Optional,
			Level:         LevelNormal,
			StatusMessage: "Provider is healthy",
			windowStart:   time.Now(),
		}
		dm.logger.Info("Provider health reset", zap.String("service", name))
	}
}

// GracefulShutdown logs the final status of every provider
func (dm *DegradationManager) GracefulShutdown() {
	for _, service := range dm.GetAllServiceHealth() {
		dm.logger.Info("Final provider status",
			zap.String("service", service.Service),
			zap.Stringer("level", service.Level),
			zap.Float64("error_rate", service.ErrorRate),
			zap.Int64("total_requests", service.TotalRequests),
			zap.Int64("error_count", service.ErrorCount),
		)
	}
}
