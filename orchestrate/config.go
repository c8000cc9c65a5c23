package orchestrate

// DispatchConfig controls worker pool sizing and observability for the
// parallel primitives.
//
// Worker pool sizing:
//   - MaxWorkers > 0: use exact count
//   - MaxWorkers = 0: one worker per unit, capped at WorkerCap
//
// Example JSON:
//
//	{
//	  "max_workers": 4,
//	  "worker_cap": 16,
//	  "observer": "slog"
//	}
type DispatchConfig struct {
	// MaxWorkers specifies exact worker pool size (0 = one per unit).
	MaxWorkers int `json:"max_workers" yaml:"max_workers"`

	// WorkerCap limits the pool when MaxWorkers is 0 (default: 16).
	WorkerCap int `json:"worker_cap" yaml:"worker_cap"`

	// Observer names the observability sink ("noop", "slog", ...).
	Observer string `json:"observer" yaml:"observer"`
}

// DefaultDispatchConfig returns sensible defaults: a worker per unit capped
// at 16, events to the slog observer.
func DefaultDispatchConfig() DispatchConfig {
	return DispatchConfig{
		MaxWorkers: 0,
		WorkerCap:  16,
		Observer:   "slog",
	}
}

// Merge applies non-zero values from source into c.
func (c *DispatchConfig) Merge(source *DispatchConfig) {
	if source.MaxWorkers > 0 {
		c.MaxWorkers = source.MaxWorkers
	}
	if source.WorkerCap > 0 {
		c.WorkerCap = source.WorkerCap
	}
	if source.Observer != "" {
		c.Observer = source.Observer
	}
}

// workerCount sizes the pool: one worker per unit, capped by configuration.
func workerCount(cfg DispatchConfig, units int) int {
	if cfg.MaxWorkers > 0 {
		return min(cfg.MaxWorkers, units)
	}
	cap := cfg.WorkerCap
	if cap <= 0 {
		cap = DefaultDispatchConfig().WorkerCap
	}
	n := min(units, cap)
	if n < 1 {
		n = 1
	}
	return n
}
