package metrics

import "time"

// RunConfig identifies one sampling run of the acceptance study.
type RunConfig struct {
	ID     int
	Rule   string
	Chains int
	Sweeps int
	Steps  int
}

// RunRecord is the outcome of one sampling run.
type RunRecord struct {
	RunConfig
	Attempted      int
	Accepted       int
	AcceptanceRate float64
	Duration       time.Duration
}
