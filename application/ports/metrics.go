package ports

import "time"

// LoadMetrics receives measurements from load runs
type LoadMetrics interface {
	BatchWritten(views int, duration time.Duration)
	BatchRetried(pending int)
	PaperSkipped(reason string)
	RunFinished(success bool, papers, views int, factor float64)
}

// QueryMetrics receives measurements from served queries
type QueryMetrics interface {
	QueryServed(queryType string, results int, duration time.Duration, err error)
}

// NopMetrics implements both metrics ports and records nothing
type NopMetrics struct{}

func (NopMetrics) BatchWritten(int, time.Duration)               {}
func (NopMetrics) BatchRetried(int)                              {}
func (NopMetrics) PaperSkipped(string)                           {}
func (NopMetrics) RunFinished(bool, int, int, float64)           {}
func (NopMetrics) QueryServed(string, int, time.Duration, error) {}
