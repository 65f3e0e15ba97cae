package engine

import (
	"time"

	"github.com/pmmstack/pmm-engine/internal/models"
	"github.com/pmmstack/pmm-engine/internal/store"
)

// ComplaintAnalyzer aggregates complaint records into distribution and
// resolution-time statistics.
type ComplaintAnalyzer struct {
	complaints *store.ComplaintStore
	now        func() time.Time
}

// NewComplaintAnalyzer wires the analyzer to its complaint store.
func NewComplaintAnalyzer(complaints *store.ComplaintStore) *ComplaintAnalyzer {
	return &ComplaintAnalyzer{complaints: complaints, now: time.Now}
}

// Analytics aggregates complaints created within the last periodDays.
// Resolution hours are computed only over complaints with a resolution
// timestamp.
func (a *ComplaintAnalyzer) Analytics(periodDays int) models.ComplaintAnalytics {
	if periodDays <= 0 {
		periodDays = 30
	}
	since := a.now().UTC().Add(-time.Duration(periodDays) * 24 * time.Hour)
	complaints := a.complaints.List("", "", since)

	analytics := models.ComplaintAnalytics{
		Total:      len(complaints),
		PeriodDays: periodDays,
		ByStatus:   make(map[string]int),
		ByPriority: make(map[string]int),
		ByCategory: make(map[string]int),
	}

	var resolutionHours []float64
	for _, c := range complaints {
		analytics.ByStatus[string(c.Status)]++
		analytics.ByPriority[string(c.Priority)]++
		analytics.ByCategory[c.Category]++
		if c.IsOpen() {
			analytics.OpenCount++
		}
		if c.ResolvedAt != nil {
			resolutionHours = append(resolutionHours, c.ResolvedAt.Sub(c.CreatedAt).Hours())
		}
	}

	analytics.ResolutionStats = resolutionStats(resolutionHours)
	return analytics
}

func resolutionStats(hours []float64) models.ResolutionStats {
	stats := models.ResolutionStats{ResolvedCount: len(hours)}
	if len(hours) == 0 {
		return stats
	}
	stats.AvgHours = mean(hours)
	stats.MinHours, stats.MaxHours = minMax(hours)
	return stats
}
