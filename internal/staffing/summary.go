package staffing

import (
	"github.com/ManfreddAbrego/forecast-tool/pkg/contracts/domain"
)

// Summarize aggregates the FTE column of a merged forecast. The peak date is
// the first date with the highest requirement.
func Summarize(merged *domain.MergedForecast) domain.StaffingSummary {
	if merged == nil || merged.Len() == 0 {
		return domain.StaffingSummary{}
	}

	first := merged.Rows[0]
	summary := domain.StaffingSummary{
		Rows:     merged.Len(),
		MaxFTE:   first.FTE,
		MinFTE:   first.FTE,
		PeakDate: first.Date,
	}

	var total float64
	for _, r := range merged.Rows {
		total += r.FTE
		if r.FTE > summary.MaxFTE {
			summary.MaxFTE = r.FTE
			summary.PeakDate = r.Date
		}
		if r.FTE < summary.MinFTE {
			summary.MinFTE = r.FTE
		}
	}
	summary.MeanFTE = total / float64(merged.Len())
	return summary
}
