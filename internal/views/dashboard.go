package views

import (
	"fmt"
	"strconv"

	"github.com/bookstore-insights/backend/internal/dataset"
)

// Column names the dataset views depend on.
const (
	ColTitle         = "title"
	ColAuthors       = "authors"
	ColAverageRating = "average_rating"
	ColRatingsCount  = "ratings_count"
)

const (
	previewRows  = 10
	searchLimit  = 20
	topLimit     = 20
	chartLimit   = 10
	authorsLimit = 10
	ratingBins   = 20
)

// NotAvailable is shown for a metric whose optional column is absent.
const NotAvailable = "N/A"

func datasetOf(req Request) *dataset.Dataset {
	if req.Dataset == nil {
		return dataset.Empty()
	}
	return req.Dataset
}

// dashboardView shows a preview and summary metrics. Each metric is computed on
// its own so one missing column does not hide the others.
func dashboardView(req Request) *Payload {
	d := datasetOf(req)
	p := newPayload(Dashboard, "📊 Book Ratings Dashboard")
	p.table("Dataset Preview", d.Preview(previewRows))

	metrics := []Metric{
		averageRatingMetric(d),
		{Label: "📚 Total Books", Value: strconv.Itoa(d.Count())},
		totalAuthorsMetric(d),
		bestsellersMetric(d),
	}
	p.add(Section{Kind: KindMetrics, Heading: "📈 Summary Statistics", Metrics: metrics})

	for _, m := range metrics {
		if m.Error != "" {
			p.message(LevelError, fmt.Sprintf("%s: %s", m.Label, m.Error), m.Code)
		}
	}
	return p
}

func failedMetric(label string, err error) Metric {
	return Metric{Label: label, Error: err.Error(), Code: ErrorCode(err)}
}

func averageRatingMetric(d *dataset.Dataset) Metric {
	const label = "⭐ Average Rating"
	avg, err := d.Average(ColAverageRating)
	if err != nil {
		return failedMetric(label, err)
	}
	return Metric{Label: label, Value: fmt.Sprintf("%.2f", avg)}
}

func totalAuthorsMetric(d *dataset.Dataset) Metric {
	const label = "✍️ Total Authors"
	n, err := d.DistinctCount(ColAuthors)
	if err != nil {
		return failedMetric(label, err)
	}
	return Metric{Label: label, Value: strconv.Itoa(n)}
}

func bestsellersMetric(d *dataset.Dataset) Metric {
	const label = "🏆 Bestsellers"
	if !d.Schema().Has(ColRatingsCount) {
		return Metric{Label: label, Value: NotAvailable}
	}
	n, err := d.CountNonNull(ColRatingsCount)
	if err != nil {
		return failedMetric(label, err)
	}
	return Metric{Label: label, Value: strconv.Itoa(n)}
}
