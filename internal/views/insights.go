package views

import (
	"github.com/bookstore-insights/backend/internal/dataset"
)

func topRatedView(req Request) *Payload {
	p := newPayload(TopRated, "🏆 Top Rated Books")

	top, err := datasetOf(req).OrderByDescending(ColAverageRating, topLimit)
	if err != nil {
		p.fail(err)
		return p
	}
	p.table("", top)

	chart, err := ratingChart(top.Preview(chartLimit))
	if err != nil {
		p.fail(err)
		return p
	}
	p.add(Section{Kind: KindBarChart, Heading: "Top 10 Books by Rating", BarChart: chart})
	return p
}

// ratingChart plots title against average_rating, skipping unrated rows.
func ratingChart(d *dataset.Dataset) (*BarChart, error) {
	titles, err := d.Values(ColTitle)
	if err != nil {
		return nil, err
	}
	ratings, err := d.Values(ColAverageRating)
	if err != nil {
		return nil, err
	}

	chart := &BarChart{
		Labels:      make([]string, 0, len(titles)),
		Values:      make([]float64, 0, len(titles)),
		Orientation: "horizontal",
		Order:       "descending",
		XLabel:      "Average Rating",
		YLabel:      "Book Title",
	}
	for i := range titles {
		r, ok := ratings[i].Float()
		if !ok {
			continue
		}
		chart.Labels = append(chart.Labels, titles[i].Text())
		chart.Values = append(chart.Values, r)
	}
	return chart, nil
}

// insightsView lists the most prolific authors and the rating distribution.
// The two parts fail independently.
func insightsView(req Request) *Payload {
	d := datasetOf(req)
	p := newPayload(Insights, "📈 Analytical Insights")

	if groups, err := d.GroupCountTop(ColAuthors, authorsLimit); err != nil {
		p.fail(err)
	} else {
		p.add(Section{Kind: KindTable, Heading: "👩‍💻 Top Authors by Number of Books", Table: authorsTable(groups)})
		p.add(Section{Kind: KindBarChart, BarChart: authorsChart(groups)})
	}

	hist, err := d.Histogram(ColAverageRating, ratingBins)
	if err != nil {
		p.fail(err)
		return p
	}
	values, _ := d.NumericValues(ColAverageRating)
	p.add(Section{Kind: KindHistogram, Heading: "⭐ Rating Distribution", Histogram: &HistogramChart{
		Histogram: hist,
		Values:    values,
		XLabel:    "Average Rating",
		YLabel:    "Frequency",
	}})
	return p
}

func authorsTable(groups []dataset.GroupCount) *Table {
	rows := make([][]any, len(groups))
	for i, g := range groups {
		rows[i] = []any{g.Value.Interface(), float64(g.Count)}
	}
	return &Table{
		Columns: []dataset.Column{
			{Name: ColAuthors, Type: dataset.TypeString},
			{Name: "book_count", Type: dataset.TypeNumber},
		},
		Rows:     rows,
		RowCount: len(rows),
	}
}

func authorsChart(groups []dataset.GroupCount) *BarChart {
	chart := &BarChart{
		Labels:      make([]string, len(groups)),
		Values:      make([]float64, len(groups)),
		Orientation: "horizontal",
		Order:       "descending",
		XLabel:      "Number of Books",
		YLabel:      "Authors",
	}
	for i, g := range groups {
		chart.Labels[i] = g.Label
		chart.Values[i] = float64(g.Count)
	}
	return chart
}
