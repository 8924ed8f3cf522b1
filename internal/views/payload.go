package views

import (
	"errors"

	"github.com/bookstore-insights/backend/internal/dataset"
)

// SectionKind tags the variant carried by a Section.
type SectionKind string

const (
	KindMarkdown  SectionKind = "markdown"
	KindTable     SectionKind = "table"
	KindMetrics   SectionKind = "metrics"
	KindBarChart  SectionKind = "bar_chart"
	KindHistogram SectionKind = "histogram"
	KindMessage   SectionKind = "message"
)

// Level is the severity of a message section.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Message codes attached to warning and error sections.
const (
	CodeColumnNotFound = "COLUMN_NOT_FOUND"
	CodeColumnType     = "COLUMN_TYPE"
	CodeNoValues       = "NO_VALUES"
	CodeParseError     = "PARSE_ERROR"
	CodeMissingFields  = "MISSING_FIELDS"
	CodeViewError      = "VIEW_ERROR"
)

// Payload is what a view hands to the renderer: a title and ordered sections.
type Payload struct {
	View     Key       `json:"view" msgpack:"view"`
	Title    string    `json:"title" msgpack:"title"`
	Sections []Section `json:"sections" msgpack:"sections"`
}

// Section is one block of a payload. Exactly one of the pointer fields (or
// Metrics) is set, matching Kind.
type Section struct {
	Kind      SectionKind     `json:"kind" msgpack:"kind"`
	Heading   string          `json:"heading,omitempty" msgpack:"heading,omitempty"`
	Markdown  string          `json:"markdown,omitempty" msgpack:"markdown,omitempty"`
	Table     *Table          `json:"table,omitempty" msgpack:"table,omitempty"`
	Metrics   []Metric        `json:"metrics,omitempty" msgpack:"metrics,omitempty"`
	BarChart  *BarChart       `json:"barChart,omitempty" msgpack:"barChart,omitempty"`
	Histogram *HistogramChart `json:"histogram,omitempty" msgpack:"histogram,omitempty"`
	Message   *Message        `json:"message,omitempty" msgpack:"message,omitempty"`
}

// Table is a dataset rendered as column headers plus rows of nil/float64/string.
type Table struct {
	Columns  []dataset.Column `json:"columns" msgpack:"columns"`
	Rows     [][]any          `json:"rows" msgpack:"rows"`
	RowCount int              `json:"rowCount" msgpack:"rowCount"`
}

// Metric is a labelled scalar. A metric that could not be computed has an empty
// Value and carries the failure in Error.
type Metric struct {
	Label string `json:"label" msgpack:"label"`
	Value string `json:"value" msgpack:"value"`
	Error string `json:"error,omitempty" msgpack:"error,omitempty"`
	Code  string `json:"code,omitempty" msgpack:"code,omitempty"`
}

// BarChart pairs category labels with values. Order describes how the bars are
// stacked from the first axis position: "descending" puts Labels[0] on top.
type BarChart struct {
	Labels      []string  `json:"labels" msgpack:"labels"`
	Values      []float64 `json:"values" msgpack:"values"`
	Orientation string    `json:"orientation" msgpack:"orientation"`
	Order       string    `json:"order" msgpack:"order"`
	XLabel      string    `json:"xLabel" msgpack:"xLabel"`
	YLabel      string    `json:"yLabel" msgpack:"yLabel"`
}

// HistogramChart is a binned numeric column plus the raw values it was built from.
type HistogramChart struct {
	*dataset.Histogram
	Values []float64 `json:"values" msgpack:"values"`
	XLabel string    `json:"xLabel" msgpack:"xLabel"`
	YLabel string    `json:"yLabel" msgpack:"yLabel"`
}

// Message is a user-visible notice.
type Message struct {
	Level Level  `json:"level" msgpack:"level"`
	Text  string `json:"text" msgpack:"text"`
	Code  string `json:"code,omitempty" msgpack:"code,omitempty"`
}

func newPayload(k Key, title string) *Payload {
	return &Payload{View: k, Title: title, Sections: []Section{}}
}

func (p *Payload) add(s Section) {
	p.Sections = append(p.Sections, s)
}

func (p *Payload) markdown(text string) {
	p.add(Section{Kind: KindMarkdown, Markdown: text})
}

func (p *Payload) table(heading string, d *dataset.Dataset) {
	p.add(Section{Kind: KindTable, Heading: heading, Table: NewTable(d)})
}

func (p *Payload) message(level Level, text, code string) {
	p.add(Section{Kind: KindMessage, Message: &Message{Level: level, Text: text, Code: code}})
}

func (p *Payload) fail(err error) {
	p.message(LevelError, err.Error(), ErrorCode(err))
}

// NewTable renders every row of d.
func NewTable(d *dataset.Dataset) *Table {
	return &Table{Columns: d.Schema().Columns(), Rows: d.Records(), RowCount: d.Count()}
}

// ErrorCode classifies a dataset error for message sections and metrics.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, dataset.ErrColumnNotFound):
		return CodeColumnNotFound
	case errors.Is(err, dataset.ErrColumnType):
		return CodeColumnType
	case errors.Is(err, dataset.ErrNoValues):
		return CodeNoValues
	default:
		return CodeViewError
	}
}

// Messages returns the message sections of p, optionally filtered by level.
func (p *Payload) Messages(levels ...Level) []Message {
	var out []Message
	for _, s := range p.Sections {
		if s.Kind != KindMessage || s.Message == nil {
			continue
		}
		if len(levels) == 0 {
			out = append(out, *s.Message)
			continue
		}
		for _, l := range levels {
			if s.Message.Level == l {
				out = append(out, *s.Message)
				break
			}
		}
	}
	return out
}

// Find returns the first section of the given kind.
func (p *Payload) Find(kind SectionKind) (Section, bool) {
	for _, s := range p.Sections {
		if s.Kind == kind {
			return s, true
		}
	}
	return Section{}, false
}
