package views

import (
	"fmt"
	"strings"

	"github.com/bookstore-insights/backend/internal/parser"
)

// ParseUpload applies the same parsing rule as the primary source.
func ParseUpload(name string, data []byte) (*parser.Result, error) {
	return parser.ParseBytes(name, data)
}

// uploadView previews a user file as its own dataset. The primary dataset is
// never involved.
func uploadView(req Request) *Payload {
	p := newPayload(Upload, "📥 Upload a New CSV Dataset")
	in := req.Upload
	if in == nil {
		p.message(LevelInfo, "Choose a CSV file to upload.", "")
		return p
	}

	res, err := in.Result, in.Err
	if res == nil && err == nil {
		res, err = ParseUpload(in.Name, in.Data)
	}
	if err != nil {
		p.message(LevelError, fmt.Sprintf("Could not read %s: %v", in.Name, err), CodeParseError)
		return p
	}

	p.message(LevelSuccess, "✅ File uploaded successfully!", "")
	if n := len(res.Errors); n > 0 {
		p.message(LevelWarning, fmt.Sprintf("Skipped %d malformed row(s); first at line %d: %s",
			n, res.Errors[0].Line, res.Errors[0].Reason), CodeParseError)
	}
	p.table("Preview:", res.Dataset.Preview(previewRows))
	return p
}

// feedbackView validates the form and acknowledges it. Nothing is stored.
func feedbackView(req Request) *Payload {
	p := newPayload(Feedback, "💬 Feedback Form")
	in := req.Feedback
	if in == nil {
		p.message(LevelInfo, "Tell us your name and what you think.", "")
		return p
	}

	var missing []string
	if in.Name == "" {
		missing = append(missing, "name")
	}
	if in.Text == "" {
		missing = append(missing, "feedback")
	}
	if len(missing) > 0 {
		p.message(LevelWarning,
			fmt.Sprintf("Please fill in all fields. Missing: %s", strings.Join(missing, ", ")),
			CodeMissingFields)
		return p
	}

	p.message(LevelSuccess, "Thank you for your feedback! 💚", "")
	return p
}
