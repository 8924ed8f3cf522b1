// Package views turns a Dataset and user input into display payloads, one
// handler per navigation key.
package views

import (
	"errors"
	"fmt"

	"github.com/bookstore-insights/backend/internal/dataset"
	"github.com/bookstore-insights/backend/internal/parser"
)

// Key identifies one navigation destination.
type Key string

const (
	Home      Key = "home"
	Dashboard Key = "dashboard"
	Search    Key = "search"
	TopRated  Key = "top-rated"
	Insights  Key = "insights"
	Upload    Key = "upload"
	Feedback  Key = "feedback"
)

// ErrUnknownView is returned by ParseKey for strings outside the seven keys.
var ErrUnknownView = errors.New("unknown view")

// KeyInfo describes a key for navigation menus.
type KeyInfo struct {
	Key         Key    `json:"key" msgpack:"key"`
	Label       string `json:"label" msgpack:"label"`
	UsesDataset bool   `json:"usesDataset" msgpack:"usesDataset"`
}

var keys = []KeyInfo{
	{Home, "🏠 Home", false},
	{Dashboard, "📊 Dashboard", true},
	{Search, "🔍 Search", true},
	{TopRated, "🏆 Top Rated Books", true},
	{Insights, "📈 Insights", true},
	{Upload, "📥 Upload Data", false},
	{Feedback, "💬 Feedback", false},
}

// AllKeys returns the keys in menu order.
func AllKeys() []KeyInfo {
	return append([]KeyInfo(nil), keys...)
}

// ParseKey validates user-supplied text.
func ParseKey(s string) (Key, error) {
	for _, k := range keys {
		if string(k.Key) == s {
			return k.Key, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownView, s)
}

// Label returns the menu label of k, or k itself when unknown.
func (k Key) Label() string {
	for _, info := range keys {
		if info.Key == k {
			return info.Label
		}
	}
	return string(k)
}

// UsesDataset reports whether the handler for k reads Request.Dataset.
func (k Key) UsesDataset() bool {
	for _, info := range keys {
		if info.Key == k {
			return info.UsesDataset
		}
	}
	return false
}

// UploadInput is a user file. Result and Err may be filled in by a caller that
// already parsed Data; otherwise the Upload view parses it.
type UploadInput struct {
	Name   string
	Data   []byte
	Result *parser.Result
	Err    error
}

// FeedbackInput is a submitted feedback form.
type FeedbackInput struct {
	Name string
	Text string
}

// Request carries everything a handler may read. Handlers never modify it.
type Request struct {
	Dataset  *dataset.Dataset
	Query    string
	Upload   *UploadInput
	Feedback *FeedbackInput
}

// HandlerFunc renders one view. Failures are reported inside the payload.
type HandlerFunc func(Request) *Payload

// Router maps each Key to its handler.
type Router struct {
	handlers map[Key]HandlerFunc
}

// NewRouter registers the seven views. home may be nil for the built-in content.
func NewRouter(home *HomeContent) *Router {
	if home == nil {
		home = DefaultHome()
	}
	return &Router{handlers: map[Key]HandlerFunc{
		Home:      homeView(home),
		Dashboard: dashboardView,
		Search:    searchView,
		TopRated:  topRatedView,
		Insights:  insightsView,
		Upload:    uploadView,
		Feedback:  feedbackView,
	}}
}

// Route returns the handler for k. Keys come from ParseKey or the constants
// above, so an unregistered key is a bug and panics.
func (r *Router) Route(k Key) HandlerFunc {
	h, ok := r.handlers[k]
	if !ok {
		panic(fmt.Sprintf("views: no handler registered for %q", k))
	}
	return h
}

// Render is Route(k)(req).
func (r *Router) Render(k Key, req Request) *Payload {
	return r.Route(k)(req)
}
