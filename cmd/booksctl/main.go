// Package main is the entry point for booksctl, the terminal client of the
// Bookstore Insights dashboard.
package main

import (
	"github.com/bookstore-insights/backend/internal/cli"
)

func main() {
	cli.Execute()
}
