package tui

import "github.com/moneysplit/moneysplit/internal/compare"

// Message types for the Bubble Tea update cycle

// CompareCompleteMsg signals a comparison has finished
type CompareCompleteMsg struct {
	Result *compare.Result
	Err    error
}

// ErrorMsg displays an error to the user
type ErrorMsg struct {
	Err error
}
