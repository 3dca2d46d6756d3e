package tui

// RowStartedMsg marks a row as being checked and starts its clock.
type RowStartedMsg struct {
	Key string
}

// RowFinishedMsg records a row's final status. Detail is shown in the FIX
// column.
type RowFinishedMsg struct {
	Key    string
	Status string
	Detail string
}

// WorkDoneMsg ends the program after the last row finished.
type WorkDoneMsg struct{}

// ErrorMsg aborts the table; only the error is rendered afterwards.
type ErrorMsg struct {
	Err error
}
