package main

// Exit codes
const (
	ExitSuccess     = 0 // Success (including no-change runs)
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (missing config, missing table)
	ExitDataError   = 3 // Data error (malformed table, API failures)
)
