package main

import (
	"fmt"
	"os"

	"github.com/nicomarr/pubsync/internal/openalex"
)

// outputInfo writes an informational line to stdout unless --quiet is set.
func outputInfo(format string, args ...interface{}) {
	if quiet {
		return
	}
	fmt.Printf(format+"\n", args...)
}

// outputWarn writes a warning line to stderr. Warnings are not silenced by
// --quiet.
func outputWarn(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
}

// exitWithError writes an error to stderr and exits with the given code.
func exitWithError(code int, format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(code)
}

// reportFailedCalls prints one warning per failed identifier and returns
// how many there were.
func reportFailedCalls(failed []openalex.FailedCall) int {
	for _, f := range failed {
		if f.StatusCode != 0 {
			outputWarn("%s: HTTP %d, %s", f.UID, f.StatusCode, f.Reason)
			continue
		}
		outputWarn("%s: %s", f.UID, f.Reason)
	}
	return len(failed)
}

// reportExtractionErrors prints one warning per work that failed to flatten
// into a table record.
func reportExtractionErrors(errs []error) int {
	for _, err := range errs {
		outputWarn("skipping work: %v", err)
	}
	return len(errs)
}
