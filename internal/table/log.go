package table

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// UpdateLog is the small JSON record the publications page reads to show
// when the table was last modified. It is rewritten, not appended.
type UpdateLog struct {
	LastModified  string `json:"last_modified"`
	StatusMessage string `json:"status_message,omitempty"`
}

// LogDateLayout is the last_modified date format.
const LogDateLayout = "2006-01-02"

// WriteLog updates the log file's last_modified date and optional status
// message. A missing or corrupt log file is replaced with a freshly
// constructed one rather than failing the operation.
func WriteLog(path string, lastModified time.Time, message string) error {
	log := UpdateLog{}

	data, err := os.ReadFile(path)
	if err == nil {
		// Corrupt contents fall through to a fresh log
		_ = json.Unmarshal(data, &log)
	}

	log.LastModified = lastModified.Format(LogDateLayout)
	if message != "" {
		log.StatusMessage = message
	}

	out, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("encoding log: %w", err)
	}

	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("writing log: %w", err)
	}

	return nil
}

// ReadLog reads the update log. Callers should treat a missing file as an
// empty log.
func ReadLog(path string) (UpdateLog, error) {
	var log UpdateLog

	data, err := os.ReadFile(path)
	if err != nil {
		return log, fmt.Errorf("reading log: %w", err)
	}

	if err := json.Unmarshal(data, &log); err != nil {
		return log, fmt.Errorf("parsing log: %w", err)
	}

	return log, nil
}

// ReadIDList reads a newline-delimited identifier list, skipping blank
// lines. Leading and trailing whitespace is trimmed per line.
func ReadIDList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading identifier list: %w", err)
	}

	var ids []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ids = append(ids, line)
	}

	return ids, nil
}

// AppendIDList appends identifiers to a newline-delimited list file,
// creating it if absent.
func AppendIDList(path string, ids []string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening identifier list: %w", err)
	}
	defer f.Close()

	for _, id := range ids {
		if _, err := fmt.Fprintln(f, id); err != nil {
			return fmt.Errorf("appending identifier: %w", err)
		}
	}

	return nil
}
