package git

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// HistoryEntry describes one commit in the log.
type HistoryEntry struct {
	Hash      string    `json:"hash"`
	ShortHash string    `json:"shortHash"`
	Message   string    `json:"message"`
	Author    string    `json:"author"`
	Email     string    `json:"email"`
	Date      time.Time `json:"date"`
}

// Field and record separators for parsing git log output. Unit separator and
// record separator control characters cannot appear in commit metadata.
const (
	logFieldSep  = "\x1f"
	logRecordSep = "\x1e"
	logFormat    = "%H" + logFieldSep + "%h" + logFieldSep + "%an" + logFieldSep + "%ae" + logFieldSep + "%aI" + logFieldSep + "%s" + logRecordSep
)

// Log returns up to limit commits from HEAD, newest first.
func (c *Client) Log(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	out, err := c.run(ctx, "log", "-n", strconv.Itoa(limit), "--pretty=format:"+logFormat)
	if err != nil {
		return nil, &GitError{Op: "log", Err: err}
	}

	var entries []HistoryEntry
	for _, record := range strings.Split(out, logRecordSep) {
		record = strings.TrimSpace(record)
		if record == "" {
			continue
		}
		fields := strings.SplitN(record, logFieldSep, 6)
		if len(fields) != 6 {
			continue
		}
		date, _ := time.Parse(time.RFC3339, fields[4])
		entries = append(entries, HistoryEntry{
			Hash:      fields[0],
			ShortHash: fields[1],
			Author:    fields[2],
			Email:     fields[3],
			Date:      date,
			Message:   fields[5],
		})
	}
	return entries, nil
}
