package sync

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/xelth-com/maintdesk/internal/utils"
)

// GenerateNextJobID returns the next job number for a job type and received
// date, formatted {prefix}{MM}{seq:3}/{YY} with YY the two-digit Thai year.
//
// The sequence is one more than the highest existing one for the same
// prefix, month and year. Nothing reserves it: two callers that allocate
// before either saves get the same number.
func (e *SyncEngine) GenerateNextJobID(ctx context.Context, jobType, dateReceived string) (string, error) {
	date, err := utils.ParseDate(dateReceived)
	if err != nil {
		return "", err
	}

	settings, err := e.GetSettings(ctx)
	if err != nil {
		return "", err
	}
	prefix := settings.JobTypePrefixes[jobType]
	if prefix == "" {
		prefix = e.config.DefaultJobPrefix
	}

	head := fmt.Sprintf("%s%02d", prefix, int(date.Month()))
	tail := "/" + utils.ShortBuddhistYear(date)

	jobs, err := e.GetJobs(ctx)
	if err != nil {
		return "", err
	}

	maxSeq := 0
	for _, j := range jobs {
		if seq, ok := jobSequence(j.JobNumber, head, tail); ok && seq > maxSeq {
			maxSeq = seq
		}
	}

	return fmt.Sprintf("%s%03d%s", head, maxSeq+1, tail), nil
}

// jobSequence extracts the sequence of a job number that starts with head
// and ends with tail, using the trailing digit run of what lies between so
// non-padded or decorated numbers still count
func jobSequence(number, head, tail string) (int, bool) {
	if !strings.HasPrefix(number, head) || !strings.HasSuffix(number, tail) {
		return 0, false
	}
	if len(number) < len(head)+len(tail) {
		return 0, false
	}
	body := number[len(head) : len(number)-len(tail)]

	end := len(body)
	start := end
	for start > 0 && body[start-1] >= '0' && body[start-1] <= '9' {
		start--
	}
	if start == end {
		return 0, false
	}

	seq, err := strconv.Atoi(body[start:end])
	if err != nil {
		return 0, false
	}
	return seq, true
}
