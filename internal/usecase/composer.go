package usecase

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"ASongADay/internal/domain"
)

const (
	// DefaultHeader is rendered above every post; {n} is the day number.
	DefaultHeader   = "a song a day, day {n}"
	headerSeqMarker = "{n}"
)

// DefaultEpoch is the day of the first post.
var DefaultEpoch = time.Date(2023, time.January, 8, 0, 0, 0, 0, time.UTC)

// Composer renders candidates into post text.
type Composer struct {
	epoch  time.Time
	header string
}

// NewComposer builds a composer; zero values fall back to the defaults.
func NewComposer(epoch time.Time, header string) *Composer {
	if epoch.IsZero() {
		epoch = DefaultEpoch
	}
	if strings.TrimSpace(header) == "" {
		header = DefaultHeader
	}
	return &Composer{epoch: epoch.UTC(), header: header}
}

// SequenceNumber counts whole days since the epoch; the epoch day is day 1.
func (c *Composer) SequenceNumber(now time.Time) int {
	elapsed := now.UTC().Sub(c.epoch)
	return int(math.Floor(elapsed.Hours()/24)) + 1
}

// Render produces the header, the "title - contributors" line and the link.
func (c *Composer) Render(candidate domain.Candidate, now time.Time) string {
	header := strings.ReplaceAll(c.header, headerSeqMarker, strconv.Itoa(c.SequenceNumber(now)))
	return fmt.Sprintf("%s\n%s - %s\n%s",
		header,
		candidate.Title,
		strings.Join(candidate.Contributors, ", "),
		candidate.URL)
}
