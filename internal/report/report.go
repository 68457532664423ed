// Package report renders pass lists for people.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/seanssullivan/iss-spotter/internal/lookup"
)

// Layout is the timestamp layout used in pass lines.
const Layout = "Mon Jan 2 2006 15:04:05 MST"

// Format renders one pass in loc. A nil loc means UTC.
func Format(p lookup.Pass, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	rise := time.Unix(p.Risetime, 0).In(loc)
	return fmt.Sprintf("Next pass at %s for %d seconds!", rise.Format(Layout), p.Duration)
}

// Write prints one line per pass, in list order.
func Write(w io.Writer, passes lookup.PassList, loc *time.Location) error {
	for _, p := range passes {
		if _, err := fmt.Fprintln(w, Format(p, loc)); err != nil {
			return fmt.Errorf("writing pass report: %w", err)
		}
	}
	return nil
}
