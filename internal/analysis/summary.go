package analysis

import (
	"fmt"
	"strings"
	"time"
)

// String renders the run summary for terminal output.
func (s *RunSummary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run %s (%s) finished in %s\n", s.RunID, s.Mode, s.Duration.Round(time.Millisecond))
	fmt.Fprintf(&b, "  enumerated: %d\n", s.Enumerated)
	fmt.Fprintf(&b, "  processed:  %d\n", s.Processed)
	fmt.Fprintf(&b, "  skipped:    %d\n", s.Skipped)
	fmt.Fprintf(&b, "  flagged:    %d\n", s.Flagged)
	fmt.Fprintf(&b, "  failed:     %d\n", s.Failed)
	fmt.Fprintf(&b, "  committed:  %d", s.Committed)
	if len(s.Failures) > 0 {
		b.WriteString("\nFailures:")
		for _, f := range s.Failures {
			fmt.Fprintf(&b, "\n  %s: %s", f.Identifier, f.Reason)
		}
	}
	return b.String()
}
