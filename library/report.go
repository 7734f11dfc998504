package library

import (
	"fmt"
	"os"
	"strings"
)

// reportHeader is the fixed two-line header of the exported report.
const reportHeader = "Library Borrowed Books Report\n\n"

// WriteReport writes the fixed header followed by one line per active
// loan to path, overwriting any previous report.
func WriteReport(path string, loans []ActiveLoan) error {
	var sb strings.Builder
	sb.WriteString(reportHeader)
	for _, l := range loans {
		fmt.Fprintf(&sb, "%s is borrowing '%s'\n", l.Username, l.Title)
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
