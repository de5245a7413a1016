package parser

import (
	"regexp"
	"strconv"
	"strings"

	"snapcheck/internal/domain"
)

var (
	lostPattern   = regexp.MustCompile(`(definitely|indirectly|possibly) lost:\s*([\d,]+) bytes in ([\d,]+) blocks`)
	errorsPattern = regexp.MustCompile(`ERROR SUMMARY:\s*([\d,]+) errors?`)
)

// LeakParser reads the closing summary a leak tool prints to its diagnostic stream
type LeakParser struct{}

// NewLeakParser creates a new LeakParser
func NewLeakParser() *LeakParser {
	return &LeakParser{}
}

// ParseSummary extracts the lost byte/block counts and the error count.
// Returns nil when the stream has neither a leak nor an error summary.
func (p *LeakParser) ParseSummary(diagnostics string) *domain.LeakSummary {
	var summary domain.LeakSummary
	found := false

	for _, m := range lostPattern.FindAllStringSubmatch(diagnostics, -1) {
		found = true
		bytes := parseCount(m[2])
		switch m[1] {
		case "definitely":
			summary.DefinitelyLostBytes = bytes
			summary.DefinitelyLostBlocks = parseCount(m[3])
		case "indirectly":
			summary.IndirectlyLostBytes = bytes
		case "possibly":
			summary.PossiblyLostBytes = bytes
		}
	}

	// The last ERROR SUMMARY wins; valgrind may print one per child process
	if all := errorsPattern.FindAllStringSubmatch(diagnostics, -1); len(all) > 0 {
		found = true
		summary.Errors = parseCount(all[len(all)-1][1])
	}

	if !found {
		return nil
	}
	return &summary
}

// parseCount reads numbers printed with thousands separators, e.g. "1,024"
func parseCount(s string) int64 {
	n, err := strconv.ParseInt(strings.ReplaceAll(s, ",", ""), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
