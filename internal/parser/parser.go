package parser

import "snapcheck/internal/domain"

// Parser extracts the closing numbers from a leak tool's diagnostic stream
type Parser interface {
	ParseSummary(diagnostics string) *domain.LeakSummary
}
