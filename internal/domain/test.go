package domain

// TestCase is one discovered test input
type TestCase struct {
	Path    string // Path to the input file, under the test root
	RelPath string // Path relative to the test root, slash separated
}

// Mode selects what a single run does
type Mode int

const (
	ModeCompare Mode = iota
	ModeUpgrade
	ModeClean
	ModeLeakCheck
)

func (m Mode) String() string {
	switch m {
	case ModeCompare:
		return "compare"
	case ModeUpgrade:
		return "upgrade"
	case ModeClean:
		return "clean"
	case ModeLeakCheck:
		return "leak-check"
	}
	return "unknown"
}
