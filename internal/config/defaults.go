package config

const (
	// DefaultProjectPath is the default project path
	DefaultProjectPath = "."
	// DefaultTestRoot is the directory holding test inputs
	DefaultTestRoot = "tests"
	// DefaultSnapshotRoot is the directory holding recorded snapshots
	DefaultSnapshotRoot = "snapshots"
	// DefaultSnapshotExt replaces the test input extension
	DefaultSnapshotExt = ".out"
	// DefaultSubject is the executable under test
	DefaultSubject = "./build/flood"
	// DefaultLeakTool wraps the subject in leak-check mode
	DefaultLeakTool = "valgrind"
	// DefaultLeakExitCode is the exit code the leak tool reports leaks with
	DefaultLeakExitCode = 3
	// DefaultConfigFile is looked up in the project path when --config is not given
	DefaultConfigFile = "snapcheck.yaml"
	// DefaultLogLevel is the default logging level
	DefaultLogLevel = "info"

	DiffStyleUnified = "unified"
	DiffStyleFull    = "full"
)

// DefaultTestDirs are the subdirectories of the test root that are run, in order
var DefaultTestDirs = []string{
	"language/runtime_error",
	"language/runtime",
	"misc",
}
