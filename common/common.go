package common

import "io/fs"

const (
	AppName = "tapsmith"

	// SchemaVersion is bumped whenever the persisted snapshot layout changes
	// in a way old readers cannot decode.
	SchemaVersion = 1
)

// Logger field names used for run and step scoped entries.
const (
	LogFieldApp   = "App"
	LogFieldRun   = "Run"
	LogFieldStep  = "Step"
	LogFieldPhase = "Phase"
)

const (
	// FileMode0755 represents rwxr-xr-x
	FileMode0755 fs.FileMode = 0755
	// FileMode0644 represents rw-r--r--
	FileMode0644 fs.FileMode = 0644
	// FileMode0700 represents rwx------
	FileMode0700 fs.FileMode = 0700
)

const (
	// RunsDirName is the directory under the store base dir holding one
	// subdirectory per run id.
	RunsDirName = "runs"
	// StateFileName is the snapshot document name inside a run directory.
	StateFileName = "state.json"
)
