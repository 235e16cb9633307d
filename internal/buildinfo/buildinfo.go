package buildinfo

import "time"

// Set via -ldflags at build time
var (
	BuildTime  string // when the binary was compiled
	CommitTime string // last git commit time (last code edit)
	CommitHash string // short git commit hash
)

// StartTime is recorded when the process starts
var StartTime = time.Now().UTC().Format(time.RFC3339)

// Info is the build description reported by the status endpoint
type Info struct {
	BuildTime  string `json:"buildTime,omitempty"`
	CommitTime string `json:"commitTime,omitempty"`
	CommitHash string `json:"commitHash,omitempty"`
	StartTime  string `json:"startTime"`
}

// Get returns the build description, "dev" when no hash was linked in
func Get() Info {
	hash := CommitHash
	if hash == "" {
		hash = "dev"
	}
	return Info{
		BuildTime:  BuildTime,
		CommitTime: CommitTime,
		CommitHash: hash,
		StartTime:  StartTime,
	}
}
