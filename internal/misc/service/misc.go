package service

import (
	"runtime"
	"time"

	"github.com/babelcloud/gbox/packages/relay/internal/misc/model"
	browser "github.com/babelcloud/gbox/packages/relay/pkg/browser"
)

var (
	// Version is the version of the relay, set at link time
	Version = "dev"
	// BuildTime is the time when the relay was built
	BuildTime = "unknown"
	// CommitID is the git commit ID of the relay
	CommitID = "unknown"
)

// Session reports the state of the shared browser.
type Session interface {
	Healthy() bool
	Mode() browser.DisplayMode
}

// MiscService handles version and health reporting
type MiscService struct {
	session Session
	started time.Time
}

// New creates a new MiscService. session may be nil.
func New(session Session) *MiscService {
	return &MiscService{session: session, started: time.Now()}
}

// formatBuildTime formats the build time to a readable string
func formatBuildTime() string {
	if BuildTime == "unknown" {
		return BuildTime
	}

	t, err := time.Parse(time.RFC3339, BuildTime)
	if err != nil {
		return BuildTime
	}

	return t.Format("Mon Jan 2 15:04:05 2006")
}

// GetVersion returns build information
func (s *MiscService) GetVersion() *model.VersionInfo {
	return &model.VersionInfo{
		Version:       Version,
		APIVersion:    "v1",
		GoVersion:     runtime.Version(),
		GitCommit:     CommitID,
		BuildTime:     BuildTime,
		FormattedTime: formatBuildTime(),
		OS:            runtime.GOOS,
		Arch:          runtime.GOARCH,
		Uptime:        time.Since(s.started).Truncate(time.Second).String(),
	}
}

// GetHealth reports whether the browser session is up.
func (s *MiscService) GetHealth() *model.HealthInfo {
	info := &model.HealthInfo{Status: "degraded"}
	if s.session == nil {
		return info
	}
	info.Browser = s.session.Healthy()
	info.BrowserMode = s.session.Mode().Label()
	if info.Browser {
		info.Status = "ok"
	}
	return info
}
