package model

// VersionInfo describes the running relay build.
type VersionInfo struct {
	Version       string `json:"version"`
	APIVersion    string `json:"apiVersion"`
	GoVersion     string `json:"goVersion"`
	GitCommit     string `json:"gitCommit"`
	BuildTime     string `json:"buildTime"`
	FormattedTime string `json:"formattedTime"`
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	// Uptime is how long the process has been serving, e.g. "3h2m1s".
	Uptime string `json:"uptime"`
}

// HealthInfo reports whether the relay can serve chat turns.
type HealthInfo struct {
	Status      string `json:"status"` // "ok" or "degraded"
	Browser     bool   `json:"browser"`
	BrowserMode string `json:"browserMode"`
}
