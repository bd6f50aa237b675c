package handler

import (
	"net/http"
	"runtime"
	"runtime/debug"
)

// VersionInfo is the body of GET /version.
type VersionInfo struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	BuildTime string `json:"build_time,omitempty"`
	GitCommit string `json:"git_commit,omitempty"`
	Modified  bool   `json:"modified,omitempty"`
}

// Set with -ldflags "-X .../internal/handler.GitCommit=...". When left empty
// the VCS stamp that go build embeds is used instead.
var (
	BuildTime string
	GitCommit string
)

// HandleVersion reports the running build; serviceVersion comes from SERVICE_VERSION.
// @Summary Build information
// @Tags health
// @Produce json
// @Success 200 {object} VersionInfo
// @Router /version [get]
func HandleVersion(serviceVersion string) http.HandlerFunc {
	info := buildVersionInfo(serviceVersion, debug.ReadBuildInfo)
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, info)
	}
}

func buildVersionInfo(serviceVersion string, read func() (*debug.BuildInfo, bool)) VersionInfo {
	info := VersionInfo{
		Version:   serviceVersion,
		GoVersion: runtime.Version(),
		BuildTime: BuildTime,
		GitCommit: GitCommit,
	}
	if info.GitCommit != "" && info.BuildTime != "" {
		return info
	}

	bi, ok := read()
	if !ok {
		return info
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitCommit == "" {
				info.GitCommit = s.Value
			}
		case "vcs.time":
			if info.BuildTime == "" {
				info.BuildTime = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}
