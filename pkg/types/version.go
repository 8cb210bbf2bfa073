package types

import (
	"encoding/json"

	"github.com/sirupsen/logrus"
)

// VersionInfo contains version information.
type VersionInfo struct {
	GitVersion   string `json:"gitVersion"`
	GitCommit    string `json:"gitCommit"`
	GitTreeState string `json:"gitTreeState"`
	BuildDate    string `json:"buildDate"`
	GoVersion    string `json:"goVersion"`
	Compiler     string `json:"compiler"`
	Platform     string `json:"platform"`
}

// String returns info as a full version string.
func (versionInfo VersionInfo) String() string {
	bytes, err := json.Marshal(versionInfo)
	if err != nil {
		logrus.Fatalln(err)
	}
	return string(bytes)
}

// Short returns info as a human-friendly version string.
func (versionInfo VersionInfo) Short() string {
	if versionInfo.GitVersion == "" {
		return "dev"
	}
	return versionInfo.GitVersion
}
