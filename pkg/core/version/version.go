// ============================================================================
// TheCalcularoty - LC Calculator
// ============================================================================
//
// Package:     version
// Description: Central version management for the CLI and servers
// Author:      Nicolas5241
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package version

import (
	"fmt"
	"runtime"
	"sort"
	"strings"
)

// Platform is the release; components are bumped on their own
const (
	Platform = "1.0.0"

	CLI    = "1.0.0"
	HTTP   = "1.0.0"
	GRPC   = "1.0.0"
	Engine = "1.0.0"
)

// Set at build time with -ldflags "-X ...version.Commit=..."
var (
	Commit    = "unknown"
	BuildDate = "unknown"
)

var components = map[string]string{
	"lcc":    CLI,
	"cli":    CLI,
	"http":   HTTP,
	"grpc":   GRPC,
	"engine": Engine,
}

// ServiceVersion returns the version of component name, or Platform
func ServiceVersion(name string) string {
	if v, ok := components[name]; ok {
		return v
	}
	return Platform
}

// Info describes the running binary
type Info struct {
	Version    string            `json:"version"`
	Commit     string            `json:"commit"`
	BuildDate  string            `json:"build_date"`
	GoVersion  string            `json:"go_version"`
	Platform   string            `json:"platform"`
	Components map[string]string `json:"components"`
}

// Get returns the build information for component name
func Get(name string) Info {
	return Info{
		Version:   ServiceVersion(name),
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		Components: map[string]string{
			"http":   HTTP,
			"grpc":   GRPC,
			"engine": Engine,
		},
	}
}

// String returns a one-line summary
func (i Info) String() string {
	return fmt.Sprintf("%s (commit %s, built %s, %s %s)", i.Version, i.Commit, i.BuildDate, i.GoVersion, i.Platform)
}

// ComponentList renders the components as "engine 1.0.0, grpc 1.0.0, ..."
func (i Info) ComponentList() string {
	names := make([]string, 0, len(i.Components))
	for name := range i.Components {
		names = append(names, name)
	}
	sort.Strings(names)
	for k, name := range names {
		names[k] = name + " " + i.Components[name]
	}
	return strings.Join(names, ", ")
}
