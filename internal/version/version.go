// Package version reports the raml2postman build. Release builds set the
// variables below with -ldflags; `go install` builds fall back to the module
// and VCS data embedded by the toolchain.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

var (
	version   = ""
	commitSHA = ""
	buildDate = ""
)

type build struct {
	version, commit, date string
}

func current() build {
	info, _ := debug.ReadBuildInfo()
	return resolve(build{version: version, commit: commitSHA, date: buildDate}, info)
}

// resolve fills whatever ldflags left empty from the embedded build info.
func resolve(b build, info *debug.BuildInfo) build {
	if info != nil {
		if b.version == "" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			b.version = info.Main.Version
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if b.commit == "" {
					b.commit = s.Value
					if len(b.commit) > 12 {
						b.commit = b.commit[:12]
					}
				}
			case "vcs.time":
				if b.date == "" {
					b.date = s.Value
				}
			}
		}
	}
	if b.version == "" {
		b.version = "dev"
	}
	return b
}

func (b build) String() string {
	v := b.version
	if b.commit != "" {
		v += "+" + b.commit
	}
	if b.date != "" {
		v += " (" + b.date + ")"
	}
	return v
}

// Version is the string printed by `raml2postman version`.
func Version() string { return current().String() }

// UserAgent is sent on every Postman API request.
func UserAgent() string {
	return fmt.Sprintf("raml2postman/%s (%s; %s)", current().version, runtime.GOOS, runtime.GOARCH)
}
