package version

import (
	"runtime/debug"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve_LdflagsWin(t *testing.T) {
	info := &debug.BuildInfo{
		Main:     debug.Module{Version: "v0.9.0"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "ffffffffffffffff"}},
	}
	got := resolve(build{version: "v1.2.3", commit: "abc123", date: "2026-01-02"}, info)
	assert.Equal(t, "v1.2.3+abc123 (2026-01-02)", got.String())
}

func TestResolve_BuildInfoFallback(t *testing.T) {
	info := &debug.BuildInfo{
		Main: debug.Module{Version: "v0.4.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef0123"},
			{Key: "vcs.time", Value: "2026-03-04T05:06:07Z"},
		},
	}
	got := resolve(build{}, info)
	assert.Equal(t, "v0.4.1+0123456789ab (2026-03-04T05:06:07Z)", got.String())
}

func TestResolve_DevelBuild(t *testing.T) {
	assert.Equal(t, "dev", resolve(build{}, &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}).String())
	assert.Equal(t, "dev", resolve(build{}, nil).String())
}

func TestUserAgent(t *testing.T) {
	ua := UserAgent()
	assert.True(t, strings.HasPrefix(ua, "raml2postman/"), ua)
}
