package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "tilepipe dev", format("", "", false))
	assert.Equal(t, "tilepipe 0123456789ab", format("0123456789abcdef", "", false))
	assert.Equal(t, "tilepipe abc1234-dirty (2026-01-02T03:04:05Z)", format("abc1234", "2026-01-02T03:04:05Z", true))
}

func TestFromSettings(t *testing.T) {
	settings := []debug.BuildSetting{
		{Key: "vcs.revision", Value: "deadbeef"},
		{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		{Key: "vcs.modified", Value: "true"},
	}

	commit, built, dirty := fromSettings(settings, "", "")
	assert.Equal(t, "deadbeef", commit)
	assert.Equal(t, "2026-01-02T03:04:05Z", built)
	assert.True(t, dirty)

	commit, built, _ = fromSettings(settings, "cafe", "yesterday")
	assert.Equal(t, "cafe", commit, "ldflags win over build info")
	assert.Equal(t, "yesterday", built)
}
