package version

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestBuildInfo tests the version strings printed by the version command.
func TestBuildInfo(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Version, Short())

	full := Full()
	assert.True(t, strings.HasPrefix(full, "version: "+Version+","))
	assert.Contains(t, full, "commit: "+Commit)
	assert.Contains(t, full, "built at: "+BuildTime)
}

// TestVersionIsSemantic tests that the default version is a bare semantic version.
func TestVersionIsSemantic(t *testing.T) {
	t.Parallel()

	semver := regexp.MustCompile(`^\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?$`)

	assert.Regexp(t, semver, Version)
	assert.NotEmpty(t, Commit)
	assert.NotEmpty(t, BuildTime)
}
