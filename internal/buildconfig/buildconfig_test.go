package buildconfig

import (
	"encoding/json"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	info := Get()
	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.Commit)
	assert.Equal(t, runtime.Version(), info.GoVersion)
}

func TestInfoString(t *testing.T) {
	info := Info{Version: "v0.3.0", Commit: "abc123", GoVersion: "go1.24.0"}
	assert.Equal(t, "v0.3.0 (abc123, go1.24.0)", info.String())

	info.Modified = true
	assert.Equal(t, "v0.3.0 (abc123-dirty, go1.24.0)", info.String())
}

func TestInfoJSON(t *testing.T) {
	b, err := json.Marshal(Info{Version: "dev", Commit: "unknown", GoVersion: "go1.24.0"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":"dev","commit":"unknown","go":"go1.24.0"}`, string(b))
}

func TestShortRevision(t *testing.T) {
	assert.Equal(t, "0123456789ab", shortRevision("0123456789abcdef0123"))
	assert.Equal(t, "abc", shortRevision("abc"))
}
