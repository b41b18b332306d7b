package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd(t *testing.T) {
	assert.Equal(t, "version", versionCmd.Use)
	assert.Equal(t, "true", versionCmd.Annotations[noAppAnnotation])
}

func TestVersionCmd_PrintsVersion(t *testing.T) {
	original := version
	defer SetVersion(original)

	for _, v := range []string{"dev", "1.4.0"} {
		SetVersion(v)
		out, err := runCLI(t, nil, "version")
		require.NoError(t, err)
		assert.Equal(t, "nova version "+v+"\n", out)
	}
}
