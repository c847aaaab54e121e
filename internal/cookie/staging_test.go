package cookie_test

import (
	"os"
	"testing"

	"github.com/hbomb79/Reel/internal/cookie"
	"github.com/stretchr/testify/assert"
)

const testEnvVar = "REEL_TEST_COOKIES"

func Test_Stage_UnsetEnvYieldsNoFile(t *testing.T) {
	t.Setenv(testEnvVar, "")

	staged, err := cookie.Stage(testEnvVar)
	assert.NoError(t, err)
	assert.Nil(t, staged)
	assert.Empty(t, staged.Path())

	// Releasing a nil handle must be safe
	staged.Release()
}

func Test_Stage_WritesContentToTempFile(t *testing.T) {
	content := "# Netscape HTTP Cookie File\n.example.com\tTRUE\t/\tFALSE\t0\tsession\tabc123\n"
	t.Setenv(testEnvVar, content)

	staged, err := cookie.Stage(testEnvVar)
	assert.NoError(t, err)
	assert.NotNil(t, staged)
	defer staged.Release()

	assert.NotEmpty(t, staged.Path())
	onDisk, err := os.ReadFile(staged.Path())
	assert.NoError(t, err)
	assert.Equal(t, content, string(onDisk))
}

func Test_Release_RemovesFileAndIsIdempotent(t *testing.T) {
	t.Setenv(testEnvVar, "cookie-data")

	staged, err := cookie.Stage(testEnvVar)
	assert.NoError(t, err)

	path := staged.Path()
	assert.FileExists(t, path)

	staged.Release()
	assert.NoFileExists(t, path)

	// Second release is a no-op
	staged.Release()
}
