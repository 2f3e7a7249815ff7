package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadIntFromFile(t *testing.T) {
	// GIVEN
	path := filepath.Join(t.TempDir(), "pwm1")
	assert.NoError(t, os.WriteFile(path, []byte("128\n"), 0644))

	// WHEN
	value, err := ReadIntFromFile(path)

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, 128, value)
}

func TestReadIntFromEmptyFile(t *testing.T) {
	// GIVEN
	path := filepath.Join(t.TempDir(), "pwm1")
	assert.NoError(t, os.WriteFile(path, []byte(""), 0644))

	// WHEN
	_, err := ReadIntFromFile(path)

	// THEN
	assert.Error(t, err)
}

func TestWriteIntToFile(t *testing.T) {
	// GIVEN
	path := filepath.Join(t.TempDir(), "pwm1")
	assert.NoError(t, os.WriteFile(path, []byte("0"), 0644))

	// WHEN
	err := WriteIntToFile(200, path)

	// THEN
	assert.NoError(t, err)
	value, readErr := ReadIntFromFile(path)
	assert.NoError(t, readErr)
	assert.Equal(t, 200, value)
}

func TestWriteIntToFileAtomic(t *testing.T) {
	// GIVEN
	path := filepath.Join(t.TempDir(), "pwm1")

	// WHEN
	err := WriteIntToFileAtomic(64, path)

	// THEN
	assert.NoError(t, err)
	value, readErr := ReadIntFromFile(path)
	assert.NoError(t, readErr)
	assert.Equal(t, 64, value)
}

func TestFileExists(t *testing.T) {
	// GIVEN
	path := filepath.Join(t.TempDir(), "pwm1")

	// WHEN
	before := FileExists(path)
	assert.NoError(t, os.WriteFile(path, []byte("1"), 0644))
	after := FileExists(path)

	// THEN
	assert.False(t, before)
	assert.True(t, after)
}
