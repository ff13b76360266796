package seed

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSeed(t *testing.T) {
	input := "# extra documents\nRedis is an in-memory store\n\n   \n  pgvector adds vectors to Postgres  \n#skip\n"
	docs, err := ReadSeed(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"Redis is an in-memory store", "pgvector adds vectors to Postgres"}, docs)
}

func TestLoadSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.txt")
	require.NoError(t, os.WriteFile(path, []byte("one\ntwo\n"), 0644))

	docs, err := LoadSeedFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, docs)

	_, err = LoadSeedFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
