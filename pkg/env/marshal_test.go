package env

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inner struct {
	Model string `env:"TEST_MODEL"`
}

type sample struct {
	APIKey  string        `env:"TEST_API_KEY,required,notEmpty"`
	Timeout time.Duration `env:"TEST_TIMEOUT" envDefault:"30s"`
	Retries int           `env:"TEST_RETRIES"`
	Debug   bool          `env:"TEST_DEBUG"`
	Empty   string        `env:"TEST_EMPTY"`
	NoTag   string
	inner
	Nested inner
}

func TestMarshalEnv(t *testing.T) {
	c := &sample{
		APIKey:  "abc.def#1",
		Timeout: 45 * time.Second,
		Retries: 3,
		Debug:   true,
		NoTag:   "ignored",
		Nested:  inner{Model: "rerank"},
	}

	out, err := MarshalEnv(c)
	require.NoError(t, err)
	assert.Equal(t, "TEST_API_KEY=\"abc.def#1\"\nTEST_DEBUG=\"true\"\nTEST_MODEL=\"rerank\"\nTEST_RETRIES=3\nTEST_TIMEOUT=\"45s\"\n", out)

	parsed, err := godotenv.Unmarshal(out)
	require.NoError(t, err)
	assert.Equal(t, "abc.def#1", parsed["TEST_API_KEY"])
	assert.Equal(t, "45s", parsed["TEST_TIMEOUT"])
}

func TestMarshalEnv_Empty(t *testing.T) {
	out, err := MarshalEnv(&sample{})
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = MarshalEnv(sample{})
	assert.Error(t, err)
}

func TestWriteFile_Merges(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("OTHER=keep\nTEST_API_KEY=old\n"), 0o600))

	require.NoError(t, WriteFile(path, &sample{APIKey: "new"}))

	values, err := godotenv.Read(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"OTHER": "keep", "TEST_API_KEY": "new"}, values)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestWriteFile_Creates(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, WriteFile(path, &sample{Retries: 1}))

	values, err := godotenv.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "1", values["TEST_RETRIES"])
}
