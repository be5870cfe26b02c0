package yamlconfig

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, `
site:
  title: startlelog
  input: posts
  include: ["*.md"]
  workers: 3
  params:
    author: ada
  notify:
    url: http://localhost:3000
    event: rebuilt
`)

	model, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)

	site := model.Site
	assert.Equal(t, "startlelog", site.Title)
	assert.Equal(t, "posts", site.Input)
	assert.Equal(t, []string{"*.md"}, site.Include)
	assert.Equal(t, 3, site.Workers)
	assert.Equal(t, map[string]any{"author": "ada"}, site.Params)
	require.NotNil(t, site.Notify)
	assert.Equal(t, "rebuilt", site.Notify.Event)
}

func TestLoad_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		errMsg  string
	}{
		{"empty file", "", "has no site section"},
		{"unknown field", "site:\n  tittle: x\n", "failed to decode"},
		{"bad type", "site:\n  workers: many\n", "failed to decode"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewLoader().Load(context.Background(), writeFile(t, tc.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}
}
