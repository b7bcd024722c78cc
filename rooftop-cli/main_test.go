package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	dir := t.TempDir()
	image := filepath.Join(dir, "roof.jpg")
	require.NoError(t, os.WriteFile(image, []byte("rooftop photo"), 0o644))

	testCases := []struct {
		name     string
		provider string
		args     []string
		code     int
		wantKeys []string
	}{
		{"usage", "stub", nil, 2, nil},
		{"stub success", "stub", []string{image}, 0, []string{"usable_area_m2", "recommended_panels"}},
		{"missing file", "stub", []string{filepath.Join(dir, "nope.jpg")}, 1, nil},
		{"unknown provider", "bogus", []string{image}, 1, nil},
		{"missing api key", "gemini", []string{image}, 1, []string{"error", "details"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("VISION_PROVIDER", tc.provider)
			t.Setenv("GOOGLE_API_KEY", "")

			var stdout bytes.Buffer
			code := run(tc.args, &stdout)

			assert.Equal(t, tc.code, code)
			if tc.args == nil {
				assert.Contains(t, stdout.String(), "Usage: rooftop-cli <image_path>")
				return
			}
			if tc.wantKeys == nil {
				assert.Empty(t, stdout.String())
				return
			}

			var body map[string]any
			require.NoError(t, json.Unmarshal(stdout.Bytes(), &body))
			assert.Len(t, body, len(tc.wantKeys))
			for _, key := range tc.wantKeys {
				assert.Contains(t, body, key)
			}
		})
	}
}
