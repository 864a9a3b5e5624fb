package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Gaurav-Gosain/modmux/internal/config"
	"github.com/Gaurav-Gosain/modmux/internal/gdi"
	"github.com/Gaurav-Gosain/modmux/internal/mux"
)

func TestClassifyRule(t *testing.T) {
	tests := []struct {
		rule     string
		kinds    string
		keyboard bool
		ocr      bool
	}{
		{`$kbd:gpedit`, "kbd", true, false},
		{`Bloc-notes`, "ocr", false, true},
		{`$kbd:gpedit\x01$ocr:Admin`, "kbd,ocr", true, true},
		{`$exact-kbd,ocr:x`, "kbd,ocr", true, true},
		{`$unknown:x`, "none", false, false},
		{``, "none", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.rule, func(t *testing.T) {
			rep := classifyRule(tt.rule, false)
			assert.Equal(t, tt.rule, rep.Rule, "rule is shown escaped")
			assert.Equal(t, tt.kinds, rep.Kinds)
			assert.Equal(t, tt.keyboard, rep.Keyboard)
			assert.Equal(t, tt.ocr, rep.OCR)
			assert.Empty(t, rep.Issues)
		})
	}
}

func TestClassifyLint(t *testing.T) {
	rep := classifyRule(`$kdb:gpedit`, true)
	assert.False(t, rep.Keyboard)
	assert.NotEmpty(t, rep.Issues)
}

func TestWriteReportsFormats(t *testing.T) {
	rules := []string{`$kbd:gpedit\x01$ocr:Admin`, `$unknown:x`}

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, runClassify(&buf, rules, "json", false))

		var got []ruleReport
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		require.Len(t, got, 2)
		assert.True(t, got[0].Keyboard)
		assert.Equal(t, "none", got[1].Kinds)
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, runClassify(&buf, rules, "yaml", false))

		var got []ruleReport
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
		require.Len(t, got, 2)
		assert.Equal(t, "kbd,ocr", got[0].Kinds)
		assert.False(t, got[1].OCR)
	})

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, runClassify(&buf, rules, "table", false))
		assert.Contains(t, buf.String(), "Kbd")
		assert.Contains(t, buf.String(), "$unknown:x")
		assert.NotContains(t, buf.String(), "Issues")
	})

	t.Run("unknown format", func(t *testing.T) {
		err := runClassify(&bytes.Buffer{}, rules, "xml", false)
		assert.ErrorContains(t, err, "unknown format")
	})

	t.Run("no rules", func(t *testing.T) {
		assert.Error(t, runClassify(&bytes.Buffer{}, nil, "table", false))
	})
}

func TestReadRules(t *testing.T) {
	input := "# comment\n$kbd:a\r\n\nB\n"
	rules, err := readRules(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"$kbd:a", "B"}, rules)
}

func TestWriteSnapshot(t *testing.T) {
	surf := gdi.NewSurface(80, 40, gdi.DefaultFont)
	session := mux.New(mux.Options{Screen: surf.Bounds(), Graphics: surf})
	session.ShowOSD("recording", 0)

	path := filepath.Join(t.TempDir(), "snap.txt")
	require.NoError(t, writeSnapshot(path, session, surf, 20))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "module: null")
	assert.Contains(t, string(data), `osd: "recording"`)
	assert.Contains(t, string(data), "screen: "+surf.Sum())
}

func TestPreviewRows(t *testing.T) {
	surf := gdi.NewSurface(800, 600, gdi.DefaultFont)
	assert.Equal(t, 30, previewRows(surf, 80))
	assert.Equal(t, 1, previewRows(surf, 1))
}

func TestPrintPolicySegments(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		rules   []string
		want    string
	}{
		{"empty", "", nil, "Segments: 0"},
		{"pattern only", "$kbd:gpedit", nil, "Segments: 1"},
		{"pattern and rules", "$kbd:gpedit", []string{"$ocr:Admin", "  "}, "Segments: 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Capture.Pattern = tt.pattern
			cfg.Capture.Rules = tt.rules

			var buf bytes.Buffer
			require.NoError(t, printPolicy(&buf, cfg))
			assert.Contains(t, buf.String(), tt.want)
		})
	}

	var buf bytes.Buffer
	require.NoError(t, printPolicy(&buf, config.DefaultConfig()))
	assert.Contains(t, buf.String(), "No capture is required")
}
