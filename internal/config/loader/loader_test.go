package loader

import (
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTOMLLoader(t *testing.T) {
	fsys := fstest.MapFS{
		"indentscope.toml": {Data: []byte(`
symbol = "|"

[draw]
delay = 50

[draw.animation]
shape = "cubic"
duration = 12.5
`)},
		"bad.toml": {Data: []byte("symbol = \n[draw\n")},
	}
	l := NewTOMLLoader(fsys)

	data, err := l.LoadFrom("indentscope.toml")
	require.NoError(t, err)
	assert.Equal(t, "|", data["symbol"])
	draw := data["draw"].(map[string]any)
	assert.EqualValues(t, 50, draw["delay"])
	assert.Equal(t, map[string]any{"shape": "cubic", "duration": 12.5}, draw["animation"])

	_, err = l.LoadFrom("bad.toml")
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "bad.toml", perr.Path)
	assert.Positive(t, perr.Line)
	assert.Contains(t, perr.Error(), "bad.toml")

	_, err = l.LoadFrom("missing.toml")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestYAMLLoader(t *testing.T) {
	fsys := fstest.MapFS{
		"indentscope.yaml": {Data: []byte(`
symbol: "|"
draw:
  delay: 0
  animation:
    shape: none
options:
  1: numeric-key
`)},
		"empty.yml": {Data: []byte("")},
		"list.yaml": {Data: []byte("- a\n- b\n")},
		"bad.yaml":  {Data: []byte("draw:\n\tdelay: 1\n")},
	}
	l := NewYAMLLoader(fsys)

	data, err := l.LoadFrom("indentscope.yaml")
	require.NoError(t, err)
	assert.Equal(t, "|", data["symbol"])
	assert.Equal(t, map[string]any{"delay": 0, "animation": map[string]any{"shape": "none"}}, data["draw"])
	assert.Equal(t, map[string]any{"1": "numeric-key"}, data["options"])

	data, err = l.LoadFrom("empty.yml")
	require.NoError(t, err)
	assert.Empty(t, data)

	_, err = l.LoadFrom("list.yaml")
	var perr *ParseError
	require.ErrorAs(t, err, &perr)

	_, err = l.LoadFrom("bad.yaml")
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "bad.yaml", perr.Path)
	assert.Positive(t, perr.Line)
}

func TestForPath(t *testing.T) {
	tests := []struct {
		path string
		want Loader
	}{
		{"a.toml", &TOMLLoader{}},
		{"a.TOML", &TOMLLoader{}},
		{"a.yaml", &YAMLLoader{}},
		{"dir/a.yml", &YAMLLoader{}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			l, err := ForPath(tt.path)
			require.NoError(t, err)
			assert.IsType(t, tt.want, l)
			assert.True(t, Supported(tt.path))
		})
	}

	_, err := ForPath("init.lua")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.False(t, Supported("config.json"))
}

func TestParseErrorMessages(t *testing.T) {
	assert.Equal(t, "parse error in f at line 2, column 3: boom",
		(&ParseError{Path: "f", Line: 2, Column: 3, Message: "boom"}).Error())
	assert.Equal(t, "parse error in f at line 2: boom",
		(&ParseError{Path: "f", Line: 2, Message: "boom"}).Error())
	assert.Equal(t, "parse error in f: boom",
		(&ParseError{Path: "f", Message: "boom"}).Error())
}
