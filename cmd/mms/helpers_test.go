package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHumanBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0.00 B"},
		{999, "999.00 B"},
		{1000, "1.00 KB"},
		{1500, "1.50 KB"},
		{1000000, "1.00 MB"},
		{2500000000, "2.50 GB"},
		{7000000000000, "7.00 TB"},
		{3000000000000000, "3.00 PB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, humanBytes(tt.n), "n=%d", tt.n)
	}
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Equal(t, []string{"a.jar"}, splitList("a.jar"))
	assert.Equal(t, []string{"a.jar", "b.jar"}, splitList("a.jar,b.jar"))
	assert.Equal(t, []string{"a.jar", "spaced name.jar"}, splitList(" a.jar , spaced name.jar "))
	assert.Equal(t, []string{"a.jar"}, splitList("a.jar,,"))
}

func TestPromptYesNo(t *testing.T) {
	tests := []struct {
		input      string
		defaultYes bool
		want       bool
	}{
		{"y\n", false, true},
		{"yes\n", false, true},
		{"Y\n", false, true},
		{"n\n", true, false},
		{"no\n", true, false},
		{"\n", true, true},
		{"\n", false, false},
		{"whatever\n", true, false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		got, err := promptYesNo(strings.NewReader(tt.input), &out, "Continue?", tt.defaultYes)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "input %q default %v", tt.input, tt.defaultYes)
		assert.Contains(t, out.String(), "Continue?")
	}
}

func TestPromptYesNo_DefaultMarker(t *testing.T) {
	var out bytes.Buffer
	_, err := promptYesNo(strings.NewReader("\n"), &out, "Proceed?", true)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "[Y/n]")

	out.Reset()
	_, err = promptYesNo(strings.NewReader("\n"), &out, "Proceed?", false)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "[y/N]")
}

func TestPromptYesNo_EmptyInputFails(t *testing.T) {
	var out bytes.Buffer
	_, err := promptYesNo(strings.NewReader(""), &out, "Proceed?", false)
	assert.Error(t, err)
}
