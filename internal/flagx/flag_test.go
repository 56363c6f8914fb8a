package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "short flag with separate value",
			args:         []string{"-c", "conf.json", "-a", "localhost"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"-c", "conf.json"},
		},
		{
			name:         "long flag with equals",
			args:         []string{"--config=alt.json", "-a", "localhost"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"--config=alt.json"},
		},
		{
			name:         "unknown flags ignored",
			args:         []string{"-x", "1", "--y=2", "positional"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{},
		},
		{
			name:         "flag without value at end is kept as-is",
			args:         []string{"-m"},
			allowedFlags: []string{"-m"},
			want:         []string{"-m"},
		},
		{
			name:         "flag followed by another flag",
			args:         []string{"-t", "-m", "10"},
			allowedFlags: []string{"-t", "-m"},
			want:         []string{"-t", "-m", "10"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowedFlags))
		})
	}
}

func TestJsonConfigFromArgs(t *testing.T) {
	assert.Equal(t, "a.json", JsonConfigFromArgs([]string{"-a", ":8080", "-c", "a.json"}))
	assert.Equal(t, "b.json", JsonConfigFromArgs([]string{"-config=b.json"}))
	assert.Equal(t, "", JsonConfigFromArgs([]string{"-a", ":8080"}))
}

func TestJsonConfigFlags_ReadsOSArgs(t *testing.T) {
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })

	os.Args = []string{"bin", "-c", "cfg.json"}
	assert.Equal(t, "cfg.json", JsonConfigFlags())
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"image/", "video/mp4"}, SplitList(" image/ ,, video/mp4 "))
	assert.Equal(t, []string{}, SplitList(""))
}
