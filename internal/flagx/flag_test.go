package flagx

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	clientFlags := []string{"-a", "-s", "-t", "-ephemeral", "-l"}

	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "config flag is dropped for client flags",
			args:    []string{"-c", "notes.json", "-a", "http://localhost:8000"},
			allowed: clientFlags,
			want:    []string{"-a", "http://localhost:8000"},
		},
		{
			name:    "equals form",
			args:    []string{"-config=notes.json", "-t=3"},
			allowed: clientFlags,
			want:    []string{"-t=3"},
		},
		{
			name:    "bool flag does not swallow the next flag",
			args:    []string{"-ephemeral", "-s", "/tmp/s.db"},
			allowed: clientFlags,
			want:    []string{"-ephemeral", "-s", "/tmp/s.db"},
		},
		{
			name:    "flag without value at end is kept",
			args:    []string{"-a"},
			allowed: clientFlags,
			want:    []string{"-a"},
		},
		{
			name:    "unknown flags and positionals ignored",
			args:    []string{"-x", "1", "--y=2", "positional"},
			allowed: clientFlags,
			want:    []string{},
		},
		{
			name:    "value that looks like a flag in equals form",
			args:    []string{"-config=--weird.json"},
			allowed: []string{"-config"},
			want:    []string{"-config=--weird.json"},
		},
		{
			name:    "repeated flag keeps order",
			args:    []string{"-c", "one.json", "-c", "two.json"},
			allowed: []string{"-c"},
			want:    []string{"-c", "one.json", "-c", "two.json"},
		},
		{
			name:    "empty args",
			args:    nil,
			allowed: clientFlags,
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterArgs(tt.args, tt.allowed)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("FilterArgs() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConfigFile(t *testing.T) {
	cases := map[string]struct {
		args []string
		want string
	}{
		"short":         {[]string{"-c", "/etc/notes.json"}, "/etc/notes.json"},
		"long":          {[]string{"-config", "/etc/notes.json"}, "/etc/notes.json"},
		"equals":        {[]string{"-config=/etc/notes.json"}, "/etc/notes.json"},
		"absent":        {[]string{"-a", "http://x", "-ephemeral"}, ""},
		"last one wins": {[]string{"-c", "1.json", "-config", "2.json", "-a", "http://x"}, "2.json"},
		"missing value": {[]string{"-c"}, ""},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, ConfigFile(tc.args))
		})
	}
}
