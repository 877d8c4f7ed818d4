package version

import (
	"strings"
	"testing"
)

func withBuild(t *testing.T, v, commit, date string) {
	t.Helper()
	oldV, oldC, oldD := Version, Commit, Date
	Version, Commit, Date = v, commit, date
	t.Cleanup(func() { Version, Commit, Date = oldV, oldC, oldD })
}

func TestString(t *testing.T) {
	tests := []struct {
		name    string
		version string
		commit  string
		date    string
		want    []string
		notWant string
	}{
		{
			name:    "dev build",
			version: "dev",
			commit:  "unknown",
			date:    "unknown",
			want:    []string{"covergen version dev ("},
			notWant: "commit:",
		},
		{
			name:    "release build",
			version: "1.2.0",
			commit:  "0a1b2c3d4e5f6789",
			date:    "2025-06-01T00:00:00Z",
			want:    []string{"covergen version 1.2.0", "commit: 0a1b2c3d,", "built: 2025-06-01T00:00:00Z"},
		},
		{
			name:    "short commit is not sliced",
			version: "1.2.0",
			commit:  "abc",
			date:    "2025-06-01T00:00:00Z",
			want:    []string{"commit: abc,"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withBuild(t, tt.version, tt.commit, tt.date)
			got := String()
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("String() = %q, want it to contain %q", got, w)
				}
			}
			if tt.notWant != "" && strings.Contains(got, tt.notWant) {
				t.Errorf("String() = %q, should not contain %q", got, tt.notWant)
			}
		})
	}
}

func TestShort(t *testing.T) {
	withBuild(t, "0.3.1", "unknown", "unknown")
	if got := Short(); got != "0.3.1" {
		t.Errorf("Short() = %q, want 0.3.1", got)
	}
}
