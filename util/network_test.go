package util

import "testing"

func TestFormatAddr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"irc.example.net", 6667, "irc.example.net:6667"},
		{"127.0.0.1", 6697, "127.0.0.1:6697"},
		{"::1", 6667, "[::1]:6667"},
	}
	for _, tt := range tests {
		if got := FormatAddr(tt.host, tt.port); got != tt.want {
			t.Errorf("FormatAddr(%q, %d) = %q, want %q", tt.host, tt.port, got, tt.want)
		}
	}
}
