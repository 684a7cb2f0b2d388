//go:build darwin

package login

import (
	"strings"
	"testing"
)

func TestAgentPlist(t *testing.T) {
	p := agentPlist("/Applications/Mic & Mute/micmute", map[string]string{"MICMUTE_LOG_PATH": "/tmp/logs"})
	for _, want := range []string{
		"<string>io.micmute.agent</string>",
		"<string>/Applications/Mic &amp; Mute/micmute</string>",
		"<string>run</string>",
		"<key>MICMUTE_LOG_PATH</key>",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("plist missing %q:\n%s", want, p)
		}
	}
	if strings.Contains(agentPlist("/bin/micmute", nil), "EnvironmentVariables") {
		t.Error("empty environment still written")
	}
}
