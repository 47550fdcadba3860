package shader

import (
	"strings"
	"testing"
)

func TestSources(t *testing.T) {
	tests := []struct {
		kind     Kind
		contains []string
		excludes []string
	}{
		{KindColor, []string{"aColor", "worldView"}, []string{"sampler2D", "Light light"}},
		{KindTextured, []string{"aTexCoord", "sampler2D tex"}, []string{"Light light"}},
		{KindTexturedLit, []string{"aNormal", "sampler2D tex", "Light light"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			vs, fs := tt.kind.Sources()
			src := vs + fs
			if !strings.HasPrefix(vs, "#version 410 core") || !strings.HasPrefix(fs, "#version 410 core") {
				t.Error("sources must start with the GLSL 4.10 version directive")
			}
			if !strings.Contains(vs, "uniform Uniforms") {
				t.Error("vertex shader must declare the Uniforms block")
			}
			for _, s := range tt.contains {
				if !strings.Contains(src, s) {
					t.Errorf("expected %q in %s sources", s, tt.kind)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(src, s) {
					t.Errorf("unexpected %q in %s sources", s, tt.kind)
				}
			}
		})
	}
}

func TestKindString(t *testing.T) {
	if got := Kind(42).String(); got != "unknown" {
		t.Errorf("expected unknown, got %q", got)
	}
}
