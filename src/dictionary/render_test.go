package dictionary

import (
	"strings"
	"testing"
)

func TestRenderMainContent(t *testing.T) {
	content := `{"content":{"word":{"content":{"trans":[
		{"pos":"n.","tranCn":"鬼; 幽灵","tranOther":"ghost; spirit"},
		{"pos":"v.","tranCn":"悄然离开"}
	]}}}}`

	got := RenderMainContent(content)
	want := "n. 鬼; 幽灵; ghost; spirit\nv. 悄然离开"
	if got != want {
		t.Errorf("RenderMainContent = %q, want %q", got, want)
	}

	if got := RenderMainContent("not json"); got != "" {
		t.Errorf("RenderMainContent(garbage) = %q", got)
	}
}

func TestRenderGPT4Content(t *testing.T) {
	content := `{
		"translations":[{"pos":"n.","tranCn":"鬼"}],
		"sentences":[{"en":"I saw a ghost.","cn":"我看见了一个鬼。"}],
		"phrases":[{"phrase":"give up the ghost","meaning":"死亡"}],
		"rememberMethod":"gh- words are often spooky"
	}`

	got := RenderGPT4Content(content)
	for _, fragment := range []string{
		"n. 鬼",
		"· I saw a ghost.",
		"我看见了一个鬼。",
		"give up the ghost - 死亡",
		"gh- words are often spooky",
	} {
		if !strings.Contains(got, fragment) {
			t.Errorf("RenderGPT4Content missing %q in:\n%s", fragment, got)
		}
	}
}

func TestRenderGPT4ContentPassesThroughNonJSON(t *testing.T) {
	raw := "plain cached definition"
	if got := RenderGPT4Content(raw); got != raw {
		t.Errorf("RenderGPT4Content = %q, want passthrough", got)
	}
}
