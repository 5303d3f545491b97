package htmlsanitize_test

import (
	"strings"
	"testing"

	"github.com/crewdeck/crewdeck/internal/app/system/htmlsanitize"
)

func TestSanitize_StripsScript(t *testing.T) {
	in := `hello <script>alert("x")</script> world`
	out := htmlsanitize.Sanitize(in)
	if strings.Contains(out, "<script>") || strings.Contains(out, "alert") {
		t.Errorf("script content survived: %q", out)
	}
}

func TestSanitize_KeepsSafeFormatting(t *testing.T) {
	in := `<b>bold</b> and <em>emphasis</em>`
	out := htmlsanitize.Sanitize(in)
	if !strings.Contains(out, "<b>bold</b>") || !strings.Contains(out, "<em>emphasis</em>") {
		t.Errorf("safe formatting removed: %q", out)
	}
}

func TestSanitize_Empty(t *testing.T) {
	if out := htmlsanitize.Sanitize(""); out != "" {
		t.Errorf("empty input: got %q", out)
	}
}

func TestPlainText_StripsAllMarkup(t *testing.T) {
	in := `<b>Project</b> <i>Alpha</i>`
	out := htmlsanitize.PlainText(in)
	if strings.ContainsAny(out, "<>") {
		t.Errorf("markup survived PlainText: %q", out)
	}
	if !strings.Contains(out, "Project") || !strings.Contains(out, "Alpha") {
		t.Errorf("text content lost: %q", out)
	}
}

func TestPlainText_Trims(t *testing.T) {
	if out := htmlsanitize.PlainText("  padded  "); out != "padded" {
		t.Errorf("PlainText should trim: got %q", out)
	}
}
