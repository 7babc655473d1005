package browser

import (
	"strings"
	"testing"

	"github.com/chromedp/chromedp"
)

func TestFlagsExtendDefaults(t *testing.T) {
	flags := Flags(Options{Headless: true, UserAgent: "test-agent", Locale: "ko-KR"})

	if len(flags) <= len(chromedp.DefaultExecAllocatorOptions) {
		t.Errorf("Expected more than %d options, got %d", len(chromedp.DefaultExecAllocatorOptions), len(flags))
	}
}

func TestVisibleScriptQuotesSelector(t *testing.T) {
	script := visibleScript(`a[href="x"]`)

	if !strings.Contains(script, `document.querySelector("a[href=\"x\"]")`) {
		t.Errorf("Expected quoted selector in script, got %s", script)
	}
	if !strings.Contains(script, "getClientRects") || !strings.Contains(script, `"hidden"`) {
		t.Errorf("Expected layout and visibility checks, got %s", script)
	}
}
