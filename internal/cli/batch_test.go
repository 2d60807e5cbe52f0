package cli

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateClaimShortUnchanged(t *testing.T) {
	claim := "a short claim"
	if got := truncateClaim(claim); got != claim {
		t.Errorf("expected %q unchanged, got %q", claim, got)
	}
}

func TestTruncateClaimCutsOnRuneBoundary(t *testing.T) {
	claim := strings.Repeat("जलवायु ", 30)
	got := truncateClaim(claim)

	if !utf8.ValidString(got) {
		t.Errorf("truncation produced invalid UTF-8: %q", got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("expected ellipsis suffix: %q", got)
	}
	if runes := len([]rune(got)); runes != 80 {
		t.Errorf("expected 80 runes, got %d", runes)
	}
}
