package leave

import (
	"context"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Rewriter turns a raw leave reason into a short professional one.
// Implementations must not alter leave type or dates; they only see the text.
type Rewriter interface {
	Rewrite(ctx context.Context, raw string, leaveType LeaveType) (string, error)
}

var (
	upperCaser = cases.Upper(language.English)
	lowerCaser = cases.Lower(language.English)
)

// FallbackReason trims the text and capitalises it: first letter upper case,
// the rest lower case.
func FallbackReason(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	_, size := utf8.DecodeRuneInString(s)
	return upperCaser.String(s[:size]) + lowerCaser.String(s[size:])
}

// rewriteReason calls the rewriter when present. The returned reason is always
// usable; a non-nil error only reports why the fallback was taken.
func rewriteReason(ctx context.Context, rw Rewriter, raw string, lt LeaveType) (string, error) {
	if rw == nil || strings.TrimSpace(raw) == "" {
		return FallbackReason(raw), nil
	}
	out, err := rw.Rewrite(ctx, raw, lt)
	if err != nil {
		return FallbackReason(raw), err
	}
	if out = strings.TrimSpace(out); out == "" {
		return FallbackReason(raw), errEmptyRewrite
	}
	return out, nil
}
