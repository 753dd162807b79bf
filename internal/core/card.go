package core

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	track1Pattern  = regexp.MustCompile(`%B(\d+)\^`)
	track2Pattern  = regexp.MustCompile(`;(\d+)=`)
	digitsPattern  = regexp.MustCompile(`\d{6,}`)
	nonAlnumFilter = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

// stripeSentinels are the framing characters a magnetic-stripe reader emits.
const stripeSentinels = "%;?^="

// ParseScan extracts the identifier from raw scanner input.
//
// Keyboard-wedge readers emit either a full magnetic stripe (Track 1 "%B...^...^...?",
// Track 2 ";...=...?"), a bare card number or a typed employee code. Input is NFKC
// folded first so full-width digits from some readers become ASCII. Plain tokens are
// returned trimmed and otherwise untouched.
func ParseScan(raw string) string {
	cleaned := strings.TrimSpace(norm.NFKC.String(raw))
	if cleaned == "" {
		return ""
	}

	if m := track1Pattern.FindStringSubmatch(cleaned); m != nil {
		return m[1]
	}
	if m := track2Pattern.FindStringSubmatch(cleaned); m != nil {
		return m[1]
	}
	if !strings.ContainsAny(cleaned, stripeSentinels) {
		return cleaned
	}

	// Framed but not a recognised track: take the first long digit run, else the alphanumerics.
	if m := digitsPattern.FindString(cleaned); m != "" {
		return m
	}
	if alnum := nonAlnumFilter.ReplaceAllString(cleaned, ""); len(alnum) >= 3 {
		return alnum
	}
	return ""
}

// NormalizeCode upper-cases an employee code the way it is stored.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(norm.NFKC.String(code)))
}
