package extract

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// scriptTagRe matches an opening or closing script tag with interior
// whitespace, the forms catalogued by the OWASP filter-evasion cheat sheet.
var scriptTagRe = regexp.MustCompile(`(?i)<\s*script.*>|<\s*/\s*script\s*>`)

// domainRe counts domain-name-like substrings: dot-separated labels that do
// not start or end with a hyphen, ending in a 2-6 letter top-level label.
var domainRe = regexp.MustCompile(`(?:[A-Za-z0-9](?:[A-Za-z0-9-]{0,61}[A-Za-z0-9])?\.)+[A-Za-z]{2,6}`)

// redirectionSinks are the JavaScript redirection targets tested for verbatim
// substring presence in the decoded URL.
var redirectionSinks = []string{
	"window.location", "window.history", "window.navigate",
	"document.URL", "document.documentURI", "document.URLUnencoded",
	"document.baseURI", "location", "window.open",
	"self.location", "top.location",
}

// suspiciousKeywords are counted individually; "XSS" is matched
// case-sensitively like the rest.
var suspiciousKeywords = []string{
	"login", "signup", "contact", "search", "query", "redirect",
	"XSS", "banking", "root", "password", "crypt", "shell", "evil",
}

// URLFeatures derives the lexical feature block from a page URL. Pure
// function of the string; the URL is percent-decoded before every test.
func URLFeatures(raw string) Features {
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		// Malformed escapes stay as written, the tests still run.
		decoded = raw
	}

	keywords := 0
	for _, word := range suspiciousKeywords {
		if strings.Contains(decoded, word) {
			keywords++
		}
	}
	redirection := false
	for _, sink := range redirectionSinks {
		if strings.Contains(decoded, sink) {
			redirection = true
			break
		}
	}

	return Features{
		"url_length": float64(utf8.RuneCountInString(decoded)),
		"url_duplicated_characters": boolFeature(
			strings.Contains(decoded, "<<") || strings.Contains(decoded, ">>")),
		"url_special_characters": boolFeature(strings.ContainsAny(decoded, `"'>`)),
		"url_script_tag":         boolFeature(scriptTagRe.MatchString(decoded)),
		"url_cookie":             boolFeature(strings.Contains(decoded, "document.cookie")),
		"url_redirection":        boolFeature(redirection),
		"url_number_keywords":    float64(keywords),
		"url_number_domain":      float64(len(domainRe.FindAllString(decoded, -1))),
	}
}
