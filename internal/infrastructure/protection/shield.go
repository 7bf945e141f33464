package protection

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/acquisitions/acquisitions-api/internal/core/ports"
)

type shieldRule struct {
	name    string
	pattern *regexp.Regexp
}

var shieldRules = []shieldRule{
	{"sql_injection", regexp.MustCompile(`(?i)(\bunion\b[\s(]+(all\s+)?select\b)|('\s*or\s+'?\d+'?\s*=\s*'?\d+)|(\bor\s+1\s*=\s*1\b)|(;\s*(drop|truncate|alter|delete|insert|update)\s+)|(\bsleep\s*\(\s*\d+\s*\))|(\bbenchmark\s*\()|(\bwaitfor\s+delay\b)|(\binformation_schema\b)`)},
	{"xss", regexp.MustCompile(`(?i)(<\s*script\b)|(javascript\s*:)|(\bon(error|load|click|mouseover|focus)\s*=)|(<\s*iframe\b)|(document\.cookie)`)},
	{"path_traversal", regexp.MustCompile(`(?i)(\.\./|\.\.\\)|(/etc/(passwd|shadow))|(/proc/self/)|(c:\\windows\\)`)},
	{"command_injection", regexp.MustCompile("(?i)(;|\\|\\|?|&&|\\$\\(|`)\\s*(cat|ls|id|whoami|uname|wget|curl|nc|bash|sh|powershell)\\b")},
	{"jndi_lookup", regexp.MustCompile(`(?i)\$\{\s*jndi\s*:`)},
}

// inspected headers besides the user agent.
var shieldHeaders = []string{"Referer", "X-Forwarded-Host", "X-Original-URL", "X-Rewrite-URL"}

// Shield matches request lines and selected headers against known attack
// signatures. Request bodies are not inspected.
type Shield struct {
	rules []shieldRule
}

func NewShield() *Shield {
	return &Shield{rules: shieldRules}
}

// Inspect returns the first rule matched by req.
func (s *Shield) Inspect(req ports.ProtectRequest) (string, bool) {
	candidates := []string{decode(req.Path), decode(strings.ReplaceAll(req.RawQuery, "+", " ")), req.UserAgent}
	for _, h := range shieldHeaders {
		if v := req.Header.Get(h); v != "" {
			candidates = append(candidates, decode(v))
		}
	}

	for _, c := range candidates {
		if c == "" {
			continue
		}
		for _, r := range s.rules {
			if r.pattern.MatchString(c) {
				return r.name, true
			}
		}
	}
	return "", false
}

// decode unescapes up to two levels of percent-encoding so that
// double-encoded payloads are matched too.
func decode(s string) string {
	for i := 0; i < 2 && strings.Contains(s, "%"); i++ {
		u, err := url.PathUnescape(s)
		if err != nil {
			break
		}
		s = u
	}
	return s
}
