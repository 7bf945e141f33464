package protection

import (
	"regexp"
	"strings"
)

// Bot categories. Allow-list entries refer to them as "CATEGORY:<name>".
const (
	CategorySearchEngine = "SEARCH_ENGINE"
	CategoryPreview      = "PREVIEW"
	CategoryTool         = "TOOL"
	CategoryAutomated    = "AUTOMATED"
)

// DefaultBotAllow admits search engines, link previews and the common API
// testing clients.
var DefaultBotAllow = []string{
	"CATEGORY:" + CategorySearchEngine,
	"CATEGORY:" + CategoryPreview,
	"POSTMAN",
	"curl*",
	"Insomnia*",
	"Thunder Client*",
}

type botSignature struct {
	name     string
	category string
	token    string // lowercase substring of the user agent
}

// botPatterns replace the token of signatures whose marker also occurs
// inside product names, e.g. "bot" in the Cubot phone model.
var botPatterns = map[string]*regexp.Regexp{
	"GENERIC_BOT": regexp.MustCompile(`\bbot\b|bot[/;]`),
}

func (s botSignature) match(lowerUA string) bool {
	if re, ok := botPatterns[s.name]; ok {
		return re.MatchString(lowerUA)
	}
	return strings.Contains(lowerUA, s.token)
}

// Order matters: specific clients first, generic markers last.
var botSignatures = []botSignature{
	{"GOOGLE_CRAWLER", CategorySearchEngine, "googlebot"},
	{"BING_CRAWLER", CategorySearchEngine, "bingbot"},
	{"DUCKDUCKGO_CRAWLER", CategorySearchEngine, "duckduckbot"},
	{"YANDEX_CRAWLER", CategorySearchEngine, "yandexbot"},
	{"BAIDU_CRAWLER", CategorySearchEngine, "baiduspider"},
	{"APPLE_CRAWLER", CategorySearchEngine, "applebot"},

	{"FACEBOOK_PREVIEW", CategoryPreview, "facebookexternalhit"},
	{"TWITTER_PREVIEW", CategoryPreview, "twitterbot"},
	{"SLACK_PREVIEW", CategoryPreview, "slackbot"},
	{"DISCORD_PREVIEW", CategoryPreview, "discordbot"},
	{"LINKEDIN_PREVIEW", CategoryPreview, "linkedinbot"},
	{"TELEGRAM_PREVIEW", CategoryPreview, "telegrambot"},
	{"WHATSAPP_PREVIEW", CategoryPreview, "whatsapp"},

	{"POSTMAN", CategoryTool, "postmanruntime"},
	{"CURL", CategoryTool, "curl/"},
	{"INSOMNIA", CategoryTool, "insomnia"},
	{"THUNDER_CLIENT", CategoryTool, "thunder client"},
	{"HTTPIE", CategoryTool, "httpie"},
	{"WGET", CategoryTool, "wget"},

	{"PYTHON_REQUESTS", CategoryAutomated, "python-requests"},
	{"PYTHON_URLLIB", CategoryAutomated, "python-urllib"},
	{"GO_HTTP", CategoryAutomated, "go-http-client"},
	{"NODE_FETCH", CategoryAutomated, "node-fetch"},
	{"AXIOS", CategoryAutomated, "axios/"},
	{"OKHTTP", CategoryAutomated, "okhttp"},
	{"JAVA_HTTP", CategoryAutomated, "java/"},
	{"LIBWWW_PERL", CategoryAutomated, "libwww-perl"},
	{"SCRAPY", CategoryAutomated, "scrapy"},
	{"HEADLESS_CHROME", CategoryAutomated, "headlesschrome"},
	{"PHANTOMJS", CategoryAutomated, "phantomjs"},
	{"GENERIC_BOT", CategoryAutomated, "bot"},
	{"GENERIC_CRAWLER", CategoryAutomated, "crawler"},
	{"GENERIC_SPIDER", CategoryAutomated, "spider"},
}

// Detection is the classification of one user agent.
type Detection struct {
	Bot      bool
	Name     string
	Category string
}

// BotDetector classifies user agents and applies an allow-list.
type BotDetector struct {
	categories map[string]struct{}
	names      map[string]struct{}
	prefixes   []string
}

// NewBotDetector builds a detector. Allow entries are "CATEGORY:<category>",
// an exact client name such as "POSTMAN", or a user-agent prefix ending in
// "*" such as "curl*". Matching is case-insensitive.
func NewBotDetector(allow []string) *BotDetector {
	d := &BotDetector{
		categories: make(map[string]struct{}),
		names:      make(map[string]struct{}),
	}
	for _, entry := range allow {
		entry = strings.TrimSpace(entry)
		switch {
		case entry == "":
		case strings.HasPrefix(strings.ToUpper(entry), "CATEGORY:"):
			d.categories[strings.ToUpper(entry[len("CATEGORY:"):])] = struct{}{}
		case strings.HasSuffix(entry, "*"):
			d.prefixes = append(d.prefixes, strings.ToLower(strings.TrimSuffix(entry, "*")))
		default:
			d.names[strings.ToUpper(entry)] = struct{}{}
		}
	}
	return d
}

// Detect classifies ua without consulting the allow-list. A missing user
// agent is treated as automated traffic.
func (d *BotDetector) Detect(ua string) Detection {
	lower := strings.ToLower(strings.TrimSpace(ua))
	if lower == "" {
		return Detection{Bot: true, Name: "MISSING_USER_AGENT", Category: CategoryAutomated}
	}
	for _, sig := range botSignatures {
		if sig.match(lower) {
			return Detection{Bot: true, Name: sig.name, Category: sig.category}
		}
	}
	return Detection{}
}

// IsBot reports whether ua is automated traffic that the allow-list does
// not admit.
func (d *BotDetector) IsBot(ua string) bool {
	det := d.Detect(ua)
	if !det.Bot {
		return false
	}
	return !d.allowed(det, ua)
}

func (d *BotDetector) allowed(det Detection, ua string) bool {
	if _, ok := d.categories[det.Category]; ok {
		return true
	}
	if _, ok := d.names[det.Name]; ok {
		return true
	}
	lower := strings.ToLower(strings.TrimSpace(ua))
	for _, p := range d.prefixes {
		if p != "" && strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}
