package browser

import "strings"

// botSignatures is a curated list of substrings identifying HTTP tooling,
// headless browsers, scrapers, and search crawlers. Matching is
// case-insensitive against the full User-Agent string.
//
// The list intentionally targets tools that identify themselves honestly.
// Bots that fully forge a browser User-Agent are handled by the score-based
// signals instead.
var botSignatures = []string{
	// HTTP clients and tooling
	"curl/",
	"wget/",
	"python-requests",
	"python-urllib",
	"go-http-client",
	"java/",
	"okhttp",
	"axios/",
	"node-fetch",
	"libwww-perl",
	"httpclient",
	"postmanruntime",
	"insomnia",

	// Headless and automation
	"headlesschrome",
	"phantomjs",
	"selenium",
	"playwright",
	"puppeteer",
	"electron",

	// Scrapers and crawlers
	"scrapy",
	"httrack",
	"python-httpx",
	"aiohttp",
	"bot",
	"spider",
	"crawler",
	"crawling",

	// Search engines
	"googlebot",
	"bingbot",
	"yandexbot",
	"baiduspider",
	"duckduckbot",
	"slurp",

	// Social previews and monitors
	"facebookexternalhit",
	"twitterbot",
	"slackbot",
	"telegrambot",
	"whatsapp",
	"discordbot",
	"pingdom",
	"uptimerobot",
}

// browserTokens identify mainstream browser engines inside a User-Agent.
var browserTokens = []string{
	"chrome/",
	"chromium/",
	"firefox/",
	"safari/",
	"edg/",
	"opr/",
	"opera/",
}

// matchBotSignature returns the first bot signature found in the User-Agent,
// if any.
func matchBotSignature(ua string) (string, bool) {
	lower := strings.ToLower(ua)
	for _, sig := range botSignatures {
		if strings.Contains(lower, sig) {
			return sig, true
		}
	}
	return "", false
}
