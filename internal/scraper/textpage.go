package scraper

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"github.com/nsvirk/ssqapi/internal/lottery"
)

// TextPageSource reads plain text listings with one draw per line:
//
//	2024001 2024-01-02 09 03 21 14 30 01 05 ...
//
// Markup is stripped first so the same pattern also works on simple HTML pages.
type TextPageSource struct {
	name   string
	url    string
	client *http.Client
}

func NewTextPageSource(name, url string, client *http.Client) *TextPageSource {
	return &TextPageSource{name: name, url: url, client: client}
}

func (s *TextPageSource) Name() string { return s.name }

var (
	tagPattern  = regexp.MustCompile(`<[^>]*>`)
	linePattern = regexp.MustCompile(`(\d{5,7})\D{1,20}?(\d{4}-\d{2}-\d{2})\D+?((?:\d{1,2}[\s,]+){6})\D*?(\d{1,2})\b`)
	numPattern  = regexp.MustCompile(`\d{1,2}`)
)

func (s *TextPageSource) Fetch(ctx context.Context, limit int) ([]lottery.Result, error) {
	body, err := fetch(ctx, s.client, expandURL(s.url, limit), nil)
	if err != nil {
		return nil, err
	}
	results := parseTextPage(body)
	// plain text listings are oldest first
	if len(results) > limit && limit > 0 {
		results = results[len(results)-limit:]
	}
	return results, nil
}

func parseTextPage(body string) []lottery.Result {
	text := tagPattern.ReplaceAllString(body, " ")
	var results []lottery.Result
	for _, line := range strings.Split(text, "\n") {
		m := linePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		issue, err := lottery.NormalizeIssue(m[1])
		if err != nil {
			continue
		}
		date, err := parseDay(m[2])
		if err != nil {
			continue
		}
		reds, blue, err := parseBalls(numPattern.FindAllString(m[3], -1), m[4])
		if err != nil {
			continue
		}
		results = append(results, lottery.Result{Issue: issue, DrawDate: date, OrderReds: reds, Blue: blue})
	}
	return results
}
