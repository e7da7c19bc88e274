// Package scraper fetches recent draw results from public results pages.
//
// Sources are tried in order; the first one that yields at least one valid
// result wins. When every source fails the chain produces synthetic
// placeholder results and says so in the Outcome.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nsvirk/ssqapi/internal/lottery"
	"github.com/nsvirk/ssqapi/pkg/utils/zaplogger"
	"golang.org/x/text/encoding/simplifiedchinese"
)

var ErrNoResults = errors.New("no results parsed")

// Source fetches and parses one results provider
type Source interface {
	Name() string
	Fetch(ctx context.Context, limit int) ([]lottery.Result, error)
}

// Outcome is what a chain run produced
type Outcome struct {
	Source    string           `json:"source"`
	Synthetic bool             `json:"synthetic"`
	Results   []lottery.Result `json:"-"`
	Failures  []string         `json:"failures,omitempty"`
}

// Chain tries sources in order
type Chain struct {
	Sources  []Source
	Fallback Source
}

// Run returns the results of the first source that works, or the fallback's
func (c *Chain) Run(ctx context.Context, limit int) Outcome {
	var out Outcome
	for _, src := range c.Sources {
		results, err := src.Fetch(ctx, limit)
		if err == nil {
			results = keepValid(results)
			if len(results) == 0 {
				err = ErrNoResults
			}
		}
		if err != nil {
			zaplogger.Warn("Scraper source failed", zaplogger.Fields{
				"source": src.Name(),
				"error":  err.Error(),
			})
			out.Failures = append(out.Failures, fmt.Sprintf("%s: %v", src.Name(), err))
			continue
		}
		out.Source = src.Name()
		out.Results = results
		return out
	}

	if c.Fallback != nil {
		results, _ := c.Fallback.Fetch(ctx, limit)
		out.Source = c.Fallback.Name()
		out.Synthetic = true
		out.Results = results
	}
	return out
}

func keepValid(results []lottery.Result) []lottery.Result {
	valid := results[:0]
	for _, r := range results {
		if r.Validate() == nil {
			valid = append(valid, r)
		}
	}
	return valid
}

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

const maxBodyBytes = 4 << 20

// fetch performs a GET and returns the body decoded to UTF-8
func fetch(ctx context.Context, client *http.Client, url string, headers map[string]string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9,en;q=0.5")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read body: %w", err)
	}
	return decodeBody(resp.Header.Get("Content-Type"), body)
}

// decodeBody converts GB2312/GBK/GB18030 pages to UTF-8
func decodeBody(contentType string, body []byte) (string, error) {
	ct := strings.ToLower(contentType)
	isGB := strings.Contains(ct, "gb2312") || strings.Contains(ct, "gbk") || strings.Contains(ct, "gb18030")
	if !isGB && utf8.Valid(body) {
		return string(body), nil
	}
	decoded, err := simplifiedchinese.GB18030.NewDecoder().Bytes(body)
	if err != nil {
		return "", fmt.Errorf("failed to decode GBK body: %w", err)
	}
	return string(decoded), nil
}

// parseBalls parses exactly six reds followed by a blue
func parseBalls(reds []string, blue string) ([lottery.RedCount]int, int, error) {
	var out [lottery.RedCount]int
	if len(reds) != lottery.RedCount {
		return out, 0, fmt.Errorf("expected %d reds, got %d", lottery.RedCount, len(reds))
	}
	for i, s := range reds {
		n, err := lottery.ParseBall(s, lottery.RedMax)
		if err != nil {
			return out, 0, err
		}
		out[i] = n
	}
	b, err := lottery.ParseBall(blue, lottery.BlueMax)
	if err != nil {
		return out, 0, err
	}
	return out, b, nil
}

// parseDay parses a yyyy-mm-dd prefix, ignoring any weekday suffix
func parseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) >= 10 {
		s = s[:10]
	}
	return time.Parse("2006-01-02", s)
}

func expandURL(tmpl string, limit int) string {
	return strings.ReplaceAll(tmpl, "{limit}", strconv.Itoa(limit))
}
