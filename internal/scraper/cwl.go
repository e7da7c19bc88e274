package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/nsvirk/ssqapi/internal/lottery"
)

// CWLSource reads the official draw notice JSON API. The API only reports
// sorted reds, so the draw order equals the sorted order.
type CWLSource struct {
	name   string
	url    string
	client *http.Client
}

func NewCWLSource(name, url string, client *http.Client) *CWLSource {
	return &CWLSource{name: name, url: url, client: client}
}

func (s *CWLSource) Name() string { return s.name }

type cwlResponse struct {
	State   int    `json:"state"`
	Message string `json:"message"`
	Result  []struct {
		Code string `json:"code"`
		Date string `json:"date"`
		Red  string `json:"red"`
		Blue string `json:"blue"`
	} `json:"result"`
}

func (s *CWLSource) Fetch(ctx context.Context, limit int) ([]lottery.Result, error) {
	body, err := fetch(ctx, s.client, expandURL(s.url, limit), map[string]string{
		"Referer":          "https://www.cwl.gov.cn/ygkj/wqkjgg/ssq/",
		"X-Requested-With": "XMLHttpRequest",
	})
	if err != nil {
		return nil, err
	}

	var resp cwlResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if resp.State != 0 {
		return nil, fmt.Errorf("api state %d: %s", resp.State, resp.Message)
	}

	results := make([]lottery.Result, 0, len(resp.Result))
	for _, item := range resp.Result {
		issue, err := lottery.NormalizeIssue(item.Code)
		if err != nil {
			continue
		}
		date, err := parseDay(item.Date)
		if err != nil {
			continue
		}
		reds, blue, err := parseBalls(strings.Split(item.Red, ","), item.Blue)
		if err != nil {
			continue
		}
		results = append(results, lottery.Result{Issue: issue, DrawDate: date, OrderReds: reds, Blue: blue})
	}
	return results, nil
}
