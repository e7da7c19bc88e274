package scraper

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"github.com/nsvirk/ssqapi/internal/lottery"
	"golang.org/x/net/html"
)

// DataChartSource parses the history table of a chart site: one <tr> per draw,
// the first cell the issue, then six reds and the blue, with the draw date in
// the last date-shaped cell.
type DataChartSource struct {
	name   string
	url    string
	client *http.Client
}

func NewDataChartSource(name, url string, client *http.Client) *DataChartSource {
	return &DataChartSource{name: name, url: url, client: client}
}

func (s *DataChartSource) Name() string { return s.name }

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

func (s *DataChartSource) Fetch(ctx context.Context, limit int) ([]lottery.Result, error) {
	body, err := fetch(ctx, s.client, expandURL(s.url, limit), map[string]string{
		"Referer": "https://datachart.500.com/ssq/",
	})
	if err != nil {
		return nil, err
	}
	return parseDataChart(body)
}

func parseDataChart(body string) ([]lottery.Result, error) {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil, err
	}

	var results []lottery.Result
	for _, cells := range tableRows(doc) {
		if r, ok := rowToResult(cells); ok {
			results = append(results, r)
		}
	}
	return results, nil
}

func rowToResult(cells []string) (lottery.Result, bool) {
	if len(cells) < 9 {
		return lottery.Result{}, false
	}
	issue, err := lottery.NormalizeIssue(cells[0])
	if err != nil {
		return lottery.Result{}, false
	}
	reds, blue, err := parseBalls(cells[1:7], cells[7])
	if err != nil {
		return lottery.Result{}, false
	}
	for i := len(cells) - 1; i >= 8; i-- {
		if !datePattern.MatchString(cells[i]) {
			continue
		}
		date, err := parseDay(cells[i])
		if err != nil {
			return lottery.Result{}, false
		}
		return lottery.Result{Issue: issue, DrawDate: date, OrderReds: reds, Blue: blue}, true
	}
	return lottery.Result{}, false
}

// tableRows collects the trimmed text of every <td> per <tr>
func tableRows(n *html.Node) [][]string {
	var rows [][]string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			var cells []string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
					cells = append(cells, strings.TrimSpace(nodeText(c)))
				}
			}
			rows = append(rows, cells)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return rows
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.ReplaceAll(sb.String(), "\u00a0", " ")
}
