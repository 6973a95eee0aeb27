package bbref

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fortuna/nbastats/internal/tabular"
	"golang.org/x/net/html"
)

// Division standings table ids on the standings page
var standingsTables = []string{"divs_standings_E", "divs_standings_W"}

// Standing is one team's line in the divisional standings
type Standing struct {
	Conference   string
	Division     string
	Team         string
	Abbreviation string
	Wins         int
	Losses       int
	Playoffs     bool
}

// ParseHTML converts raw HTML to a goquery Document for parsing
func ParseHTML(htmlContent string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// ParseStandings reads both conference division tables. Division header
// rows ("Atlantic Division") set the division for the team rows under them.
func ParseStandings(doc *goquery.Document) ([]Standing, error) {
	var standings []Standing
	for _, id := range standingsTables {
		table := doc.Find("table#" + id)
		if table.Length() == 0 {
			// Newer pages ship some tables inside HTML comments.
			table = findCommentedTable(doc, id)
		}
		if table == nil || table.Length() == 0 {
			return nil, fmt.Errorf("standings table %s not found", id)
		}

		parsed, err := parseDivisionTable(table)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", id, err)
		}
		standings = append(standings, parsed...)
	}
	return standings, nil
}

func parseDivisionTable(table *goquery.Selection) ([]Standing, error) {
	header := table.Find("thead tr").Last().Find("th").Map(func(_ int, s *goquery.Selection) string {
		return strings.TrimSpace(s.Text())
	})
	if len(header) == 0 {
		return nil, tabular.ErrEmptyHeader
	}
	conference := strings.TrimSuffix(header[0], " Conference")
	header[0] = "Team"

	var rows [][]any
	var divisions, abbrs []string
	division := ""

	table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		if tr.HasClass("thead") {
			division = strings.TrimSuffix(strings.TrimSpace(tr.Text()), " Division")
			return
		}
		var cells []any
		tr.Children().Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(cell.Text()))
		})
		if len(cells) == 0 {
			return
		}
		href, _ := tr.Find("a").First().Attr("href")
		rows = append(rows, cells)
		divisions = append(divisions, division)
		abbrs = append(abbrs, abbreviationFromHref(href))
	})

	maps, err := tabular.TableRowsToMaps(rows, header)
	if err != nil {
		return nil, err
	}

	standings := make([]Standing, 0, len(maps))
	for i, m := range maps {
		name, _ := m["Team"].(string)
		playoffs := strings.HasSuffix(name, "*")
		s := Standing{
			Conference:   conference,
			Division:     divisions[i],
			Team:         strings.TrimSpace(strings.TrimSuffix(name, "*")),
			Abbreviation: abbrs[i],
			Playoffs:     playoffs,
		}
		s.Wins = atoi(m["W"])
		s.Losses = atoi(m["L"])
		standings = append(standings, s)
	}
	return standings, nil
}

// findCommentedTable looks for a table wrapped in an HTML comment
func findCommentedTable(doc *goquery.Document, id string) *goquery.Selection {
	var found *goquery.Selection
	doc.Find("div").EachWithBreak(func(_ int, div *goquery.Selection) bool {
		for _, node := range div.Nodes {
			for c := node.FirstChild; c != nil; c = c.NextSibling {
				if c.Type != html.CommentNode || !strings.Contains(c.Data, `id="`+id+`"`) {
					continue
				}
				inner, err := ParseHTML(c.Data)
				if err != nil {
					continue
				}
				found = inner.Find("table#" + id)
				return false
			}
		}
		return true
	})
	return found
}

// abbreviationFromHref turns "/teams/TOR/2015.html" into "TOR"
func abbreviationFromHref(href string) string {
	parts := strings.Split(strings.Trim(href, "/"), "/")
	if len(parts) >= 2 && parts[0] == "teams" {
		return parts[1]
	}
	return ""
}

func atoi(v any) int {
	s, _ := v.(string)
	n, _ := strconv.Atoi(s)
	return n
}
