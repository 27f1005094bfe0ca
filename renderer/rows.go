package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/cryptofund"
	md "github.com/nao1215/markdown"
)

// RowsMarkdown renders the row list with the row indices used by the editor.
func RowsMarkdown(rows []cryptofund.Row) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignRight,
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
		},
		Header: []string{"#", "Ticker", "Market Cap", "Price"},
		Rows:   [][]string{},
	}
	for i, r := range rows {
		table.Rows = append(table.Rows, []string{
			fmt.Sprint(i),
			r.Ticker,
			r.MarketCap,
			r.Price,
		})
	}
	doc.Table(table)

	return doc.String()
}

// SessionMarkdown renders the parameters and the rows of a session, then its last outcome.
func SessionMarkdown(s *cryptofund.Session, currency string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Index Fund")
	doc.PlainText(fmt.Sprintf("Asset cap: %s%%, total capital: %s",
		s.AssetCap.Shift(2).String(), Money(s.TotalCapital.InexactFloat64(), currency)))
	doc.PlainText("")
	doc.PlainText(RowsMarkdown(s.Rows.All()))

	switch {
	case s.Err() != nil:
		doc.PlainText(fmt.Sprintf("Error: %v", s.Err()))
	case s.Results() != nil:
		doc.PlainText(RenderResults(&Results{
			Currency:     currency,
			AssetCap:     s.AssetCap.InexactFloat64(),
			TotalCapital: s.TotalCapital.InexactFloat64(),
			Allocations:  s.Results(),
		}))
	}
	return doc.String()
}
