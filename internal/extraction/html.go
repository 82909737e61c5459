package extraction

import (
	"bytes"

	"github.com/PuerkitoBio/goquery"
)

// blockSelector lists elements whose boundaries separate words visually but
// not in the DOM text.
const blockSelector = "p, div, li, tr, td, th, h1, h2, h3, h4, h5, h6, section, article, header, footer, ul, ol, dt, dd"

// extractHTML returns the visible text of an HTML document.
func extractHTML(data []byte) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, &DocumentReadError{Format: FormatHTML, Message: "failed to parse", Cause: err}
	}

	doc.Find("script, style, noscript, template").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	return &Result{Format: FormatHTML, Text: doc.Text(), Pages: 1}, nil
}

// HTMLToText reduces an HTML fragment to its visible text. Malformed markup is
// tolerated; only reader failures are reported.
func HTMLToText(html string) (string, error) {
	res, err := extractHTML([]byte(html))
	if err != nil {
		return "", err
	}
	return res.Text, nil
}
