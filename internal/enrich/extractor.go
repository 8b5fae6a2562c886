package enrich

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

type (
	// Metadata holds the raw values found in a page. A nil field means the
	// page did not provide it.
	Metadata struct {
		Title       *string
		Description *string
		Image       *string
		TypeHint    *string
	}
)

// Extract never fails: malformed or empty markup yields empty Metadata.
func Extract(html string) Metadata {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Metadata{}
	}

	meta := Metadata{
		Title:       metaContent(doc, "property", "og:title"),
		Description: metaContent(doc, "property", "og:description"),
		Image:       metaContent(doc, "property", "og:image"),
		TypeHint:    metaContent(doc, "property", "og:type"),
	}

	if meta.Title == nil {
		meta.Title = nonEmpty(doc.Find("title").First().Text())
	}
	if meta.Description == nil {
		meta.Description = metaContent(doc, "name", "description")
	}

	return meta
}

func metaContent(doc *goquery.Document, attr, value string) *string {
	sel := doc.Find(fmt.Sprintf(`meta[%s=%q]`, attr, value)).First()
	if sel.Length() == 0 {
		return nil
	}
	content, ok := sel.Attr("content")
	if !ok {
		return nil
	}
	return nonEmpty(content)
}

// nonEmpty also drops bytes that are not UTF-8, which a mislabeled page
// can still produce after decoding.
func nonEmpty(s string) *string {
	s = strings.TrimSpace(strings.ToValidUTF8(s, ""))
	if s == "" {
		return nil
	}
	return &s
}
