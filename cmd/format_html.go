package cmd

import (
	"fmt"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/yf-2009/veribuy/internal/models"
	"github.com/yf-2009/veribuy/internal/pipeline"
	"github.com/yf-2009/veribuy/internal/session"
	"github.com/yf-2009/veribuy/internal/trust"
)

const reportCSS = `body{font-family:system-ui,sans-serif;background:#0b0d12;color:#e8eaf0;margin:24px}
.prod{border:1px solid rgba(255,255,255,.12);border-radius:12px;padding:12px;margin:10px 0}
.badge{display:inline-block;border:1px solid;border-radius:999px;padding:2px 8px;margin-right:6px;font-size:12px}
.meta,.small{color:rgba(255,255,255,.7);font-size:13px}
.price{font-weight:600;margin-top:6px}
table{border-collapse:collapse;margin-top:16px}td,th{padding:4px 10px;text-align:left}
a{color:#9ecbff}`

func elem(a atom.Atom, attrs []html.Attribute, children ...*html.Node) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func attr(kv ...string) []html.Attribute {
	out := make([]html.Attribute, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, html.Attribute{Key: kv[i], Val: kv[i+1]})
	}
	return out
}

func styleOf(s trust.Style) string {
	return fmt.Sprintf("border-color:%s;background:%s;color:%s", s.Border, s.Background, s.Text)
}

func badge(label string, s trust.Style) *html.Node {
	return elem(atom.Span, attr("class", "badge", "style", styleOf(s)), text(label))
}

// renderHTML writes a standalone report of the ranked view and comparison.
// All product strings go through text nodes, so markup in titles is escaped.
func renderHTML(w io.Writer, query string, items []pipeline.Ranked, rows []session.CompareRow, c *models.Coupon) error {
	body := elem(atom.Body, nil,
		elem(atom.H1, nil, text("VeriBuy: "+query)),
		elem(atom.P, attr("class", "meta"), text(fmt.Sprintf("%d items", len(items)))),
	)

	if len(items) == 0 {
		body.AppendChild(elem(atom.P, attr("class", "small"), text("No results yet. Try a search above.")))
	}
	for _, it := range items {
		body.AppendChild(productNode(it, c))
	}
	body.AppendChild(compareNode(rows))

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	doc.AppendChild(elem(atom.Html, attr("lang", "en"),
		elem(atom.Head, nil,
			elem(atom.Meta, attr("charset", "utf-8")),
			elem(atom.Title, nil, text("VeriBuy results")),
			elem(atom.Style, nil, text(reportCSS)),
		),
		body,
	))
	return html.Render(w, doc)
}

func productNode(it pipeline.Ranked, c *models.Coupon) *html.Node {
	t := it.Trust
	reason := badge("No flags", trust.NeutralStyle)
	if r := t.FirstReason(); r != "" {
		reason = badge(r, trust.Warn.Style())
	}
	major := badge("Marketplace", trust.NeutralStyle)
	if it.Major {
		major = badge("Major retailer", trust.Good.Style())
	}

	article := elem(atom.Article, attr("class", "prod"))
	if it.Thumbnail != nil && *it.Thumbnail != "" {
		article.AppendChild(elem(atom.Img, attr("alt", "", "src", safeLink(it.Thumbnail), "width", "64")))
	}
	article.AppendChild(elem(atom.H3, nil, text(it.Title)))
	article.AppendChild(elem(atom.Div, attr("class", "meta"),
		text(fmt.Sprintf("Source: %s · Rating: %s · %s", it.SourceName(), ratingText(it.Rating), reviewsText(it.Reviews))),
	))
	article.AppendChild(elem(atom.Div, nil,
		badge(fmt.Sprintf("%s: %d/100", t.Tag, t.Score), t.Tone.Style()),
		reason,
		major,
	))
	article.AppendChild(elem(atom.Div, attr("class", "price"), text(priceLine(it.Product, c))))
	article.AppendChild(elem(atom.Div, attr("class", "small"), text("Multi-aspect (demo): "+aspectsLine(t.Score))))
	article.AppendChild(elem(atom.A,
		attr("href", safeLink(it.Link), "target", "_blank", "rel", "noopener noreferrer"),
		text("View ↗"),
	))
	return article
}

func compareNode(rows []session.CompareRow) *html.Node {
	head := elem(atom.Tr, nil,
		elem(atom.Th, nil, text("Source")),
		elem(atom.Th, nil, text("Price")),
		elem(atom.Th, nil, text("Trust")),
		elem(atom.Th, nil, text("Coupon")),
	)
	tbody := elem(atom.Tbody, nil)
	if len(rows) == 0 {
		tbody.AppendChild(elem(atom.Tr, nil, elem(atom.Td, attr("colspan", "4"), text("No results yet."))))
	}
	for _, r := range rows {
		tbody.AppendChild(elem(atom.Tr, nil,
			elem(atom.Td, nil, text(r.Source)),
			elem(atom.Td, nil, text(formatUSD(r.Price))),
			elem(atom.Td, nil, text(fmt.Sprintf("%s (%d)", r.TrustLabel, r.Score))),
			elem(atom.Td, nil, text(r.CouponStatus)),
		))
	}
	return elem(atom.Table, nil, elem(atom.Thead, nil, head), tbody)
}
