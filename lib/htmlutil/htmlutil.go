package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

// Text extracts the raw text of every node in a selection, markup stripped.
func Text(sel *goquery.Selection) string {
	var buffer bytes.Buffer
	for _, node := range sel.Nodes {
		buffer.WriteString(GetText(node))
	}
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

// CleanText trims a node's text down to single-spaced printable characters.
func CleanText(s string) string {
	var b strings.Builder
	for _, c := range s {
		if unicode.IsPrint(c) || c == '\n' {
			b.WriteRune(c)
		}
	}
	out := strings.Trim(b.String(), " \t\n")
	return innerWhitespace.ReplaceAllString(out, " ")
}

// listing images carry the product photo in a sibling or ancestor of the
// anchor, not inside it
var imageSelector = `img[src*="product"], img[src*="card"], img[src*=".jpg"], img[src*=".png"], img[src*=".webp"]`

// ListingImage finds the product image nearest to a listing anchor: first a
// recognizable product image under the closest list-item ancestor, then any
// image under it. Returns "" when the listing has no image.
func ListingImage(anchor *goquery.Selection) string {
	parent := anchor.Closest("li, article, div")
	if parent.Length() == 0 {
		parent = anchor.Parent()
	}
	if parent.Length() == 0 {
		return ""
	}
	img := parent.Find(imageSelector).First()
	if img.Length() == 0 {
		img = parent.Find("img").First()
	}
	return img.AttrOr("src", "")
}

// AbsoluteURL resolves scheme-relative and path-relative image/product URLs
// against the site base.
func AbsoluteURL(base, href string) string {
	switch {
	case href == "":
		return ""
	case strings.HasPrefix(href, "//"):
		return "https:" + href
	case strings.HasPrefix(href, "http"):
		return href
	case strings.HasPrefix(href, "/"):
		return strings.TrimSuffix(base, "/") + href
	default:
		return strings.TrimSuffix(base, "/") + "/" + href
	}
}
