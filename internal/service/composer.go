package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	stdhtml "html"
	"log"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/corvidian/backend/internal/cache"
)

const (
	defaultBaseURL = "http://localhost:8000"

	bodyImageStyle = "display:block;max-width:100%;width:auto;height:auto;border:0;outline:none;text-decoration:none;margin:10px 0;"
	heroImageStyle = "display:block;max-width:100%;width:100%;height:auto;border:0;outline:none;text-decoration:none;border-radius:8px;"
)

// EmailContent is the composable shape shared by welcome messages and
// campaigns. ID is zero for records not yet persisted; those are never
// cached.
type EmailContent struct {
	ID        uint
	Subject   string
	Body      string
	HeroImage string
}

// Composer turns rich-text newsletter content into a self-contained
// HTML email document wrapped in the fixed brand shell, plus a
// plain-text fallback. Composed HTML for persisted records is cached
// under newsletter:content:<id>:html.
type Composer struct {
	cache        cache.Store
	mediaRoot    string
	mediaURLPath string
	siteBaseURL  string
	ttl          time.Duration
}

// NewComposer creates a Composer. siteBaseURL may be empty; the base is
// then derived per call from the request, falling back to a local
// default.
func NewComposer(store cache.Store, mediaRoot, mediaURLPath, siteBaseURL string, ttl time.Duration) *Composer {
	return &Composer{
		cache:        store,
		mediaRoot:    mediaRoot,
		mediaURLPath: strings.TrimRight(mediaURLPath, "/"),
		siteBaseURL:  strings.TrimRight(strings.TrimSpace(siteBaseURL), "/"),
		ttl:          ttl,
	}
}

// ComposeHTML returns the complete standalone HTML document for the
// content. requestBaseURL is used only when no site URL is configured.
func (c *Composer) ComposeHTML(ctx context.Context, content EmailContent, requestBaseURL string) string {
	if content.ID == 0 {
		return c.compose(content, requestBaseURL)
	}

	key := cache.NewsletterHTMLKey(content.ID)
	composed, err := cache.GetOrSet(ctx, c.cache, key, c.ttl, func(context.Context) (string, error) {
		return c.compose(content, requestBaseURL), nil
	})
	if err != nil {
		return c.compose(content, requestBaseURL)
	}
	return composed
}

// PlainText returns the plain-text fallback for the content body.
func (c *Composer) PlainText(content EmailContent) string {
	return PlainBody(content.Body)
}

// Invalidate drops the cached composed HTML for a persisted record.
// Called on every save so edits become visible within one request.
func (c *Composer) Invalidate(ctx context.Context, id uint) {
	if id == 0 {
		return
	}
	if err := c.cache.Delete(ctx, cache.NewsletterHTMLKey(id)); err != nil {
		log.Printf("composer: failed to invalidate cache for content %d: %v", id, err)
	}
}

// Wrap places arbitrary body HTML inside the brand shell. Used by the
// operator notification emails, which share the newsletter look.
func (c *Composer) Wrap(subject, bodyHTML string) string {
	return emailShell(subject, bodyHTML)
}

func (c *Composer) compose(content EmailContent, requestBaseURL string) string {
	baseURL := c.resolveBaseURL(requestBaseURL)
	local := isLoopbackURL(baseURL)

	body := content.Body
	if body != "" {
		body = c.rewriteBodyImages(body, baseURL, local)
	}

	hero := c.heroMarkup(content, baseURL, local)

	return emailShell(content.Subject, hero+body)
}

func (c *Composer) resolveBaseURL(requestBaseURL string) string {
	if c.siteBaseURL != "" {
		return c.siteBaseURL
	}
	if trimmed := strings.TrimRight(strings.TrimSpace(requestBaseURL), "/"); trimmed != "" {
		return trimmed
	}
	return defaultBaseURL
}

// isLoopbackURL reports whether the base URL points at this machine, in
// which case linked images would be unreachable from a mail client and
// must be inlined instead.
func isLoopbackURL(baseURL string) bool {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return false
	}
	host := parsed.Hostname()
	if host == "localhost" {
		return true
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback()
	}
	return false
}

// rewriteBodyImages parses the body as an HTML fragment and rewrites
// every img: sources are inlined (local mode) or absolutized, explicit
// dimensions are dropped, and a fixed style is forced so email clients
// render consistently. On parse failure the body passes through
// unmodified.
func (c *Composer) rewriteBodyImages(body, baseURL string, local bool) string {
	parent := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(body), parent)
	if err != nil {
		log.Printf("composer: failed to parse body html: %v", err)
		return body
	}

	var buf bytes.Buffer
	for _, node := range nodes {
		c.rewriteImages(node, baseURL, local)
		if err := html.Render(&buf, node); err != nil {
			log.Printf("composer: failed to render body html: %v", err)
			return body
		}
	}
	return buf.String()
}

func (c *Composer) rewriteImages(node *html.Node, baseURL string, local bool) {
	if node.Type == html.ElementNode && node.DataAtom == atom.Img {
		c.rewriteImage(node, baseURL, local)
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		c.rewriteImages(child, baseURL, local)
	}
}

func (c *Composer) rewriteImage(img *html.Node, baseURL string, local bool) {
	src := attrValue(img, "src")
	// Images with no source or an already inlined data URI pass through
	// untouched, dimensions and styling included.
	if src == "" || strings.HasPrefix(src, "data:") {
		return
	}

	if local {
		// Missing files leave the source untouched so one broken
		// reference does not break the rest of the document.
		if inlined, err := c.inlineImage(src); err == nil {
			setAttr(img, "src", inlined)
		}
	} else if !strings.HasPrefix(src, "http") {
		setAttr(img, "src", baseURL+"/"+strings.TrimLeft(src, "/"))
	}

	removeAttr(img, "width")
	removeAttr(img, "height")
	setAttr(img, "style", bodyImageStyle)
}

// inlineImage reads a media file referenced by a body img src and
// returns it as a base64 data URI.
func (c *Composer) inlineImage(src string) (string, error) {
	rel := src
	if c.mediaURLPath != "" {
		rel = strings.Replace(rel, c.mediaURLPath+"/", "", 1)
	}
	rel = strings.Replace(rel, "media/", "", 1)
	rel = strings.TrimLeft(rel, "/")

	data, err := os.ReadFile(filepath.Join(c.mediaRoot, filepath.FromSlash(rel)))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("data:%s;base64,%s", mimeByExtension(rel), base64.StdEncoding.EncodeToString(data)), nil
}

func (c *Composer) heroMarkup(content EmailContent, baseURL string, local bool) string {
	if content.HeroImage == "" {
		return ""
	}

	imageURL := ""
	if local {
		// An unreadable file falls back to the URL form below so the
		// hero block still renders.
		data, err := os.ReadFile(filepath.Join(c.mediaRoot, filepath.FromSlash(content.HeroImage)))
		if err == nil {
			imageURL = fmt.Sprintf("data:image/jpeg;base64,%s", base64.StdEncoding.EncodeToString(data))
		} else {
			log.Printf("composer: failed to read hero image %s: %v", content.HeroImage, err)
		}
	}
	if imageURL == "" {
		imageURL = fmt.Sprintf("%s%s/%s", baseURL, c.mediaURLPath, strings.TrimLeft(content.HeroImage, "/"))
	}

	return fmt.Sprintf(
		`<div style="margin:0 0 20px 0;padding:0;"><img src="%s" alt="%s" style="%s" /></div>`,
		imageURL, stdhtml.EscapeString(content.Subject), heroImageStyle,
	)
}

func mimeByExtension(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}

// emailShell wraps body content in the fixed responsive table layout:
// a centered 600px white card on a light-gray background with the brand
// footer. The shell is deliberately not configurable per call.
func emailShell(subject, bodyContent string) string {
	escaped := stdhtml.EscapeString(subject)
	return `<!DOCTYPE html><html><head><meta charset="utf-8">` +
		`<meta name="viewport" content="width=device-width, initial-scale=1.0">` +
		`<title>` + escaped + `</title></head>` +
		`<body style="margin:0;padding:0;background-color:#f4f4f4;font-family:Arial,sans-serif;">` +
		`<table role="presentation" style="width:100%;border-collapse:collapse;background-color:#f4f4f4;">` +
		`<tr><td align="center" style="padding:20px 0;">` +
		`<table role="presentation" style="max-width:600px;width:100%;background-color:#ffffff;border-collapse:collapse;box-shadow:0 2px 4px rgba(0,0,0,0.1);">` +
		`<tr><td style="padding:30px;color:#333333;line-height:1.6;">` + bodyContent + `</td></tr>` +
		`<tr><td style="padding:20px 30px;background-color:#f9f9f9;text-align:center;color:#666666;font-size:12px;border-top:1px solid #eeeeee;">` +
		`<p style="margin:0 0 10px 0;">Corvidian Newsletter</p>` +
		`<p style="margin:0;"><a href="https://www.corvidian.io" style="color:#007bff;text-decoration:none;">www.corvidian.io</a></p>` +
		`</td></tr></table></td></tr></table></body></html>`
}

func attrValue(node *html.Node, name string) string {
	for _, attr := range node.Attr {
		if attr.Key == name {
			return attr.Val
		}
	}
	return ""
}

func setAttr(node *html.Node, name, value string) {
	for i := range node.Attr {
		if node.Attr[i].Key == name {
			node.Attr[i].Val = value
			return
		}
	}
	node.Attr = append(node.Attr, html.Attribute{Key: name, Val: value})
}

func removeAttr(node *html.Node, name string) {
	attrs := node.Attr[:0]
	for _, attr := range node.Attr {
		if attr.Key != name {
			attrs = append(attrs, attr)
		}
	}
	node.Attr = attrs
}
