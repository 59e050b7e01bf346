package events

import (
	"bytes"
	"sort"
	"strings"

	"CoinBot/core"
	"CoinBot/core/matrix"

	"github.com/thoas/go-funk"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/net/html"
)

const matrixToPrefix = "https://matrix.to/#/"

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Message is an outgoing text message written in Markdown.
type Message struct {
	Body string
	// Mentions are user ids that get linked in the HTML and notified.
	Mentions []string
}

// Text is shorthand for a Message with mentions.
func Text(body string, mentions ...string) Message {
	return Message{Body: body, Mentions: mentions}
}

// MatrixToLink is the permalink for a user id.
func MatrixToLink(userID string) string {
	return matrixToPrefix + userID
}

// renderHTML converts Markdown to HTML and links every mentioned user id.
func renderHTML(body string, mentions []string) string {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(body), &buf); err != nil {
		core.LogErrorF("Failed to render markdown: %s", err)
		return html.EscapeString(body)
	}
	rendered := strings.TrimSuffix(buf.String(), "\n")
	if len(mentions) == 0 {
		return rendered
	}

	// longest first so @al:x never matches inside @al:x.org
	ids := funk.UniqString(mentions)
	sort.Slice(ids, func(i, j int) bool { return len(ids[i]) > len(ids[j]) })
	var pairs []string
	for _, id := range ids {
		escaped := html.EscapeString(id)
		pairs = append(pairs, escaped, `<a href="`+MatrixToLink(id)+`">`+escaped+`</a>`)
	}
	return linkText(rendered, strings.NewReplacer(pairs...))
}

// Text inside these elements is left alone when linking mentions.
var unlinkedElements = []string{"a", "code", "pre"}

// linkText applies replacer to the text nodes of rendered only, skipping
// existing links and code.
func linkText(rendered string, replacer *strings.Replacer) string {
	var out strings.Builder
	z := html.NewTokenizer(strings.NewReader(rendered))
	depth := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return out.String()
		}
		if tt == html.TextToken && depth == 0 {
			out.WriteString(replacer.Replace(string(z.Raw())))
			continue
		}
		out.Write(z.Raw())
		switch tt {
		case html.StartTagToken:
			if name, _ := z.TagName(); funk.ContainsString(unlinkedElements, string(name)) {
				depth++
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); funk.ContainsString(unlinkedElements, string(name)) && depth > 0 {
				depth--
			}
		}
	}
}

// content renders m as a notice.
func (m Message) content() *matrix.MessageContent {
	content := &matrix.MessageContent{
		MsgType:       matrix.MsgNotice,
		Body:          m.Body,
		Format:        matrix.FormatHTML,
		FormattedBody: renderHTML(m.Body, m.Mentions),
	}
	if len(m.Mentions) > 0 {
		content.Mentions = &matrix.Mentions{UserIDs: funk.UniqString(m.Mentions)}
	} else {
		content.Mentions = &matrix.Mentions{}
	}
	return content
}

// Media is an image or sticker to send by mxc:// URL.
type Media struct {
	URL     string
	Name    string
	Info    *matrix.MediaInfo
	Sticker bool
}

func (m Media) eventType() string {
	if m.Sticker {
		return matrix.EventSticker
	}
	return matrix.EventMessage
}

func (m Media) content() *matrix.MessageContent {
	content := &matrix.MessageContent{Body: m.Name, URL: m.URL, Info: m.Info}
	if !m.Sticker {
		content.MsgType = matrix.MsgImage
	}
	return content
}
