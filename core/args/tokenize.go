package args

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Tokens are the words of a command after its name. Mentions holds the user
// ids of matrix.to links in the HTML body, in document order; Text holds the
// remaining words.
type Tokens struct {
	Text     []string
	Mentions []string
}

// Plain builds Tokens with text tokens only.
func Plain(text ...string) Tokens {
	return Tokens{Text: text}
}

// Command is a message split into its lowercased name and the tokens after it.
type Command struct {
	Name   string
	Tokens Tokens
}

// StripReplyFallback removes the quoted "> " lines that some clients put at
// the top of a reply's plain body.
func StripReplyFallback(body string) string {
	if !strings.HasPrefix(body, "> ") {
		return body
	}
	lines := strings.Split(body, "\n")
	i := 0
	for i < len(lines) && strings.HasPrefix(lines[i], ">") {
		i++
	}
	return strings.TrimSpace(strings.Join(lines[i:], "\n"))
}

// Tokenize splits a message into a command. The HTML body is preferred when
// present so mentions can be bound to User arguments. ok is false when the
// message does not start with prefix or names no command.
func Tokenize(body, formattedBody, prefix string) (cmd Command, ok bool) {
	if formattedBody != "" {
		text, mentions := scanHTML(formattedBody)
		if cmd, ok = split(text, prefix); ok {
			cmd.Tokens.Mentions = mentions
			return cmd, true
		}
	}
	return split(StripReplyFallback(body), prefix)
}

func split(text, prefix string) (Command, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(text), prefix)
	if !ok {
		return Command{}, false
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return Command{}, false
	}
	return Command{Name: strings.ToLower(fields[0]), Tokens: Tokens{Text: fields[1:]}}, true
}

// scanHTML is the first pass: it collects user mention links and returns the
// text with those links and any reply fallback removed.
func scanHTML(fragment string) (string, []string) {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return "", nil
	}
	var (
		text     strings.Builder
		mentions []string
	)
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			text.WriteString(n.Data)
			return
		case html.ElementNode:
			if n.Data == "mx-reply" {
				return
			}
			switch n.DataAtom {
			case atom.A:
				if id, ok := userReference(attr(n, "href")); ok {
					mentions = append(mentions, id)
					text.WriteString(" ")
					return
				}
			case atom.Br, atom.P, atom.Div, atom.Li, atom.Blockquote:
				text.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return text.String(), mentions
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
