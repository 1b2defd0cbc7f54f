// Package blockkit renders categorized digest data and webhook events
// into Block-Kit style message payloads. Everything here is pure
// formatting; delivery lives in infrastructure.
package blockkit

type TextObject struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

type Block struct {
	Type     string       `json:"type"`
	Text     *TextObject  `json:"text,omitempty"`
	Elements []TextObject `json:"elements,omitempty"`
}

type Attachment struct {
	Color  string  `json:"color,omitempty"`
	Blocks []Block `json:"blocks,omitempty"`
}

// Message is the outbound chat payload: a fallback text line, a block
// list, and optional colored attachment groupings.
type Message struct {
	Text        string       `json:"text"`
	Blocks      []Block      `json:"blocks,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

func Header(text string) Block {
	return Block{
		Type: "header",
		Text: &TextObject{Type: "plain_text", Text: Truncate(text, headerMaxLen), Emoji: true},
	}
}

func Section(mrkdwn string) Block {
	return Block{
		Type: "section",
		Text: &TextObject{Type: "mrkdwn", Text: Truncate(mrkdwn, textMaxLen)},
	}
}

func Context(elements ...string) Block {
	objects := make([]TextObject, 0, len(elements))
	for _, element := range elements {
		objects = append(objects, TextObject{Type: "mrkdwn", Text: Truncate(element, textMaxLen)})
	}
	return Block{Type: "context", Elements: objects}
}

func Divider() Block {
	return Block{Type: "divider"}
}
