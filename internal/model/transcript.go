package model

import "encoding/json"

// TranscriptMessage is one line of a session transcript.
type TranscriptMessage struct {
	Role    string `json:"role"`
	Type    string `json:"type,omitempty"`
	Content []ContentBlock
}

// ContentBlock is a sum type over a transcript message's content: either a
// single text block (content was a plain string) or a list of typed blocks.
// Only blocks with Type == "text" contribute text.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// UnmarshalJSON accepts content as either a bare string or a list of
// {type, text?} objects, matching real transcript formats.
func (m *TranscriptMessage) UnmarshalJSON(data []byte) error {
	var raw struct {
		Role    string          `json:"role"`
		Type    string          `json:"type,omitempty"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.Role = raw.Role
	m.Type = raw.Type
	m.Content = nil

	if len(raw.Content) == 0 {
		return nil
	}

	var asString string
	if err := json.Unmarshal(raw.Content, &asString); err == nil {
		if asString != "" {
			m.Content = []ContentBlock{{Type: "text", Text: asString}}
		}
		return nil
	}

	var asBlocks []ContentBlock
	if err := json.Unmarshal(raw.Content, &asBlocks); err == nil {
		m.Content = asBlocks
		return nil
	}

	// Unknown shape: soft-fail, leave Content empty.
	return nil
}

// Text concatenates all text blocks of the message, in order.
func (m TranscriptMessage) Text() string {
	var out []byte
	for _, b := range m.Content {
		if b.Type != "text" {
			continue
		}
		if len(out) > 0 {
			out = append(out, ' ')
		}
		out = append(out, b.Text...)
	}
	return string(out)
}
