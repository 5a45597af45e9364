package turn

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/invopop/jsonschema"
)

// ErrNotEnvelope is returned when data is not a structured content envelope.
var ErrNotEnvelope = errors.New("turn: not a content envelope")

// Encode serializes content as a flat JSON object with a "type" tag next to
// the variant's own fields.
func Encode(c Content) ([]byte, error) {
	body, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encoding %s content: %w", c.Kind(), err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("encoding %s content: %w", c.Kind(), err)
	}
	tag, _ := json.Marshal(c.Kind())
	fields["type"] = tag
	return json.Marshal(fields)
}

// Decode parses an envelope. Anything that is not a JSON object with a known
// "type" tag yields ErrNotEnvelope.
func Decode(data []byte) (Content, error) {
	var head struct {
		Type Kind `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotEnvelope, err)
	}

	var c Content
	var err error
	switch head.Type {
	case KindText:
		c, err = decodeAs[Text](data)
	case KindThinking:
		c, err = decodeAs[Thinking](data)
	case KindDisambiguation:
		c, err = decodeAs[Disambiguation](data)
	case KindPTORequest:
		c, err = decodeAs[PTORequest](data)
	case KindInsuranceSelection:
		c, err = decodeAs[InsuranceSelection](data)
	case KindRecordCard:
		c, err = decodeAs[RecordCard](data)
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrNotEnvelope, head.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotEnvelope, err)
	}
	return c, nil
}

func decodeAs[T Content](data []byte) (Content, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// DecodeOrText tries the envelope first and falls back to treating raw as
// plain text.
func DecodeOrText(raw string) Content {
	c, err := Decode([]byte(raw))
	if err != nil {
		return Text{Body: raw}
	}
	return c
}

// Schema describes every envelope variant as a oneOf.
func Schema() *jsonschema.Schema {
	r := &jsonschema.Reflector{DoNotReference: true, ExpandedStruct: true}
	variants := []Content{Text{}, Thinking{}, Disambiguation{}, PTORequest{}, InsuranceSelection{}, RecordCard{}}

	root := &jsonschema.Schema{
		Version:     jsonschema.Version,
		Title:       "Structured turn content",
		Description: "Assistant turn content envelope; the type field selects the variant.",
	}
	for _, v := range variants {
		s := r.Reflect(v)
		s.Version = ""
		s.Title = string(v.Kind())
		s.Properties.Set("type", &jsonschema.Schema{Type: "string", Const: string(v.Kind())})
		s.Required = append([]string{"type"}, s.Required...)
		root.OneOf = append(root.OneOf, s)
	}
	return root
}
