package blocks

import (
	"fmt"
	"strings"
)

// Portable text type names.
const (
	TypeBlock      = "block"
	TypeSpan       = "span"
	TypeCode       = "code"
	TypeLink       = "link"
	legacyCodeType = "codeBlock"
)

// PortableSpan is a child span of a portable text block.
type PortableSpan struct {
	Type  string   `json:"_type"`
	Key   string   `json:"_key"`
	Text  string   `json:"text"`
	Marks []string `json:"marks"`
}

// MarkDef is an annotation referenced from span marks by key.
type MarkDef struct {
	Key  string `json:"_key"`
	Type string `json:"_type"`
	Href string `json:"href,omitempty"`
}

// PortableBlock is one element of a portable text array. Text blocks use
// Style, ListItem, Level, Children and MarkDefs; code blocks use Language,
// Code and Filename.
type PortableBlock struct {
	Type     string         `json:"_type"`
	Key      string         `json:"_key"`
	Style    string         `json:"style,omitempty"`
	ListItem string         `json:"listItem,omitempty"`
	Level    int            `json:"level,omitempty"`
	Children []PortableSpan `json:"children,omitempty"`
	MarkDefs []MarkDef      `json:"markDefs,omitempty"`
	Language string         `json:"language,omitempty"`
	Code     string         `json:"code,omitempty"`
	Filename string         `json:"filename,omitempty"`
}

// ToPortableText encodes blocks in the CMS rich-text shape.
func ToPortableText(blks []Block) []PortableBlock {
	out := make([]PortableBlock, 0, len(blks))
	for _, b := range blks {
		if b.Kind == KindCode {
			out = append(out, PortableBlock{
				Type:     TypeCode,
				Key:      b.Key,
				Language: b.Language,
				Code:     b.Code,
				Filename: b.Filename,
			})
			continue
		}

		pb := PortableBlock{Type: TypeBlock, Key: b.Key, Style: "normal"}
		switch b.Kind {
		case KindHeading:
			pb.Style = fmt.Sprintf("h%d", b.Level)
		case KindBullet:
			pb.ListItem = "bullet"
			pb.Level = 1
		}

		links := 0
		for i, s := range b.Spans {
			child := PortableSpan{
				Type:  TypeSpan,
				Key:   fmt.Sprintf("%s-s%d", b.Key, i),
				Text:  s.Text,
				Marks: []string{},
			}
			for _, m := range s.Marks {
				if m == MarkLink {
					defKey := fmt.Sprintf("%s-l%d", b.Key, links)
					links++
					pb.MarkDefs = append(pb.MarkDefs, MarkDef{Key: defKey, Type: TypeLink, Href: s.Href})
					child.Marks = append(child.Marks, defKey)
					continue
				}
				child.Marks = append(child.Marks, string(m))
			}
			pb.Children = append(pb.Children, child)
		}
		out = append(out, pb)
	}
	return out
}

// FromPortableText decodes CMS rich text back into blocks. Unknown block
// types are skipped. Both "code" and the older "codeBlock" type name decode
// to code blocks.
func FromPortableText(pbs []PortableBlock) []Block {
	out := make([]Block, 0, len(pbs))
	for _, pb := range pbs {
		switch pb.Type {
		case TypeCode, legacyCodeType:
			out = append(out, Block{
				Key:      pb.Key,
				Kind:     KindCode,
				Language: NormalizeLanguage(pb.Language),
				Code:     pb.Code,
				Filename: pb.Filename,
			})
		case TypeBlock:
			out = append(out, fromTextBlock(pb))
		}
	}
	return out
}

func fromTextBlock(pb PortableBlock) Block {
	b := Block{Key: pb.Key, Kind: KindParagraph}
	if pb.ListItem != "" {
		b.Kind = KindBullet
	} else if level, ok := headingLevel(pb.Style); ok {
		b.Kind = KindHeading
		b.Level = level
	}

	defs := make(map[string]MarkDef, len(pb.MarkDefs))
	for _, d := range pb.MarkDefs {
		defs[d.Key] = d
	}

	for _, c := range pb.Children {
		s := Span{Text: c.Text}
		for _, m := range c.Marks {
			if d, ok := defs[m]; ok {
				if d.Type == TypeLink {
					s.Marks = append(s.Marks, MarkLink)
					s.Href = d.Href
				}
				continue
			}
			s.Marks = append(s.Marks, Mark(m))
		}
		b.Spans = append(b.Spans, s)
	}
	return b
}

func headingLevel(style string) (int, bool) {
	if !strings.HasPrefix(style, "h") || len(style) != 2 {
		return 0, false
	}
	level := int(style[1] - '0')
	if level < 1 || level > 6 {
		return 0, false
	}
	return level, true
}
