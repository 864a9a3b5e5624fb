// Package pattern classifies compliance capture rules.
//
// A rule string holds segments separated by Delimiter. A segment is either
// tagged, "$tags:body", or a bare body. Tags are comma-separated tokens,
// each a hyphen-joined list of sub-tokens:
//
//	$kbd:gpedit                keystroke capture
//	$exact-content,kbd-ocr:cmd keystroke and OCR capture
//	Bloc-notes                 OCR capture (untagged bodies default to OCR)
//	$ocm:10.10.46.0/24:3389    nothing, ocm is not a type
//
// Every function here is pure and safe for concurrent use.
package pattern

import "strings"

const (
	// Delimiter separates segments.
	Delimiter = '\x01'
	// Sentinel introduces a tag region.
	Sentinel = '$'

	KeywordKbd = "kbd"
	KeywordOCR = "ocr"
)

// Kind is the set of capture types a rule triggers.
type Kind uint8

const (
	KindKbd Kind = 1 << iota
	KindOCR

	KindNone Kind = 0
)

func (k Kind) Kbd() bool { return k&KindKbd != 0 }
func (k Kind) OCR() bool { return k&KindOCR != 0 }

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindKbd:
		return "kbd"
	case KindOCR:
		return "ocr"
	default:
		return "kbd,ocr"
	}
}

// Segment is one delimiter-separated unit of a rule string.
type Segment struct {
	// Raw is the segment with surrounding whitespace removed.
	Raw    string
	Tagged bool
	// Tags holds the sub-tokens of each comma-separated token.
	Tags [][]string
	Body string
}

// ParseSegment splits one segment into its tags and body. A leading
// sentinel without a following ':' is not a tag region, so the whole
// segment is a body.
func ParseSegment(s string) Segment {
	s = strings.TrimSpace(s)
	seg := Segment{Raw: s, Body: s}
	if len(s) == 0 || s[0] != Sentinel {
		return seg
	}
	region, body, ok := strings.Cut(s[1:], ":")
	if !ok {
		return seg
	}
	seg.Tagged = true
	seg.Body = body
	for token := range strings.SplitSeq(region, ",") {
		seg.Tags = append(seg.Tags, strings.Split(token, "-"))
	}
	return seg
}

// Segments splits spec on Delimiter. A spec without a delimiter is a
// single segment.
func Segments(spec string) []Segment {
	parts := strings.Split(spec, string(Delimiter))
	segs := make([]Segment, len(parts))
	for i, p := range parts {
		segs[i] = ParseSegment(p)
	}
	return segs
}

// IsBlank reports whether the segment holds nothing but whitespace.
func (s Segment) IsBlank() bool { return s.Raw == "" }

// Kinds returns what the segment triggers. Untagged segments trigger OCR;
// tagged ones trigger whatever type keywords their sub-tokens name.
// Unrecognized sub-tokens are ignored.
func (s Segment) Kinds() Kind {
	if s.IsBlank() {
		return KindNone
	}
	if !s.Tagged {
		return KindOCR
	}
	var k Kind
	for _, token := range s.Tags {
		for _, sub := range token {
			switch sub {
			case KeywordKbd:
				k |= KindKbd
			case KeywordOCR:
				k |= KindOCR
			}
		}
	}
	return k
}

// Classify returns the union of what every segment of spec triggers.
func Classify(spec string) Kind {
	var k Kind
	for _, seg := range Segments(spec) {
		k |= seg.Kinds()
	}
	return k
}

// HasKeyboardTrigger reports whether spec requires keystroke capture.
func HasKeyboardTrigger(spec string) bool { return Classify(spec).Kbd() }

// HasOCRTrigger reports whether spec requires OCR capture.
func HasOCRTrigger(spec string) bool { return Classify(spec).OCR() }

// HasAnyTrigger reports whether spec requires any capture at all.
func HasAnyTrigger(spec string) bool { return Classify(spec) != KindNone }

// Join builds a spec from individual segments.
func Join(segments ...string) string {
	return strings.Join(segments, string(Delimiter))
}
