package pattern

import "fmt"

// Modifiers are the match modifiers a tag may carry besides a type.
var Modifiers = []string{"exact", "content", "regex"}

func isModifier(s string) bool {
	for _, m := range Modifiers {
		if s == m {
			return true
		}
	}
	return false
}

// Issue is a finding reported by Lint.
type Issue struct {
	// Segment is the index of the offending segment.
	Segment int
	Token   string
	Message string
}

func (i Issue) String() string {
	if i.Token == "" {
		return fmt.Sprintf("segment %d: %s", i.Segment, i.Message)
	}
	return fmt.Sprintf("segment %d: %q: %s", i.Segment, i.Token, i.Message)
}

// Lint reports likely misconfigurations in spec. It never changes what
// Classify decides: a segment flagged here is still evaluated as written.
func Lint(spec string) []Issue {
	var issues []Issue
	for i, seg := range Segments(spec) {
		if seg.IsBlank() {
			if spec != "" {
				issues = append(issues, Issue{Segment: i, Message: "empty segment"})
			}
			continue
		}
		if !seg.Tagged {
			continue
		}
		for _, token := range seg.Tags {
			for _, sub := range token {
				switch {
				case sub == "":
					issues = append(issues, Issue{Segment: i, Message: "empty tag"})
				case sub == KeywordKbd, sub == KeywordOCR, isModifier(sub):
				default:
					issues = append(issues, Issue{Segment: i, Token: sub, Message: "unknown tag"})
				}
			}
		}
		if seg.Kinds() == KindNone {
			issues = append(issues, Issue{Segment: i, Message: "no kbd or ocr type, rule is ignored"})
		}
		if seg.Body == "" {
			issues = append(issues, Issue{Segment: i, Message: "empty pattern"})
		}
	}
	return issues
}
