package gdi

import "fmt"

// OpKind identifies a recorded drawing command.
type OpKind int

const (
	OpFill OpKind = iota
	OpText
)

// Op is a single recorded drawing command.
type Op struct {
	Kind  OpKind
	Rect  Rect // fill area, or clip for text
	Color Color
	X, Y  int
	Text  string
	Style TextStyle
}

func (op Op) String() string {
	switch op.Kind {
	case OpFill:
		return fmt.Sprintf("fill %s %s", op.Rect, op.Color.Hex())
	case OpText:
		return fmt.Sprintf("text (%d,%d) %q fg=%s bg=%s clip=%s",
			op.X, op.Y, op.Text, op.Style.Fg.Hex(), op.Style.Bg.Hex(), op.Rect)
	default:
		return "unknown"
	}
}

// Recorder records every command it receives and forwards it to Next when
// set.
type Recorder struct {
	Ops  []Op
	Next GraphicApi
}

func NewRecorder(next GraphicApi) *Recorder {
	return &Recorder{Next: next}
}

func (r *Recorder) FillRect(rect Rect, c Color) {
	r.Ops = append(r.Ops, Op{Kind: OpFill, Rect: rect, Color: c})
	if r.Next != nil {
		r.Next.FillRect(rect, c)
	}
}

func (r *Recorder) DrawText(x, y int, text string, st TextStyle, clip Rect) {
	r.Ops = append(r.Ops, Op{Kind: OpText, Rect: clip, X: x, Y: y, Text: text, Style: st})
	if r.Next != nil {
		r.Next.DrawText(x, y, text, st, clip)
	}
}

// Reset drops recorded commands.
func (r *Recorder) Reset() {
	r.Ops = r.Ops[:0]
}

// Fills returns the recorded fill commands in order.
func (r *Recorder) Fills() []Op {
	var out []Op
	for _, op := range r.Ops {
		if op.Kind == OpFill {
			out = append(out, op)
		}
	}
	return out
}
