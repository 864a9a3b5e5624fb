package gdi

// Painter serializes access to a shared GraphicApi. Draws issued inside a
// paint session go straight through; paints registered with Defer run
// when the outermost session ends, after every other draw of that session.
type Painter struct {
	gd       GraphicApi
	depth    int
	deferred []deferredPaint
}

type deferredPaint struct {
	key string
	fn  func(GraphicApi)
}

func NewPainter(gd GraphicApi) *Painter {
	return &Painter{gd: gd}
}

// Graphics returns the underlying sink.
func (p *Painter) Graphics() GraphicApi { return p.gd }

// Active reports whether a paint session is open.
func (p *Painter) Active() bool { return p.depth > 0 }

// Pending reports whether a deferred paint is registered under key.
func (p *Painter) Pending(key string) bool {
	return p.index(key) >= 0
}

// Begin opens a paint session. Sessions nest; only the outermost End
// flushes deferred paints.
func (p *Painter) Begin() *PaintSession {
	p.depth++
	return &PaintSession{p: p}
}

func (p *Painter) index(key string) int {
	for i, d := range p.deferred {
		if d.key == key {
			return i
		}
	}
	return -1
}

func (p *Painter) flush() {
	for len(p.deferred) > 0 {
		d := p.deferred[0]
		p.deferred = p.deferred[1:]
		d.fn(p.gd)
	}
}

// PaintSession is the token held while drawing.
type PaintSession struct {
	p     *Painter
	ended bool
}

// Graphics returns the sink draws should go to.
func (s *PaintSession) Graphics() GraphicApi { return s.p.gd }

// Defer registers fn to run at the end of the outermost session. A later
// Defer with the same key replaces the earlier one in place.
func (s *PaintSession) Defer(key string, fn func(GraphicApi)) {
	if i := s.p.index(key); i >= 0 {
		s.p.deferred[i].fn = fn
		return
	}
	s.p.deferred = append(s.p.deferred, deferredPaint{key: key, fn: fn})
}

// Cancel withdraws the paint registered under key, if any.
func (s *PaintSession) Cancel(key string) {
	if i := s.p.index(key); i >= 0 {
		s.p.deferred = append(s.p.deferred[:i], s.p.deferred[i+1:]...)
	}
}

// End closes the session. Calling End twice is a no-op.
func (s *PaintSession) End() {
	if s.ended {
		return
	}
	s.ended = true
	s.p.depth--
	if s.p.depth == 0 {
		// Deferred paints may open sessions of their own; keep them flat.
		s.p.depth++
		s.p.flush()
		s.p.depth--
	}
}
