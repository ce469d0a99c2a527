package mathtex

import (
	"io"

	qt "github.com/valyala/quicktemplate"
)

// StreamFormula writes the generated markup for one formula.
func StreamFormula(qw *qt.Writer, tex, fontCache string) {
	qw.N().S(`<svg class="mjx-svg" data-font-cache="`)
	qw.E().S(fontCache)
	qw.N().S(`" role="img" aria-label="`)
	qw.E().S(tex)
	qw.N().S(`"><text>`)
	qw.E().S(tex)
	qw.N().S(`</text></svg>`)
}

func WriteFormula(w io.Writer, tex, fontCache string) {
	qw := qt.AcquireWriter(w)
	StreamFormula(qw, tex, fontCache)
	qt.ReleaseWriter(qw)
}

func Formula(tex, fontCache string) string {
	bb := qt.AcquireByteBuffer()
	WriteFormula(bb, tex, fontCache)
	s := string(bb.B)
	qt.ReleaseByteBuffer(bb)
	return s
}
