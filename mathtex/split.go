package mathtex

import "strings"

type segment struct {
	text string
	math bool
}

// split cuts text into literal and formula segments. An opening delimiter
// without a matching close, or with nothing in between, stays literal.
func split(text string, cfg Config) []segment {
	var (
		segs []segment
		lit  strings.Builder
	)
	flush := func() {
		if lit.Len() > 0 {
			segs = append(segs, segment{text: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(text); {
		if cfg.ProcessEscapes && text[i] == '\\' {
			if d, ok := openAt(text, i+1, cfg); ok {
				lit.WriteString(d.Open)
				i += 1 + len(d.Open)
				continue
			}
		}
		d, ok := openAt(text, i, cfg)
		if !ok {
			lit.WriteByte(text[i])
			i++
			continue
		}
		start := i + len(d.Open)
		end := strings.Index(text[start:], d.Close)
		if end <= 0 {
			lit.WriteString(d.Open)
			i = start
			continue
		}
		flush()
		segs = append(segs, segment{text: text[start : start+end], math: true})
		i = start + end + len(d.Close)
	}
	flush()
	return segs
}

func openAt(text string, i int, cfg Config) (Delimiters, bool) {
	for _, d := range cfg.InlineMath {
		if d.Open != "" && strings.HasPrefix(text[i:], d.Open) {
			return d, true
		}
	}
	return Delimiters{}, false
}

func hasMath(segs []segment) bool {
	for _, s := range segs {
		if s.math {
			return true
		}
	}
	return false
}
