package activity

import (
	"sort"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
)

const (
	ActiveClass = "ajax-status-active"
	ErrorClass  = "ajax-status-error"
)

type Indicator interface {
	Start()
	Stop()
	SetErrorState(on bool)
}

// Bar is an Indicator that keeps the CSS classes of the status element.
type Bar struct {
	mu      sync.Mutex
	classes mapset.Set[string]
	onClass func(classes []string)
}

// NewBar returns a stopped bar. onChange, if set, receives the sorted class
// list after every change.
func NewBar(onChange func(classes []string)) *Bar {
	return &Bar{
		classes: mapset.NewThreadUnsafeSet[string](),
		onClass: onChange,
	}
}

func (b *Bar) Start() { b.toggle(ActiveClass, true) }
func (b *Bar) Stop()  { b.toggle(ActiveClass, false) }
func (b *Bar) Running() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.classes.Contains(ActiveClass)
}

func (b *Bar) SetErrorState(on bool) { b.toggle(ErrorClass, on) }

func (b *Bar) ErrorState() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.classes.Contains(ErrorClass)
}

func (b *Bar) Classes() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sorted()
}

func (b *Bar) sorted() []string {
	out := b.classes.ToSlice()
	sort.Strings(out)
	return out
}

func (b *Bar) toggle(class string, on bool) {
	b.mu.Lock()
	var changed bool
	if on {
		changed = b.classes.Add(class)
	} else if b.classes.Contains(class) {
		b.classes.Remove(class)
		changed = true
	}
	classes := b.sorted()
	b.mu.Unlock()

	if changed && b.onClass != nil {
		b.onClass(classes)
	}
}
