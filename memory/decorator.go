package memory

import (
	"cmp"
	"slices"
	"sync"

	"github.com/fwojciec/glowrays"
)

// Compile-time interface verification.
var _ glowrays.BatchDecorator = (*Decorator)(nil)

// Decoration is a handle created by Decorator.
type Decoration struct {
	id    int
	style glowrays.GlowStyle
}

// Style returns the glow style of the decoration.
func (d *Decoration) Style() glowrays.GlowStyle {
	return d.style
}

// ID returns the creation sequence number of the decoration.
func (d *Decoration) ID() int {
	return d.id
}

// Applied is a live decoration as seen by one editor.
type Applied struct {
	ID     int
	Style  glowrays.GlowStyle
	Ranges []glowrays.Range
}

type placement struct {
	uri    string
	ranges []glowrays.Range
}

// DecoratorOption configures a Decorator.
type DecoratorOption func(*Decorator)

// WithNotify sets a callback invoked after every change to the table, or
// once per Batch, for hosts that need to redraw.
func WithNotify(fn func()) DecoratorOption {
	return func(d *Decorator) {
		d.notify = fn
	}
}

// Decorator keeps a table of live decorations and where they are applied.
// It is safe for concurrent use.
type Decorator struct {
	notify func()

	mu       sync.RWMutex
	nextID   int
	live     map[*Decoration][]placement
	created  int
	disposed int
}

// NewDecorator creates an empty decoration table.
func NewDecorator(opts ...DecoratorOption) *Decorator {
	d := &Decorator{live: make(map[*Decoration][]placement)}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// CreateDecoration allocates a new live decoration.
func (d *Decorator) CreateDecoration(style glowrays.GlowStyle) glowrays.Decoration {
	d.mu.Lock()
	dec := d.create(style)
	d.mu.Unlock()
	return dec
}

// ApplyDecoration sets the ranges dec covers in editor. Decorations not
// created by this Decorator, or already disposed, are ignored.
func (d *Decorator) ApplyDecoration(dec glowrays.Decoration, editor glowrays.Editor, ranges []glowrays.Range) {
	d.mu.Lock()
	ok := d.apply(dec, editor, ranges)
	d.mu.Unlock()
	if ok {
		d.changed()
	}
}

// Dispose releases dec. Disposing twice is a no-op.
func (d *Decorator) Dispose(dec glowrays.Decoration) {
	d.mu.Lock()
	ok := d.dispose(dec)
	d.mu.Unlock()
	if ok {
		d.changed()
	}
}

// Batch runs fn with the table locked, so readers see either none or all of
// its changes, and notifies at most once afterwards. fn must only use the
// Decorator it is given.
func (d *Decorator) Batch(fn func(glowrays.Decorator)) {
	tx := &batch{d: d}
	d.mu.Lock()
	func() {
		defer d.mu.Unlock()
		fn(tx)
	}()
	if tx.dirty {
		d.changed()
	}
}

func (d *Decorator) create(style glowrays.GlowStyle) *Decoration {
	d.nextID++
	dec := &Decoration{id: d.nextID, style: style}
	d.live[dec] = nil
	d.created++
	return dec
}

func (d *Decorator) apply(dec glowrays.Decoration, editor glowrays.Editor, ranges []glowrays.Range) bool {
	md, ok := dec.(*Decoration)
	if !ok {
		return false
	}
	places, ok := d.live[md]
	if !ok {
		return false
	}
	uri := editor.Document().URI()
	replaced := false
	for i := range places {
		if places[i].uri == uri {
			places[i].ranges = ranges
			replaced = true
		}
	}
	if !replaced {
		places = append(places, placement{uri: uri, ranges: ranges})
	}
	d.live[md] = places
	return true
}

func (d *Decorator) dispose(dec glowrays.Decoration) bool {
	md, ok := dec.(*Decoration)
	if !ok {
		return false
	}
	if _, ok := d.live[md]; !ok {
		return false
	}
	delete(d.live, md)
	d.disposed++
	return true
}

// batch is the Decorator handed to Batch callbacks. The table lock is held
// by Batch for its whole lifetime.
type batch struct {
	d     *Decorator
	dirty bool
}

func (b *batch) CreateDecoration(style glowrays.GlowStyle) glowrays.Decoration {
	return b.d.create(style)
}

func (b *batch) ApplyDecoration(dec glowrays.Decoration, editor glowrays.Editor, ranges []glowrays.Range) {
	if b.d.apply(dec, editor, ranges) {
		b.dirty = true
	}
}

func (b *batch) Dispose(dec glowrays.Decoration) {
	if b.d.dispose(dec) {
		b.dirty = true
	}
}

// Live returns the number of decorations created and not yet disposed.
func (d *Decorator) Live() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.live)
}

// Created returns the total number of decorations ever created.
func (d *Decorator) Created() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.created
}

// Disposed returns the total number of decorations disposed.
func (d *Decorator) Disposed() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.disposed
}

// Snapshot returns the live decorations applied to the editor showing uri,
// ordered by creation.
func (d *Decorator) Snapshot(uri string) []Applied {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []Applied
	for dec, places := range d.live {
		for _, p := range places {
			if p.uri == uri {
				out = append(out, Applied{ID: dec.id, Style: dec.style, Ranges: p.ranges})
			}
		}
	}
	slices.SortFunc(out, func(a, b Applied) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

func (d *Decorator) changed() {
	if d.notify != nil {
		d.notify()
	}
}
