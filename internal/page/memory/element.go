package memory

import (
	"context"
	"errors"
	"slices"
)

var ErrDetached = errors.New("element is detached")

type Element struct {
	doc       *Document
	parent    *Element
	selectors []string
	classes   map[string]bool
	styles    map[string]string
	clicks    int
	onClick   func()
	removed   bool
}

// OnClick registers a side effect run after every click.
func (e *Element) OnClick(fn func()) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	e.onClick = fn
}

func (e *Element) AddClass(class string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	e.classes[class] = true
}

func (e *Element) RemoveClass(class string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	delete(e.classes, class)
}

// Style returns the inline style property, "" when unset.
func (e *Element) Style(property string) string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	return e.styles[property]
}

func (e *Element) Clicks() int {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	return e.clicks
}

func (e *Element) Click(_ context.Context) error {
	e.doc.mu.Lock()
	if e.removed {
		e.doc.mu.Unlock()
		return ErrDetached
	}
	e.clicks++
	fn := e.onClick
	e.doc.mu.Unlock()

	if fn != nil {
		fn()
	}

	return nil
}

func (e *Element) HasClass(_ context.Context, class string) (bool, error) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	return e.classes[class], nil
}

func (e *Element) SetStyle(_ context.Context, property, value string) error {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	if e.removed {
		return ErrDetached
	}
	e.styles[property] = value

	return nil
}

func (e *Element) matchesLocked(selector string) bool {
	for _, s := range splitSelectorList(selector) {
		if slices.Contains(e.selectors, s) {
			return true
		}
	}

	return false
}

func (e *Element) hasAncestorLocked(ancestor *Element) bool {
	for p := e.parent; p != nil; p = p.parent {
		if p == ancestor {
			return true
		}
	}

	return false
}
