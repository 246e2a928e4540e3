package viewer

import (
	"unicode"

	"golang.org/x/mobile/event/key"

	"github.com/example/morningpaint/internal/brush"
)

// KeyShortcut is one key combination.
type KeyShortcut struct {
	Rune      rune
	Code      key.Code
	Modifiers key.Modifiers
}

// keymap resolves key events to actions.
type keymap struct {
	actions map[KeyShortcut]string
	fns     map[string]func()
}

func newKeymap() *keymap {
	return &keymap{actions: map[KeyShortcut]string{}, fns: map[string]func(){}}
}

func (k *keymap) register(name string, keys []KeyShortcut, fn func()) {
	k.fns[name] = fn
	for _, sc := range keys {
		k.actions[sc] = name
	}
}

// handle runs the action bound to e, reporting whether one ran.
func (k *keymap) handle(e key.Event) bool {
	if e.Direction != key.DirPress {
		return false
	}
	mods := e.Modifiers &^ key.ModShift
	candidates := []KeyShortcut{
		{Rune: unicode.ToLower(e.Rune), Modifiers: mods},
		{Code: e.Code, Modifiers: mods},
	}
	for _, sc := range candidates {
		if sc.Rune == 0 && sc.Code == 0 {
			continue
		}
		if name, ok := k.actions[sc]; ok {
			k.fns[name]()
			return true
		}
	}
	return false
}

// bindSession installs the painter shortcuts. Digits pick brushes in
// Kinds order: 1 is the first brush, 0 the tenth, and the fill brush is F.
func bindSession(k *keymap, s *session, quit func()) {
	ctrl := key.ModControl
	k.register("undo", []KeyShortcut{{Rune: 'z', Modifiers: ctrl}}, s.undo)
	k.register("cancel", []KeyShortcut{{Code: key.CodeEscape}}, s.cancel)
	k.register("reset", []KeyShortcut{{Rune: 'r', Modifiers: ctrl}}, s.reset)
	k.register("save", []KeyShortcut{{Rune: 's', Modifiers: ctrl}}, s.save)
	k.register("export", []KeyShortcut{{Rune: 'e', Modifiers: ctrl}}, func() {
		if _, err := s.exportImage(); err != nil {
			s.say("export: %v", err)
		}
	})
	k.register("copy", []KeyShortcut{{Rune: 'c', Modifiers: ctrl}}, func() {
		if err := s.copyImage(); err != nil {
			s.say("copy: %v", err)
		}
	})
	k.register("paste", []KeyShortcut{{Rune: 'v', Modifiers: ctrl}}, func() {
		if err := s.pasteReference(); err != nil {
			s.say("paste: %v", err)
		}
	})
	k.register("smaller", []KeyShortcut{{Rune: '['}}, func() { s.resize(-sizeStep) })
	k.register("larger", []KeyShortcut{{Rune: ']'}}, func() { s.resize(sizeStep) })
	k.register("paper", []KeyShortcut{{Rune: 'p'}}, s.cyclePaper)
	k.register("zoomin", []KeyShortcut{{Rune: '='}, {Rune: '+'}}, func() { s.zoom(0, 0, true) })
	k.register("zoomout", []KeyShortcut{{Rune: '-'}}, func() { s.zoom(0, 0, false) })
	k.register("quit", []KeyShortcut{{Rune: 'q', Modifiers: ctrl}}, quit)

	digits := "1234567890"
	i := 0
	for _, kind := range brush.Kinds() {
		if kind == brush.Fill {
			k.register("brush-fill", []KeyShortcut{{Rune: 'f'}}, func() { s.selectBrush(brush.Fill) })
			continue
		}
		if i >= len(digits) {
			break
		}
		kind := kind
		k.register("brush-"+kind.String(), []KeyShortcut{{Rune: rune(digits[i])}}, func() { s.selectBrush(kind) })
		i++
	}
}
