package annotateview

import (
	"github.com/charmbracelet/bubbles/key"

	"slideset/internal/annotation"
)

// KeyMap binds keys to session transitions.
type KeyMap struct {
	Dermatoscopic key.Binding
	Clinical      key.Binding
	Macro         key.Binding
	Other         key.Binding
	Clear         key.Binding
	Commit        key.Binding
	Exit          key.Binding
}

// DefaultKeyMap returns the standard annotation bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Dermatoscopic: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "dermatoscopic")),
		Clinical:      key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clinical")),
		Macro:         key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "macro")),
		Other:         key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "other")),
		Clear:         key.NewBinding(key.WithKeys("backspace", "delete"), key.WithHelp("⌫", "clear")),
		Commit:        key.NewBinding(key.WithKeys("enter", " ", "space"), key.WithHelp("enter/space", "save")),
		Exit:          key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "exit")),
	}
}

func (k KeyMap) categoryBindings() []struct {
	binding  key.Binding
	category annotation.Category
} {
	return []struct {
		binding  key.Binding
		category annotation.Category
	}{
		{k.Dermatoscopic, annotation.CategoryDermatoscopic},
		{k.Clinical, annotation.CategoryClinical},
		{k.Macro, annotation.CategoryMacro},
		{k.Other, annotation.CategoryOther},
	}
}

func (k KeyMap) help() []key.Binding {
	return []key.Binding{k.Dermatoscopic, k.Clinical, k.Macro, k.Other, k.Clear, k.Commit, k.Exit}
}
