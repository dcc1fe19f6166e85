package music_player

import (
	"testing"
)

func TestModule_CommandsAndHandlersMatch(t *testing.T) {
	m := &Module{}

	handlers := m.CommandHandlers()
	for _, cmd := range m.Commands() {
		if _, ok := handlers[cmd.Name]; !ok {
			t.Errorf("command %q has no handler", cmd.Name)
		}
	}
	if len(handlers) != len(m.Commands()) {
		t.Errorf("%d handlers for %d commands", len(handlers), len(m.Commands()))
	}
}

func TestModule_Name(t *testing.T) {
	m := &Module{}
	if m.Name() != "music_player" {
		t.Errorf("unexpected module name %q", m.Name())
	}
}
