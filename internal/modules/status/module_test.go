package status

import (
	"testing"

	"github.com/quaverbot/quaver/internal/bot"
)

func TestModule_CommandsAndHandlersMatch(t *testing.T) {
	m := &Module{}

	handlers := m.CommandHandlers()
	for _, cmd := range m.Commands() {
		if _, ok := handlers[cmd.Name]; !ok {
			t.Errorf("command %q has no handler", cmd.Name)
		}
	}
}

func TestHandlePing(t *testing.T) {
	m := &Module{}
	responder := &bot.MockResponder{}

	if err := m.handlePing(nil, nil, responder); err != nil {
		t.Fatalf("handlePing failed: %v", err)
	}

	if responder.LastResponse == nil || responder.LastResponse.Data.Content != "Pong!" {
		t.Error("expected Pong! response")
	}
}

func TestHandleStatus(t *testing.T) {
	m := &Module{}
	if err := m.Init(bot.ModuleDependencies{}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	responder := &bot.MockResponder{}

	if err := m.handleStatus(nil, nil, responder); err != nil {
		t.Fatalf("handleStatus failed: %v", err)
	}

	if responder.LastResponse == nil || len(responder.LastResponse.Data.Embeds) != 1 {
		t.Fatal("expected a status embed")
	}
	if len(responder.LastResponse.Data.Embeds[0].Fields) != 3 {
		t.Error("expected uptime, goroutine and heap fields")
	}
}
