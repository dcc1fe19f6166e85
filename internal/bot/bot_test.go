package bot

import (
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestNewBot(t *testing.T) {
	cfg := &Config{
		DiscordToken: "test-token",
	}

	b := NewBot(cfg)

	if b == nil {
		t.Fatal("expected bot to be created, got nil")
	}
	if b.config != cfg {
		t.Error("expected config to be stored")
	}
}

func TestBot_InitModules_InitializesModules(t *testing.T) {
	b := NewBot(&Config{DiscordToken: "test-token"})

	mod := &stubModule{name: "tracking"}
	b.modules = []Module{mod}

	if err := b.initModules(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !mod.initCalled {
		t.Error("expected Init to be called")
	}
}

func TestBot_InitModules_ReturnsInitError(t *testing.T) {
	b := NewBot(&Config{DiscordToken: "test-token"})

	expectedErr := errors.New("init failed")
	b.modules = []Module{&stubModule{name: "failing", initErr: expectedErr}}

	err := b.initModules()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
}

func TestBot_LoadModuleConfigs(t *testing.T) {
	b := NewBot(&Config{DiscordToken: "test-token"})

	plain := &stubModule{name: "plain"}
	configurable := &configurableStubModule{stubModule: stubModule{name: "configurable"}}
	b.modules = []Module{plain, configurable}

	if err := b.loadModuleConfigs(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !configurable.loadConfigCalled {
		t.Error("expected LoadConfig to be called on the configurable module")
	}
}

func TestBot_LoadModuleConfigs_ReturnsError(t *testing.T) {
	b := NewBot(&Config{DiscordToken: "test-token"})

	expectedErr := errors.New("bad config")
	b.modules = []Module{&configurableStubModule{
		stubModule:    stubModule{name: "failing"},
		loadConfigErr: expectedErr,
	}}

	err := b.loadModuleConfigs()
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
}

func TestBot_BuildHandlerMap(t *testing.T) {
	b := NewBot(&Config{DiscordToken: "test-token"})

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, r Responder) error {
		return nil
	}

	b.modules = []Module{
		&stubModule{
			name:     "mod1",
			handlers: map[string]InteractionHandler{"cmd1": handler},
		},
		&stubModule{
			name:     "mod2",
			handlers: map[string]InteractionHandler{"cmd2": handler},
		},
	}

	b.buildHandlerMap()

	if _, ok := b.handlers["cmd1"]; !ok {
		t.Error("expected cmd1 handler to be registered")
	}
	if _, ok := b.handlers["cmd2"]; !ok {
		t.Error("expected cmd2 handler to be registered")
	}
}

func TestBot_CollectCommands(t *testing.T) {
	b := NewBot(&Config{DiscordToken: "test-token"})

	b.modules = []Module{
		&stubModule{
			name:     "mod1",
			commands: []*discordgo.ApplicationCommand{{Name: "one"}, {Name: "two"}},
		},
		&stubModule{
			name:     "mod2",
			commands: []*discordgo.ApplicationCommand{{Name: "three"}},
		},
	}

	commands := b.collectCommands()
	if len(commands) != 3 {
		t.Fatalf("expected 3 commands, got %d", len(commands))
	}
}

func TestBot_Stop_ShutsDownModules(t *testing.T) {
	b := NewBot(&Config{DiscordToken: "test-token"})

	mod := &stubModule{name: "closing"}
	b.modules = []Module{mod}

	if err := b.Stop(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !mod.shutdownCalled {
		t.Error("expected Shutdown to be called")
	}
}
