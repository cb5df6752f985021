package main

import "testing"

func TestServeCmdFlags(t *testing.T) {
	cmd := newServeCmd()
	for _, name := range []string{"config", "listen-ip", "request-port", "notify-port", "controller-addr", "no-lockstep", "log-format", "log-level", "log-every"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("Expected serve flag --%s", name)
		}
	}
}

func TestServeSubcommands(t *testing.T) {
	cmd := newServeCmd()
	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	if !names["validate-config"] || !names["print-default-config"] {
		t.Errorf("Missing serve subcommands, got %v", names)
	}
}

func TestClientCmdStructure(t *testing.T) {
	cmd := newClientCmd()
	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	if !names["read"] || !names["write"] {
		t.Errorf("Expected read and write subcommands, got %v", names)
	}
	if cmd.PersistentFlags().Lookup("addr") == nil {
		t.Error("Expected persistent --addr flag")
	}
}

func TestClientReadRequiresArgs(t *testing.T) {
	cmd := newClientCmd()
	cmd.SetArgs([]string{"read"})
	if err := cmd.Execute(); err == nil {
		t.Error("Expected error for read without signal names")
	}
}
