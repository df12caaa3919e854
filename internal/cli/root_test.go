package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testCLI() *CLI {
	return New(io.Discard, LogInfo)
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := testCLI().RootCommand()

	want := []string{"generate", "graph", "catalog", "designs", "serve", "cache", "completion"}
	for _, name := range want {
		found := false
		for _, cmd := range root.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("root command missing subcommand %q", name)
		}
	}
}

func TestGenerateEndToEnd(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "design.json")
	changelog := filepath.Join(dir, "CHANGELOG")

	root := testCLI().RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{
		"generate",
		"--no-cache", "--no-store",
		"--catalog", "", // degrade to unknown verdicts, no warning noise about paths
		"--set", "power_bore=14",
		"--output", out,
		"--changelog", changelog,
	})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("generate: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("exported snapshot: %v", err)
	}
	if !strings.Contains(string(data), `"power_bore"`) {
		t.Error("exported snapshot missing parameters")
	}

	log, err := os.ReadFile(changelog)
	if err != nil {
		t.Fatalf("changelog: %v", err)
	}
	if !strings.Contains(string(log), "8 components") {
		t.Errorf("changelog line = %q", string(log))
	}
}

func TestGenerateRejectsUnknownParameter(t *testing.T) {
	root := testCLI().RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"generate", "--no-cache", "--no-store", "--set", "warp_factor=9"})
	if err := root.ExecuteContext(context.Background()); err == nil {
		t.Fatal("unknown parameter must fail the command")
	}
}

func TestGraphWritesDOT(t *testing.T) {
	out := filepath.Join(t.TempDir(), "formulas.dot")

	root := testCLI().RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"graph", "--detailed", "--output", out})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("graph: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	src := string(data)
	if !strings.HasPrefix(src, "digraph") {
		t.Errorf("not a DOT file: %q", src[:min(len(src), 40)])
	}
	if !strings.Contains(src, "power_bore") {
		t.Error("graph missing parameter node")
	}
}
