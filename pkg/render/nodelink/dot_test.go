package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/peerpin/pkg/workspace"
)

func testGraph(t *testing.T) *workspace.Graph {
	t.Helper()
	g := workspace.NewGraph("/repo")
	for dir, data := range map[string]string{
		"packages/app": `{"name": "app", "private": true, "dependencies": {"lib": "workspace:^", "react": "^18.0.0"}, "devDependencies": {"eslint-config": "workspace:^"}}`,
		"packages/lib": `{"name": "lib", "version": "1.2.0"}`,
		"configs/lint": `{"name": "eslint-config", "private": true}`,
	} {
		m, err := workspace.ParseManifest([]byte(data))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := g.AddWorkspace(dir, m); err != nil {
			t.Fatal(err)
		}
	}
	g.AddExternal(&workspace.Package{Name: "react", Version: "18.2.0"})
	if err := g.Link(nil); err != nil {
		t.Fatal(err)
	}
	return g
}

func TestToDOT_Basic(t *testing.T) {
	dot := ToDOT(testGraph(t), Options{})

	if !strings.Contains(dot, "digraph G") {
		t.Error("ToDOT() output missing digraph declaration")
	}
	for _, node := range []string{`"app"`, `"lib"`, `"eslint-config"`} {
		if !strings.Contains(dot, node) {
			t.Errorf("ToDOT() output missing node %s", node)
		}
	}
	if !strings.Contains(dot, `"app" -> "lib";`) {
		t.Error("ToDOT() output missing edge")
	}
	if strings.Contains(dot, `"react"`) {
		t.Error("external packages are excluded by default")
	}
	if strings.Contains(dot, `-> "eslint-config"`) {
		t.Error("devDependency edges are excluded by default")
	}
}

func TestToDOT_Private(t *testing.T) {
	dot := ToDOT(testGraph(t), Options{})

	for _, line := range strings.Split(dot, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), `"app" [`) && !strings.Contains(line, "dashed") {
			t.Errorf("private workspace not dashed: %s", line)
		}
		if strings.HasPrefix(strings.TrimSpace(line), `"lib" [`) && strings.Contains(line, "dashed") {
			t.Errorf("public workspace dashed: %s", line)
		}
	}
}

func TestToDOT_Options(t *testing.T) {
	dot := ToDOT(testGraph(t), Options{
		Detailed:        true,
		External:        true,
		DevDependencies: true,
		Changed:         map[string]bool{"lib": true},
	})

	checks := []string{
		`"react" [label="react\nversion: 18.2.0", shape=ellipse`,
		`"app" -> "react" [label="^18.0.0"];`,
		`"app" -> "eslint-config" [style=dashed, label="workspace:^"];`,
		`version: 1.2.0\ndir: packages/lib`,
		`fillcolor="#fde68a"`,
	}
	for _, want := range checks {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() output missing %s\n%s", want, dot)
		}
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 100.00 50.00" width="100" height="50"`) {
		t.Errorf("normalizeViewBox() = %s", out)
	}

	plain := []byte(`<svg><g/></svg>`)
	if string(normalizeViewBox(plain)) != string(plain) {
		t.Error("normalizeViewBox() should leave SVG without viewBox unchanged")
	}
}
