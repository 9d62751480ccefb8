package constraints_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/peerpin/pkg/constraints"
	"github.com/matzehuels/peerpin/pkg/semverrange"
	"github.com/matzehuels/peerpin/pkg/workspace"
)

func ExampleMostStrict() {
	o := semverrange.Oracle{}

	r, _ := constraints.MostStrict(o, "^2.0.0", "^2.1.0")
	fmt.Println(r)

	r, _ = constraints.MostStrict(o, "^1.0.0 || ^2.0.0", ">=1.5.0")
	fmt.Println(r)

	r, _ = constraints.MostStrict(o, "^1.0.0", "workspace:^")
	fmt.Println(r)
	// Output:
	// ^2.1.0
	// ^1.0.0 >=1.5.0 || ^2.0.0 >=1.5.0
	// workspace:^
}

func ExampleEnforcer_Enforce() {
	g := workspace.NewGraph("/repo")
	app, _ := workspace.ParseManifest([]byte(`{"name": "app", "private": true, "dependencies": {"lib": "^1.0.0"}}`))
	tool, _ := workspace.ParseManifest([]byte(`{"name": "tool", "dependencies": {"lib": "^1.0.0"}}`))
	_, _ = g.AddWorkspace("packages/app", app)
	_, _ = g.AddWorkspace("packages/tool", tool)
	g.AddExternal(&workspace.Package{
		Name:             "lib",
		Version:          "1.3.0",
		PeerDependencies: map[string]string{"react": "^18.0.0"},
	})
	_ = g.Link(nil)

	e := constraints.New(constraints.Options{RequiredScripts: []string{}})
	muts, err := e.Enforce(context.Background(), g)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	for _, m := range muts {
		fmt.Printf("%s %v = %s\n", m.Workspace, m.Path, m.Value)
	}
	// Output:
	// app [dependencies react] = ^18.0.0
	// tool [peerDependencies react] = ^18.0.0
}
