// Package workspace models a multi-package JavaScript workspace as an
// in-memory graph of manifests.
//
// # Overview
//
// A [Graph] holds every workspace-local package ([Workspace]) together with
// the resolved lookup from each declared dependency name to the concrete
// [Package] satisfying it. Packages outside the workspace are known only by
// the peer requirements their own manifest declares.
//
// # Loading
//
// [Load] discovers workspaces from the root package.json "workspaces" field
// or from pnpm-workspace.yaml, reads every manifest concurrently and resolves
// external dependencies through node_modules:
//
//	g, err := workspace.Load(ctx, ".", workspace.LoadOptions{})
//	if err != nil {
//	    return err
//	}
//	for _, w := range g.Workspaces() {
//	    fmt.Println(w.Ident(), w.Dir)
//	}
//
// # Mutations
//
// Manifests are changed only through [Mutation] records. [Graph.Apply] sets
// the fields in memory and [Graph.Save] writes every changed package.json,
// keeping the original order of top-level keys.
package workspace
