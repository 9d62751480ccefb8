// Package constraints enforces dependency-version consistency across the
// workspaces of a [workspace.Graph].
//
// The engine has three layers:
//
//   - [MostStrict] reconciles two ranges for the same dependency into one
//     range that satisfies both.
//   - [Aggregate] collects the peer requirements a workspace inherits from
//     its direct dependencies and folds them with MostStrict.
//   - [Enforcer] runs a fixed, ordered set of [Rule] values over every
//     workspace and returns the manifest [Mutation] list that would make the
//     graph consistent.
//
// Range questions go through an [Oracle], so the engine never parses a range
// itself. [semverrange.Oracle] is the production implementation.
//
// # Modes
//
// With [Options.Version] set, the enforcer only stamps that version onto every
// non-private workspace. Otherwise it runs, in order:
//
//	peer-dependencies     list peers of dependencies as dependencies or peers
//	dev-satisfies-peer    keep devDependencies inside the declared peer range
//	config-peers          pin consumers of config workspaces to their peers
//	pack-scripts          require pack/publish scripts on public workspaces
//
// Rules read the graph as loaded and record their writes; a write is never
// visible to another rule of the same pass. [Enforcer.EnforceUntilStable]
// applies each pass to a copy of the graph and repeats until nothing changes.
package constraints
