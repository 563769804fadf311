// Package files handles the on-disk lifecycle of snapshots and reports.
//
// Discovery locates the published snapshot CSVs and previously generated
// reports; Manager publishes new reports (staged write, then move, so a
// crash never leaves a partial file) and prunes old ones. Relative paths
// resolve against the application path layout, never the working directory.
//
//	discovery := files.NewDiscovery(paths.ExecutableDir)
//	snapshots, err := discovery.FindSnapshotFiles(paths.PublicDataDir)
//
//	manager := files.NewManager(paths)
//	path, err := manager.WriteReport("hpic_insights_20250825.json", data)
package files
