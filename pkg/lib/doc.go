// Package lib provides a Go SDK for driving CABLE benchmark runs
// programmatically.
//
// This package allows applications to run the benchcab workflow, checkout,
// build, task setup, execution and comparison, without shelling out to the
// benchcab CLI binary. It is useful for scripting, automation, and building
// tools on top of benchcab (nightly pipelines, dashboards).
//
// # Quick Start
//
// Create a client, load a configuration, and run the fluxsite workflow:
//
//	client, err := lib.New(ctx, lib.Config{WorkDir: "/scratch/tm70/me/bench"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	cfg, err := lib.LoadConfig(ctx, "config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Check out and compile the CABLE realisations.
//	client.Checkout(ctx, cfg)
//	client.Build(ctx, cfg, false)
//
//	// Materialise the fluxsite tasks and submit them to PBS.
//	client.FluxsiteSetup(ctx, cfg)
//	jobID, _ := client.FluxsiteSubmitJob(ctx, cfg, nil)
//
// # Workflow
//
// The benchmark workflow is a pipeline over a working directory:
//
//   - [Client.Checkout]: clone or export the configured CABLE branches
//     under src/.
//   - [Client.Build]: compile each realisation with the configured
//     environment modules. Pass mpi=true for the spatial executable.
//   - [Client.FluxsiteSetup] / [Client.SpatialSetup]: materialise run
//     directories and record the pending tasks.
//   - [Client.FluxsiteSubmitJob]: run the tasks inside a PBS job, or
//     [Client.FluxsiteRunTasks] and [Client.FluxsiteBitwiseCmp] to run them
//     on the current node.
//   - [Client.SpatialRunTasks]: dispatch the spatial runs through payu.
//
// Each step records its results in the state database, so a pipeline can be
// resumed or inspected between steps.
//
// # Inspecting Runs
//
// [Client.Status] returns the recorded state for the work directory:
//
//	report, _ := client.Status(ctx)
//	for _, t := range report.Tasks {
//	    fmt.Printf("%s: %s\n", t.Name, t.Status)
//	}
//
// # Health Checks
//
// Run preflight checks to verify the benchmark environment:
//
//	results, _ := client.Doctor(ctx, cfg)
//	for _, r := range results {
//	    fmt.Printf("%s: %s (%s)\n", r.ID, r.Message, r.Status)
//	}
//
// # Error Handling
//
// All methods return errors that can be inspected with [errors.Is]:
//
//   - [ErrNotFound]: Resource does not exist (e.g. no run recorded yet).
//   - [ErrAlreadyExists]: Resource already exists (e.g. realisation already
//     checked out).
//   - [ErrNotValid]: Invalid input or operation (e.g. a configuration that
//     fails validation).
//
// # Testing
//
// Use a temporary database path, a local work directory and a MetDir
// override to write tests without real infrastructure:
//
//	client, _ := lib.New(ctx, lib.Config{
//	    DBPath:  filepath.Join(t.TempDir(), "test.db"),
//	    WorkDir: t.TempDir(),
//	    MetDir:  "testdata/met",
//	})
//	defer client.Close()
//
// # Thread Safety
//
// A [Client] is safe for concurrent use from multiple goroutines. The
// underlying storage uses SQLite with WAL mode. The workflow steps
// themselves expect to run in order over a given work directory.
package lib
