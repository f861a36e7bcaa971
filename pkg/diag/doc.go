// Package diag tracks live view models for debugging.
//
// A Registry implements viewmodel.Observer. Pass it through the view model
// environment and every Init and Dispose is recorded:
//
//	reg := diag.NewRegistry(diag.WithStacks(true))
//	env := reg.Env(logger)
//	vm := demo.NewParentVM(item, env)
//
//	fmt.Println(reg.Count())   // 1
//	reg.Dump(os.Stdout)         // type, creation time, item of every live node
//
// NewHandler exposes the same data over HTTP, including a WebSocket stream of
// creation and disposal events and Prometheus metrics. S3Exporter uploads a
// dump to object storage.
package diag
