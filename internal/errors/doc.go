// Package errors provides coded, actionable error values for vmbase.
//
// Every error has a unique code (e.g., "E001") that maps to a category, a short
// message and an optional hint. Callers attach detail and wrap sentinel errors
// so that errors.Is keeps working across the chain:
//
//	err := errors.New("E001").
//	    WithDetail("RegisterChild on disposed *demo.ParentVM").
//	    Wrap(viewmodel.ErrDisposed)
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E001: Disposed view model accessed
//	//
//	//   RegisterChild on disposed *demo.ParentVM
//	//
//	//   Hint: Stop using a view model after Dispose; re-read the parent property to get a fresh child
//
// # Error Categories
//
//   - runtime: misuse of a live view model graph (disposed access, duplicate connections)
//   - declaration: invalid dependency tables
//   - config: vmbase.json and VMBASE_* environment problems
//   - cli: command line failures
package errors
