// Package realtime runs a set of fwsm descriptors as a cyclic executive.
//
// A Runtime owns its descriptors and drives them from one goroutine in fixed
// time steps. Each tick:
//  1. collects the triggers queued since the previous tick,
//  2. orders them by priority, then by submission order,
//  3. delivers each one to its machine with MakeTrans,
//  4. sends Execute to every machine, in the order they were added.
//
// Given the same sequence of Send calls between ticks, the machines always
// run the same way, regardless of timing or of which goroutines sent the
// triggers. Tick can also be called directly for deterministic stepping in
// tests and simulations.
//
// # Example Usage
//
//	rt := realtime.NewRuntime(realtime.Config{TickRate: 10 * time.Millisecond})
//	rt.Add("pump-1", machine.New())
//	rt.Start(ctx)
//	defer rt.Stop()
//	rt.Send("pump-1", start)
//
// Descriptors added to a Runtime must not be driven by anyone else. Use
// Inspect to read or snapshot them safely while the runtime runs.
package realtime
