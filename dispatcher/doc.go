// Package dispatcher provides a single-consumer event loop modeling a
// UI-affine execution context: a native message loop that everything
// "on the UI thread" must be posted to.
//
// A Loop owns exactly one pump goroutine, started at construction.
// Events posted to the loop run one at a time in delivery order, and
// the context handed to each event identifies the loop, so code can ask
// whether it is currently running on it:
//
//	loop := dispatcher.New("main")
//	defer loop.Close()
//
//	loop.Post(func(ctx context.Context) {
//	    if dispatcher.FromContext(ctx) == loop {
//	        // running on the loop
//	    }
//	})
//
// The loop is a shared, externally owned resource: several strand
// queues may bind to the same loop, and closing the loop is the
// owner's responsibility, not the queues'.
package dispatcher
