// Package shutdown coordinates process termination and reload signals.
//
// SIGINT and SIGTERM (or cancellation of the parent context) run the
// registered shutdown hooks in reverse order under a deadline. SIGHUP runs
// the reload hooks and keeps waiting.
//
//	h := shutdown.NewHandler(10 * time.Second)
//	h.OnShutdown(srv.Shutdown)
//	h.OnReload(reloadConfig)
//	err := h.Wait(ctx)
package shutdown
