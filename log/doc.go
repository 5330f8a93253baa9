// Package log provides a simple, leveled logging interface for the graphdoc
// document model and its collaborators.
//
// The document model, the journal recorder and the stores all log through the
// Logger interface so applications can route diagnostics wherever they like:
// the bundled standard-library logger, a golog-backed logger, a no-op logger,
// or any custom implementation.
//
// # Log Levels
//
// Five levels, in order of increasing severity:
//
//   - LogLevelDebug: transaction commits, undo/redo replays, record counts
//   - LogLevelInfo: lifecycle messages (stores opened, journals attached)
//   - LogLevelWarn: recoverable oddities (fingerprint mismatch on replay)
//   - LogLevelError: failures that need attention (journal save errors)
//   - LogLevelNone: disables all output
//
// # Example Usage
//
//	// Package-level logging with a chosen level
//	log.SetLogLevel(log.LogLevelDebug)
//	log.Debug("committed edit with %d changes", n)
//
//	// A component-scoped logger writing to a file
//	f, _ := os.OpenFile("graphdoc.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
//	defer f.Close()
//	logger := log.NewCustomLogger(f, log.LogLevelInfo)
//	model.SetLogger(logger)
//
// # golog Integration
//
// For users who prefer github.com/kataras/golog, a minimal wrapper is
// provided:
//
//	glogger := golog.New()
//	glogger.SetPrefix("[myapp] ")
//	logger := log.NewGologLogger(glogger)
//	logger.SetLevel(log.LogLevelDebug)
//
// The wrapper gates calls on its own level and forwards formatting to golog.
//
// # Thread Safety
//
// DefaultLogger is safe for concurrent use; the underlying standard-library
// log.Logger serializes writes. Swapping the package-level logger with
// SetDefaultLogger is expected to happen during setup, before concurrent use.
package log
