// Package worker owns the WhisperX runner subprocess.
//
// A Session wraps one supervised lifetime of the worker: it spawns the
// process through an injected Launcher, writes line commands to its stdin,
// and runs a dedicated reader goroutine that decodes stdout into protocol
// events. Stopping a session walks the escalation ladder: a graceful exit()
// command, then SIGTERM, then SIGKILL, each with a bounded wait. The ladder
// always completes so the supervisor is never left stuck on a wedged worker.
//
// The Launcher abstraction exists for tests; production code uses the
// exec-based launcher, which forces UTF-8 worker I/O, merges stderr into
// stdout, and runs the worker in the runner script's directory.
package worker
