package exitlistener

// ///////////////////////////////////////////////
// Termination
// ///////////////////////////////////////////////

// Terminator ends the process with the given exit status. The production
// implementation is [Exit] and never returns; tests substitute a recorder.
type Terminator func(code int)

// Exit terminates the process immediately with code. It goes straight to the
// exit system call: deferred functions, finalizers and the runtime's own exit
// hooks do not run, and buffered output that was not flushed is lost.
func Exit(code int) {
	rawExit(code)
}
