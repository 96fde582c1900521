package spinwait

// spinHint is a cooperative no-op that stands in for a CPU pause/yield
// instruction. Go does not expose the x86 PAUSE / ARM YIELD intrinsic to
// pure-Go code, so, like the rest of the ecosystem, we settle for a
// non-inlined empty call: the compiler cannot fold the calling loop away
// because the call crosses a function-call boundary it cannot prove is
// side-effect free.
//
//go:noinline
func spinHint() {}
