// Package ierrors provides the error-kind taxonomy of spec §7: structured,
// code-tagged errors with source position and a propagation frame chain.
// The shape follows the teacher's internal/errors package: one code block
// per error family, each code documented, all funnelled through a single
// Report type consumed by a JSON encoder for tooling.
package ierrors

// Error code families, one per §7 error kind.
const (
	// ARG### — InvalidArguments: wrong arity, wrong type, unknown kwarg,
	// bad kwarg value. Never recoverable by DSL code.
	ARG101 = "ARG101" // type mismatch in binary operator
	ARG102 = "ARG102" // arithmetic requires int operands
	ARG103 = "ARG103" // division/modulo by zero
	ARG104 = "ARG104" // unorderable or mismatched comparison operands
	ARG105 = "ARG105" // unsupported 'in' operand
	ARG106 = "ARG106" // unsupported index operation
	ARG107 = "ARG107" // wrong positional arity
	ARG108 = "ARG108" // unknown kwarg
	ARG109 = "ARG109" // kwarg type coercion failed
	ARG110 = "ARG110" // private method called from DSL

	// COD### — InvalidCode: ill-formed construct, sandbox violation.
	COD101 = "COD101" // duplicate project() call
	COD102 = "COD102" // sandbox violation (File() escapes subproject)
	COD103 = "COD103" // subdir escapes source tree or re-enters
	COD104 = "COD104" // duplicate target id
	COD105 = "COD105" // mutation of a frozen configuration-data object
	COD106 = "COD106" // global arguments added after a target was declared
	COD107 = "COD107" // module mutated the Build accumulator directly

	// RUN### — InterpreterException: runtime error raised by a built-in.
	RUN101 = "RUN101" // index out of range
	RUN102 = "RUN102" // missing dict key
	RUN103 = "RUN103" // required dependency not found
	RUN104 = "RUN104" // assertion failed
	RUN105 = "RUN105" // unknown option
	RUN106 = "RUN106" // command execution failed
	RUN107 = "RUN107" // configure_file mutually-exclusive mode kwargs

	// DEP### — DependencyException: trapped at the dependency boundary
	// when required=false, otherwise propagates.
	DEP101 = "DEP101" // not found and required
	DEP102 = "DEP102" // version constraint not satisfied
	DEP103 = "DEP103" // override/fallback variable inconsistency

	// CTL### — structured control-flow signals (§9 reshape: Break,
	// Continue, SubdirDone are result-type values, not exceptions, but
	// keep codes for diagnostics/logging of where they were raised).
	CTL101 = "CTL101" // subdir_done outside a subdir
	CTL102 = "CTL102" // break outside a loop
	CTL103 = "CTL103" // continue outside a loop

	// WRP### — WrapException: subproject resolver failure.
	WRP101 = "WRP101" // subproject resolve failed
	WRP102 = "WRP102" // subproject name invalid
	WRP103 = "WRP103" // subproject resolved twice
)
