// Package hlolower provides a legalization engine that rewrites
// buffer-typed computation graphs into an explicit GPU runtime dialect.
//
// The input vocabulary describes linear-algebra work over GPU memory
// buffers (collectives, matrix multiply, convolution, factorization,
// data movement); the output vocabulary is a lower-level runtime
// dialect whose operations carry explicit stream handles and completion
// tokens. The engine wraps runs of operations into asynchronous-context
// regions, then drives a fixpoint pattern rewrite until every operation
// satisfies the legality target.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	hlolower/            Root package documentation
//	├── ir/              Arena-based operation graph: regions, values, types
//	├── hlo/             Source vocabulary: buffer ops and buffer types
//	├── gpurt/           Target vocabulary: streamed runtime ops and tokens
//	├── lower/           Type converter, pattern registry, legality target,
//	│                    streamify wrapper, and the conversion driver
//	│   └── rules/       Pluggable rewrite-rule providers per op family
//	├── errors/          Structured error types for debugging
//	└── cmd/hlo-lower/   CLI: lower YAML graph descriptions, inspect TUI
//
// # Quick Start
//
// Lower a module:
//
//	conv := lower.NewBufferTypeConverter()
//	reg := rules.DefaultRegistry(conv)
//
//	out, err := lower.Run(mod, lower.Config{Registry: reg, Converter: conv})
//	if err != nil {
//	    log.Fatal(err) // no partial graph is ever returned
//	}
//	fmt.Print(ir.Print(out))
//
// The transformation is all-or-nothing: on failure the input module is
// left untouched.
package hlolower
