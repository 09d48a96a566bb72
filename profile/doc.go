// Package profile provides optional runtime profiling for nestvars.
//
// # Overview
//
// This package wraps [github.com/pkg/profile] behind the "pprof" build tag.
// Without the tag every operation is a no-op and [Modes] is empty, so the
// profiling flags disappear from the command line.
//
// # Available Profiling Modes
//
// When built with the pprof tag the supported modes are allocs, block,
// clock, cpu, goroutine, heap, mem, mutex, thread and trace. Use [Modes] to
// retrieve them programmatically.
//
// # Usage
//
//	ctrl := profile.Start(
//		profile.WithMode("cpu"),
//		profile.WithPath("/tmp/profiles"),
//	)
//	defer ctrl.Stop()
//
// From the command line:
//
//	go build -tags pprof .
//	./nestvars --pprof-mode cpu resolve big.css
//	go tool pprof -http=: ~/.cache/nestvars/pprof/cpu.pprof
//
// The default output directory is "pprof" under the user cache directory
// for nestvars (see [github.com/ardnew/nestvars/pkg.CacheDir]).
//
// When built with the pprof tag this package also imports [net/http/pprof],
// registering its handlers on [net/http.DefaultServeMux].
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
