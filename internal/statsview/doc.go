// Package statsview serves runtime statistics of the emulator process over
// HTTP. It is only functional when built with the statsview build tag:
//
//	go build -tags statsview ./cmd/sdl
//
// Graphs are then served at localhost:12600/debug/statsview and the
// standard pprof endpoints at localhost:12600/debug/pprof/.
package statsview
