// Package app contains the core application logic. It wires the manifest
// loader, the generation session and the output writer together, decoupled
// from any specific entrypoint like a CLI.
package app
