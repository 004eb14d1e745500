// Package config defines the format-agnostic manifest model: where bindings
// are written, which networks are read, and the ordered list of packages to
// generate. It also defines the Loader interface that concrete front ends,
// such as the HCL one, implement.
//
// A Manifest is validated as a whole. Every problem found is reported
// together so a user can fix a manifest in one pass.
package config
