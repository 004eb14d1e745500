// Package hcl implements config.Loader for HCL manifests. A manifest is a
// single .hcl file or a directory of them; blocks from every file are merged
// in file name order. Expressions may read the process environment through
// the `env` object, for example `package = env.APP_PACKAGE`.
package hcl
