// Package loader orchestrates module loading: it reads a compiled
// module from disk, decodes it, and runs structural verification,
// optionally consulting a content-addressed disk cache of prior
// verification results so unchanged files are not re-verified.
package loader
