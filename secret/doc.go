// Package secret resolves credentials referenced from configuration.
//
// Config values pass through ExpandEnvStrict first, so ${VAR} must be set.
// A value may then be, or contain, a reference of the form
//
//	secretref:<provider>:<ref>
//
// which is replaced by the named Provider's answer. Two providers ship with
// the package: "env" reads an environment variable and "file" reads a file,
// trimming a trailing newline. Both are registered in DefaultRegistry.
//
// Providers must never log resolved values.
package secret
