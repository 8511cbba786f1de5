// Package config loads the mediaquery YAML configuration.
//
// Load reads the file, expands ${VAR} references strictly, decodes it with
// unknown fields rejected, applies defaults and validates the result.
// Credentials may be written as secretref:<provider>:<ref> and are resolved
// by ResolveSecrets, after Load, so they never sit in the file itself.
//
// The builder methods turn a validated Config into the storage backend,
// codec, providers and search options the rest of the module consumes.
package config
