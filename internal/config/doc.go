// Package config defines the application configuration structure and its
// loading logic. Configuration comes from environment variables (prefix
// DOCENT_) and an optional config.yaml, is unmarshalled into a typed
// struct, and is validated at startup so that a missing API key is a
// reported error rather than a runtime surprise.
package config
