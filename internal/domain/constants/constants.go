// Package constants holds configuration values shared across layers.
package constants

const (
	// PubSubProviderLocal posts push-style messages to a local HTTP endpoint.
	PubSubProviderLocal = "local"
	// PubSubProviderGoogle publishes to Google Cloud Pub/Sub.
	PubSubProviderGoogle = "google"
)

const (
	// StorageDriverPostgres persists through GORM and PostgreSQL.
	StorageDriverPostgres = "postgres"
	// StorageDriverMemory keeps all state in process, for local development.
	StorageDriverMemory = "memory"
)
