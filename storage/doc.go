// Package storage implements content-addressed storage backends for
// encrypted wallet backups.
//
// Content is identified by the SHA-256 hash of its data, so identical
// snapshots deduplicate naturally and any fetched blob can be verified
// against the ID it was requested under. Two content namespaces exist:
// snapshots (the encrypted coldkey archives themselves) and metadata
// (backup manifests describing them).
//
// Supported backends:
//
//   - FileBackend: local filesystem storage, the default for single-host
//     deployments.
//   - S3Backend: Amazon S3 or any S3-compatible object store, with
//     optional static credentials for write access.
//   - IPFSBackend: an IPFS node or gateway.
//   - VaultBackend: HashiCorp Vault KV v2, token-authenticated.
//   - MultiStorageBackend: fans writes out to every available backend and
//     serves reads from the first backend that has the content.
//
// Backends are constructed from location URIs through
// StorageBackendFactory, e.g.:
//
//	file:///var/lib/moderntensor/backups/
//	s3://ACCESS:SECRET@bucket/backups/?region=eu-west-1
//	ipfs://localhost:5001/?timeout=30s
//	vault://TOKEN@vault.example.com:8200/secret/wallet-backups
package storage
