// Package storage provides access to the object storage backend (S3/MinIO)
// that holds previously uploaded manifest files.
//
// The Client interface exposes the subset of minio operations the service
// needs: existence checks, stat (for enforcing the upload ceiling before
// download), download, upload, and listing. Production code talks to the
// interface so tests can substitute the mock in storage/mocks.
package storage
