// Package media checks the files that back project resources.
//
// A Prober stats each file and computes a content fingerprint with xxh3.
// Fingerprints are cached by path, size and modification time, so a check
// of an unchanged project reads no file content. Probing runs on a pool of
// workers; the results are applied to a resource.Manager by Apply, which
// must run on the goroutine that owns the manager.
package media
