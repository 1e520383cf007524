// Package registry manages the curated channel list.
//
// The list is one document in an objstore.Backend. Load pairs the decoded
// entries with the backend's version token and Save writes only when that
// token is still current. Add, Edit, and Remove each run a full
// load-modify-save cycle so a mutation never reuses a token from an earlier
// load. A stale token surfaces as services.ErrConflict and the stored list is
// left untouched; the caller reloads and retries.
package registry
