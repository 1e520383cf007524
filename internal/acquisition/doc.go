// Package acquisition obtains the text of a video through an ordered fallback
// chain: captions in the report language, a machine-translated caption track,
// and finally speech-to-text over a downloaded audio rendition.
//
// Each stage runs only when the previous one produced nothing, and per-stage
// failures never escape Acquire: they are logged and the chain moves on. When
// every stage fails the result carries ProvenanceNone, and the caller may
// substitute operator-supplied text through Manual.
//
// Audio artifacts live in a per-call temporary directory that is removed on
// every return path.
package acquisition
