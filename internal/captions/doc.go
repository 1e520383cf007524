// Package captions retrieves published caption tracks for a video.
//
// Track listing scrapes the watch page's ytInitialPlayerResponse for the
// captionTracks array. Each track's timedtext URL returns XML segments;
// appending tlang=<code> asks the platform to machine-translate the track.
package captions
