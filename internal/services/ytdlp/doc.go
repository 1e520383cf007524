// Package ytdlp downloads the best available audio rendition of a video with
// the yt-dlp command line tool.
package ytdlp
