// Package httputil provides the HTTP plumbing used to fetch distribution
// and analyzer archives.
//
// # Overview
//
//   - [Download]: Stream a URL to a file, with a progress bar
//   - [Retry]: Automatic retry with exponential backoff
//
// # Download
//
// [Download] writes to "<dest>.part" and renames on success, so an
// interrupted transfer never leaves a file that looks complete:
//
//	n, err := httputil.Download(ctx, httputil.NewHTTPClient(), url, dest, httputil.DownloadOptions{
//	    Progress: true,
//	})
//
// # Retry
//
// Transient failures are retried:
//
//   - Network errors
//   - 5xx server errors
//
// A 404 is reported immediately as [ErrNotFound]. Defaults: 3 attempts,
// 1 second initial backoff doubling each retry.
package httputil
