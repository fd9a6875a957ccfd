package engine

import "errors"

// ErrDownloadActive is logged when PushDownload is called while a
// download job is already in flight for the same destination path; the
// rejected submission's callback receives false.
var ErrDownloadActive = errors.New("engine: download already active for this path")
