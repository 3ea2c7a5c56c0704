package objectstore

import (
	"fmt"
	"net/url"
	"strings"
)

// downloadMarker precedes the encoded object path in Firebase download URLs:
//
//	https://firebasestorage.googleapis.com/v0/b/<bucket>/o/live_streams%2Fs1.mp4?alt=media&token=...
const downloadMarker = "/o/"

// PathFromDownloadURL extracts the object key from a download URL: the text
// after the first "/o/", up to the first "?", URL-decoded.
//
// ok is false when the URL carries no "/o/" marker or the key is empty.
func PathFromDownloadURL(rawURL string) (key string, ok bool, err error) {
	_, rest, found := strings.Cut(rawURL, downloadMarker)
	if !found {
		return "", false, nil
	}
	encoded, _, _ := strings.Cut(rest, "?")
	if encoded == "" {
		return "", false, nil
	}

	key, err = url.PathUnescape(encoded)
	if err != nil {
		return "", false, fmt.Errorf("objectstore: decode object path %q: %w", encoded, err)
	}
	return key, true, nil
}
