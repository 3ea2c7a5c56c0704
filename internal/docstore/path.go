package docstore

import (
	"fmt"
	"strings"
)

// Join joins path segments with "/".
func Join(segments ...string) string {
	return strings.Join(segments, "/")
}

// ChildCollection returns the path of a subcollection of a document.
func ChildCollection(docPath, name string) string {
	return docPath + "/" + name
}

// ID returns the last segment of a path.
func ID(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}

// ValidateCollectionPath checks that path names a collection: an odd number
// of non-empty segments.
func ValidateCollectionPath(path string) error {
	n, err := countSegments(path)
	if err != nil {
		return err
	}
	if n%2 != 1 {
		return fmt.Errorf("%w: %q is not a collection path", ErrInvalidPath, path)
	}
	return nil
}

// ValidateDocumentPath checks that path names a document: an even number of
// non-empty segments.
func ValidateDocumentPath(path string) error {
	n, err := countSegments(path)
	if err != nil {
		return err
	}
	if n%2 != 0 {
		return fmt.Errorf("%w: %q is not a document path", ErrInvalidPath, path)
	}
	return nil
}

func countSegments(path string) (int, error) {
	if path == "" {
		return 0, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	segments := strings.Split(path, "/")
	for _, s := range segments {
		if s == "" {
			return 0, fmt.Errorf("%w: %q has an empty segment", ErrInvalidPath, path)
		}
	}
	return len(segments), nil
}
