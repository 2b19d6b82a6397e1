package models

import (
	"fmt"

	json "github.com/goccy/go-json"
)

const (
	storeKeyPrefix = "vdb"
	// OptionsKey holds the process-wide export options blob.
	OptionsKey = "vop"

	// EmptyStoreBlob is the value read when a room has never been persisted.
	EmptyStoreBlob = "[]"
)

// StoreKey returns the backend key holding a room's storage blob.
func StoreKey(roomID string) string {
	return storeKeyPrefix + roomID
}

// ParseError reports a persisted blob that could not be decoded. Nothing of a
// partially decoded blob is ever returned alongside it.
type ParseError struct {
	Kind string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed %s blob: %s", e.Kind, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseStorage decodes a storage blob and checks its structure.
func ParseStorage(blob string) (*Storage, error) {
	var s Storage
	if err := json.Unmarshal([]byte(blob), &s); err != nil {
		return nil, &ParseError{Kind: "store", Err: err}
	}
	for i, b := range s.Broadcasters {
		if b == nil {
			return nil, &ParseError{Kind: "store", Err: fmt.Errorf("broadcaster %d is null", i)}
		}
		for j, sess := range b.Sessions {
			if sess == nil {
				return nil, &ParseError{Kind: "store", Err: fmt.Errorf("broadcaster %d: session %d is null", i, j)}
			}
		}
	}
	return &s, nil
}

// EncodeStorage serializes the whole storage; there is no diff format.
func EncodeStorage(s *Storage) (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode store: %w", err)
	}
	return string(data), nil
}

// ParseExportOptions decodes an options blob.
func ParseExportOptions(blob string) (ExportOptions, error) {
	var o ExportOptions
	if err := json.Unmarshal([]byte(blob), &o); err != nil {
		return ExportOptions{}, &ParseError{Kind: "options", Err: err}
	}
	return o, nil
}

func EncodeExportOptions(o ExportOptions) (string, error) {
	data, err := json.Marshal(o)
	if err != nil {
		return "", fmt.Errorf("encode options: %w", err)
	}
	return string(data), nil
}
