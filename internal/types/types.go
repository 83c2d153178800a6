// Package types defines every cross‑package data structure used by the dirsize CLI.
package types

import (
	"encoding/xml"
	"fmt"
)

const (
	FormatRaw  = "raw"
	FormatJSON = "json"
	FormatXML  = "xml"
)

// ErrorKind classifies a traversal failure recorded in the tree.
type ErrorKind string

const (
	// ErrorKindRootUnreadable marks a traversal root that could not be opened or listed.
	ErrorKindRootUnreadable ErrorKind = "root_unreadable"
	// ErrorKindEntryTypeUnknown marks an entry whose file type could not be queried.
	ErrorKindEntryTypeUnknown ErrorKind = "entry_type_unknown"
	// ErrorKindEntryEnumerationFailed marks a failed raw read of directory entries.
	ErrorKindEntryEnumerationFailed ErrorKind = "entry_enumeration_failed"
	// ErrorKindSubdirectoryUnreadable marks a nested directory that could not be opened or listed.
	ErrorKindSubdirectoryUnreadable ErrorKind = "subdirectory_unreadable"
	// ErrorKindNameNotText marks an entry whose name is not valid UTF-8.
	ErrorKindNameNotText ErrorKind = "name_not_text"
)

const (
	encounteredErrorFormat      = "%s %q"
	encounteredErrorCauseFormat = "%s %q: %v"
)

// EncounteredError records one traversal failure.
// Name is the entry base name, the full attempted path for a root failure,
// or empty when a raw entry read failed.
type EncounteredError struct {
	Name  string
	Kind  ErrorKind
	Cause error
}

// Error implements the error interface.
func (encounteredError *EncounteredError) Error() string {
	if encounteredError.Cause == nil {
		return fmt.Sprintf(encounteredErrorFormat, encounteredError.Kind, encounteredError.Name)
	}
	return fmt.Sprintf(encounteredErrorCauseFormat, encounteredError.Kind, encounteredError.Name, encounteredError.Cause)
}

// Unwrap returns the underlying filesystem error.
func (encounteredError *EncounteredError) Unwrap() error {
	return encounteredError.Cause
}

// FileEntry represents one non-directory entry.
type FileEntry struct {
	Name string
	Size int64
}

// DirectoryNode represents one directory and everything it exclusively owns.
// Size is the sum of all file sizes and subdirectory sizes and is fixed at construction.
type DirectoryNode struct {
	Name  string
	Size  int64
	Dirs  []DirectoryNode
	Files []FileEntry
	Errs  []EncounteredError
}

// TotalSize recomputes the aggregate size from the node's direct children.
func (node DirectoryNode) TotalSize() int64 {
	var total int64
	for _, file := range node.Files {
		total += file.Size
	}
	for _, directory := range node.Dirs {
		total += directory.Size
	}
	return total
}

// ErrorOutput is the serialized form of an EncounteredError.
type ErrorOutput struct {
	Name  string `json:"name" xml:"name"`
	Kind  string `json:"kind" xml:"kind"`
	Cause string `json:"cause,omitempty" xml:"cause,omitempty"`
}

// FileOutput is the serialized form of a FileEntry.
type FileOutput struct {
	Name string `json:"name" xml:"name"`
	Size int64  `json:"size" xml:"size"`
}

// DirectoryOutput is the serialized form of a DirectoryNode.
type DirectoryOutput struct {
	XMLName xml.Name          `json:"-" xml:"directory"`
	Name    string            `json:"name" xml:"name"`
	Size    int64             `json:"size" xml:"size"`
	Files   []FileOutput      `json:"files" xml:"files>file"`
	Dirs    []DirectoryOutput `json:"dirs" xml:"dirs>directory"`
	Errors  []ErrorOutput     `json:"errors,omitempty" xml:"errors>error,omitempty"`
}
