// Package output renders directory trees as raw text, JSON, or XML.
package output

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/tyemirov/dirsize/internal/types"
)

const (
	indentPrefix = ""
	indentSpacer = "  "

	xmlHeader = xml.Header

	unsupportedFormatFormat = "unsupported output format %q"
	encodeJSONFormat        = "encoding tree as json: %w"
	encodeXMLFormat         = "encoding tree as xml: %w"
)

// Render writes root to writer in the requested format.
func Render(writer io.Writer, root types.DirectoryNode, format string, options RawOptions) error {
	switch strings.ToLower(format) {
	case types.FormatRaw, "":
		return WriteTreeRaw(writer, root, options)
	case types.FormatJSON:
		return WriteTreeJSON(writer, root)
	case types.FormatXML:
		return WriteTreeXML(writer, root)
	default:
		return fmt.Errorf(unsupportedFormatFormat, format)
	}
}

// IsSupportedFormat reports whether the provided format is recognized.
func IsSupportedFormat(format string) bool {
	switch strings.ToLower(format) {
	case types.FormatRaw, types.FormatJSON, types.FormatXML:
		return true
	default:
		return false
	}
}

// WriteTreeJSON writes root as an indented JSON document.
func WriteTreeJSON(writer io.Writer, root types.DirectoryNode) error {
	encoded, jsonEncodeError := json.MarshalIndent(ToDirectoryOutput(root), indentPrefix, indentSpacer)
	if jsonEncodeError != nil {
		return fmt.Errorf(encodeJSONFormat, jsonEncodeError)
	}
	_, writeError := fmt.Fprintln(writer, string(encoded))
	return writeError
}

// WriteTreeXML writes root as an indented XML document.
func WriteTreeXML(writer io.Writer, root types.DirectoryNode) error {
	encoded, xmlMarshalError := xml.MarshalIndent(ToDirectoryOutput(root), indentPrefix, indentSpacer)
	if xmlMarshalError != nil {
		return fmt.Errorf(encodeXMLFormat, xmlMarshalError)
	}
	_, writeError := fmt.Fprintln(writer, xmlHeader+string(encoded))
	return writeError
}

// ToDirectoryOutput converts a built tree into its serializable form.
// Empty child lists become empty slices so JSON shows [] rather than null.
func ToDirectoryOutput(node types.DirectoryNode) types.DirectoryOutput {
	result := types.DirectoryOutput{
		Name:  node.Name,
		Size:  node.Size,
		Files: make([]types.FileOutput, 0, len(node.Files)),
		Dirs:  make([]types.DirectoryOutput, 0, len(node.Dirs)),
	}
	for _, file := range node.Files {
		result.Files = append(result.Files, types.FileOutput{Name: file.Name, Size: file.Size})
	}
	for _, directory := range node.Dirs {
		result.Dirs = append(result.Dirs, ToDirectoryOutput(directory))
	}
	for _, encountered := range node.Errs {
		errorOutput := types.ErrorOutput{Name: encountered.Name, Kind: string(encountered.Kind)}
		if encountered.Cause != nil {
			errorOutput.Cause = encountered.Cause.Error()
		}
		result.Errors = append(result.Errors, errorOutput)
	}
	return result
}
