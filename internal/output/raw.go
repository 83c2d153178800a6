package output

import (
	"io"
	"strconv"
	"strings"

	"github.com/tyemirov/dirsize/internal/types"
)

const (
	levelMarker       = "\\-"
	levelPadding      = " "
	headerTerminator  = ":"
	fileSizeSeparator = "\t"
	fileSizeSuffix    = " bytes"
	errorLinePrefix   = "[unreadable: "
	errorLineSuffix   = "]"
	rootLevel         = 1
	nodeBufferSize    = 128
)

// RawOptions controls the indented text report.
type RawOptions struct {
	// ShowErrors adds one "[unreadable: NAME]" line per recorded error below the file lines.
	ShowErrors bool
}

// WriteTreeRaw writes the indented report for root, one chunk per directory.
// A directory header is followed by its files one level deeper, then by each subdirectory.
func WriteTreeRaw(writer io.Writer, root types.DirectoryNode, options RawOptions) error {
	return writeDirectoryRaw(writer, root, rootLevel, options)
}

func writeDirectoryRaw(writer io.Writer, node types.DirectoryNode, level int, options RawOptions) error {
	var buffer strings.Builder
	buffer.Grow(nodeBufferSize)

	writeLevelOffset(&buffer, level)
	buffer.WriteString(node.Name)
	buffer.WriteString(strconv.FormatInt(node.Size, 10))
	buffer.WriteString(headerTerminator)
	buffer.WriteByte('\n')

	childLevel := level + 1
	for _, file := range node.Files {
		writeLevelOffset(&buffer, childLevel)
		buffer.WriteString(FormatFileLine(file))
		buffer.WriteByte('\n')
	}
	if options.ShowErrors {
		for _, encountered := range node.Errs {
			writeLevelOffset(&buffer, childLevel)
			buffer.WriteString(errorLinePrefix)
			buffer.WriteString(encountered.Name)
			buffer.WriteString(errorLineSuffix)
			buffer.WriteByte('\n')
		}
	}

	if _, writeError := io.WriteString(writer, buffer.String()); writeError != nil {
		return writeError
	}

	for _, directory := range node.Dirs {
		if writeError := writeDirectoryRaw(writer, directory, childLevel, options); writeError != nil {
			return writeError
		}
	}
	return nil
}

// FormatFileLine renders a file as "name<TAB>size bytes".
func FormatFileLine(file types.FileEntry) string {
	return file.Name + fileSizeSeparator + strconv.FormatInt(file.Size, 10) + fileSizeSuffix
}

func writeLevelOffset(buffer *strings.Builder, level int) {
	if level > rootLevel {
		buffer.WriteString(strings.Repeat(levelPadding, level-rootLevel))
	}
	buffer.WriteString(levelMarker)
}
