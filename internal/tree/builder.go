// Package tree builds size-annotated directory trees.
package tree

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"

	"github.com/tyemirov/dirsize/internal/types"
)

const (
	// DefaultReadBatchSize is the number of entry names requested per directory read.
	DefaultReadBatchSize = 256

	recordedErrorMessage = "recorded traversal error"
	nameDecodeMessage    = "entry name is not valid UTF-8"

	pathFieldName  = "path"
	nameFieldName  = "name"
	kindFieldName  = "kind"
	errorFieldName = "error"
)

var errNotDirectory = errors.New("not a directory")

// Builder walks a filesystem and produces immutable DirectoryNode trees.
type Builder struct {
	Filesystem    afero.Fs
	Logger        *zap.Logger
	ReadBatchSize int
}

// NewBuilder returns a Builder over the provided filesystem.
// A nil filesystem selects the operating system filesystem and a nil logger discards output.
func NewBuilder(filesystem afero.Fs, logger *zap.Logger) *Builder {
	if filesystem == nil {
		filesystem = afero.NewOsFs()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		Filesystem:    filesystem,
		Logger:        logger,
		ReadBatchSize: DefaultReadBatchSize,
	}
}

// Build enumerates path and returns the directory tree labelled with name.
// Only a failure to open or list path itself is returned as an error, always a
// *types.EncounteredError named by path. Every failure below the root is recorded
// in the Errs of the nearest owning directory and traversal continues.
func (builder *Builder) Build(path string, name string) (types.DirectoryNode, error) {
	node, buildError := builder.buildDirectory(path, name)
	if buildError != nil {
		rootError := &types.EncounteredError{
			Name:  path,
			Kind:  types.ErrorKindRootUnreadable,
			Cause: buildError,
		}
		builder.logRecorded(path, *rootError)
		return types.DirectoryNode{}, rootError
	}
	return node, nil
}

// buildDirectory constructs the node for one directory after all its children are final.
func (builder *Builder) buildDirectory(path string, name string) (types.DirectoryNode, error) {
	directoryHandle, openError := builder.filesystem().Open(path)
	if openError != nil {
		return types.DirectoryNode{}, openError
	}
	defer directoryHandle.Close()

	directoryInfo, statError := directoryHandle.Stat()
	if statError != nil {
		return types.DirectoryNode{}, statError
	}
	if !directoryInfo.IsDir() {
		return types.DirectoryNode{}, &os.PathError{Op: "readdir", Path: path, Err: errNotDirectory}
	}

	accumulator := directoryAccumulator{}
	batchSize := builder.ReadBatchSize
	if batchSize <= 0 {
		batchSize = DefaultReadBatchSize
	}

	for {
		entryNames, readError := directoryHandle.Readdirnames(batchSize)
		for _, entryName := range entryNames {
			builder.processEntry(path, entryName, &accumulator)
		}
		if readError == nil {
			continue
		}
		if !errors.Is(readError, io.EOF) {
			builder.record(path, &accumulator, types.EncounteredError{
				Kind:  types.ErrorKindEntryEnumerationFailed,
				Cause: readError,
			})
		}
		break
	}

	return accumulator.finalize(name), nil
}

// processEntry classifies one entry and appends it to the accumulator.
func (builder *Builder) processEntry(parentPath string, rawName string, accumulator *directoryAccumulator) {
	entryPath := filepath.Join(parentPath, rawName)
	displayName, decodeError := decodeEntryName(rawName)
	if decodeError != nil {
		builder.record(parentPath, accumulator, types.EncounteredError{
			Name:  displayName,
			Kind:  types.ErrorKindNameNotText,
			Cause: decodeError,
		})
	}

	entryInfo, typeError := builder.lstat(entryPath)
	if typeError != nil {
		builder.record(parentPath, accumulator, types.EncounteredError{
			Name:  displayName,
			Kind:  types.ErrorKindEntryTypeUnknown,
			Cause: typeError,
		})
		return
	}

	if entryInfo.IsDir() {
		childNode, childError := builder.buildDirectory(entryPath, displayName)
		if childError != nil {
			builder.record(parentPath, accumulator, types.EncounteredError{
				Name:  displayName,
				Kind:  types.ErrorKindSubdirectoryUnreadable,
				Cause: childError,
			})
			return
		}
		accumulator.dirs = append(accumulator.dirs, childNode)
		return
	}

	fileSize := entryInfo.Size()
	if fileSize < 0 {
		fileSize = 0
	}
	accumulator.files = append(accumulator.files, types.FileEntry{Name: displayName, Size: fileSize})
}

// lstat queries entry metadata without following symbolic links when the filesystem allows it.
func (builder *Builder) lstat(path string) (os.FileInfo, error) {
	if lstater, supportsLstat := builder.filesystem().(afero.Lstater); supportsLstat {
		entryInfo, _, lstatError := lstater.LstatIfPossible(path)
		return entryInfo, lstatError
	}
	return builder.filesystem().Stat(path)
}

func (builder *Builder) filesystem() afero.Fs {
	if builder.Filesystem == nil {
		builder.Filesystem = afero.NewOsFs()
	}
	return builder.Filesystem
}

func (builder *Builder) record(parentPath string, accumulator *directoryAccumulator, encounteredError types.EncounteredError) {
	accumulator.errs = append(accumulator.errs, encounteredError)
	builder.logRecorded(parentPath, encounteredError)
}

func (builder *Builder) logRecorded(path string, encounteredError types.EncounteredError) {
	if builder.Logger == nil {
		return
	}
	builder.Logger.Debug(recordedErrorMessage,
		zap.String(pathFieldName, path),
		zap.String(nameFieldName, encounteredError.Name),
		zap.String(kindFieldName, string(encounteredError.Kind)),
		zap.NamedError(errorFieldName, encounteredError.Cause),
	)
}

// decodeEntryName returns a printable name, replacing invalid UTF-8 sequences with U+FFFD.
func decodeEntryName(rawName string) (string, error) {
	if utf8.ValidString(rawName) {
		return rawName, nil
	}
	decodedName, decodeError := unicode.UTF8.NewDecoder().String(rawName)
	if decodeError != nil {
		decodedName = string([]rune(rawName))
	}
	return decodedName, errors.New(nameDecodeMessage)
}

// directoryAccumulator owns the children of one directory while it is being enumerated.
type directoryAccumulator struct {
	dirs  []types.DirectoryNode
	files []types.FileEntry
	errs  []types.EncounteredError
}

func (accumulator directoryAccumulator) finalize(name string) types.DirectoryNode {
	var totalSize int64
	for _, file := range accumulator.files {
		totalSize += file.Size
	}
	for _, directory := range accumulator.dirs {
		totalSize += directory.Size
	}
	return types.DirectoryNode{
		Name:  name,
		Size:  totalSize,
		Dirs:  accumulator.dirs,
		Files: accumulator.files,
		Errs:  accumulator.errs,
	}
}
