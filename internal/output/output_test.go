package output_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/tyemirov/dirsize/internal/output"
	"github.com/tyemirov/dirsize/internal/types"
)

func sampleTree() types.DirectoryNode {
	return types.DirectoryNode{
		Name:  "root",
		Size:  100,
		Files: []types.FileEntry{{Name: "a.txt", Size: 5}},
		Dirs: []types.DirectoryNode{
			{
				Name:  "sub",
				Size:  10,
				Files: []types.FileEntry{{Name: "b.txt", Size: 10}},
			},
		},
		Errs: []types.EncounteredError{{Name: "locked", Kind: types.ErrorKindSubdirectoryUnreadable, Cause: errors.New("permission denied")}},
	}
}

func TestWriteTreeRawMatchesReferenceLayout(t *testing.T) {
	var buffer bytes.Buffer
	if writeError := output.WriteTreeRaw(&buffer, sampleTree(), output.RawOptions{}); writeError != nil {
		t.Fatalf("WriteTreeRaw error: %v", writeError)
	}

	expected := "\\-root100:\n" +
		" \\-a.txt\t5 bytes\n" +
		" \\-sub10:\n" +
		"  \\-b.txt\t10 bytes\n"
	if buffer.String() != expected {
		t.Fatalf("unexpected raw output:\n%q\nwant\n%q", buffer.String(), expected)
	}
}

func TestWriteTreeRawIndentationGrowsPerLevel(t *testing.T) {
	deepest := types.DirectoryNode{Name: "c", Files: []types.FileEntry{{Name: "leaf", Size: 1}}, Size: 1}
	middle := types.DirectoryNode{Name: "b", Dirs: []types.DirectoryNode{deepest}, Size: 1}
	root := types.DirectoryNode{Name: "a", Dirs: []types.DirectoryNode{middle}, Size: 1}

	var buffer bytes.Buffer
	if writeError := output.WriteTreeRaw(&buffer, root, output.RawOptions{}); writeError != nil {
		t.Fatalf("WriteTreeRaw error: %v", writeError)
	}
	lines := strings.Split(strings.TrimSuffix(buffer.String(), "\n"), "\n")
	expectedPrefixes := []string{"\\-a1:", " \\-b1:", "  \\-c1:", "   \\-leaf\t1 bytes"}
	if len(lines) != len(expectedPrefixes) {
		t.Fatalf("unexpected line count %d: %q", len(lines), lines)
	}
	for index, line := range lines {
		if line != expectedPrefixes[index] {
			t.Fatalf("line %d: got %q want %q", index, line, expectedPrefixes[index])
		}
	}
}

func TestWriteTreeRawShowErrors(t *testing.T) {
	testCases := []struct {
		name       string
		showErrors bool
		expectLine bool
	}{
		{name: "hidden_by_default", showErrors: false, expectLine: false},
		{name: "shown_when_enabled", showErrors: true, expectLine: true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			var buffer bytes.Buffer
			if writeError := output.WriteTreeRaw(&buffer, sampleTree(), output.RawOptions{ShowErrors: testCase.showErrors}); writeError != nil {
				t.Fatalf("WriteTreeRaw error: %v", writeError)
			}
			containsLine := strings.Contains(buffer.String(), " \\-[unreadable: locked]\n")
			if containsLine != testCase.expectLine {
				t.Fatalf("error line presence: got %v want %v\n%s", containsLine, testCase.expectLine, buffer.String())
			}
		})
	}
}

func TestWriteTreeRawErrorLinesFollowFiles(t *testing.T) {
	var buffer bytes.Buffer
	if writeError := output.WriteTreeRaw(&buffer, sampleTree(), output.RawOptions{ShowErrors: true}); writeError != nil {
		t.Fatalf("WriteTreeRaw error: %v", writeError)
	}
	raw := buffer.String()
	fileIndex := strings.Index(raw, "a.txt")
	errorIndex := strings.Index(raw, "[unreadable: locked]")
	subdirectoryIndex := strings.Index(raw, "sub10:")
	if !(fileIndex < errorIndex && errorIndex < subdirectoryIndex) {
		t.Fatalf("unexpected ordering in:\n%s", raw)
	}
}

func TestWriteTreeJSON(t *testing.T) {
	var buffer bytes.Buffer
	if writeError := output.WriteTreeJSON(&buffer, sampleTree()); writeError != nil {
		t.Fatalf("WriteTreeJSON error: %v", writeError)
	}
	var decoded types.DirectoryOutput
	if decodeError := json.Unmarshal(buffer.Bytes(), &decoded); decodeError != nil {
		t.Fatalf("decoding json: %v", decodeError)
	}
	if decoded.Name != "root" || decoded.Size != 100 || len(decoded.Dirs) != 1 || len(decoded.Files) != 1 {
		t.Fatalf("unexpected decoded tree: %+v", decoded)
	}
	if len(decoded.Errors) != 1 || decoded.Errors[0].Kind != string(types.ErrorKindSubdirectoryUnreadable) || decoded.Errors[0].Cause != "permission denied" {
		t.Fatalf("unexpected decoded errors: %+v", decoded.Errors)
	}
	if !strings.Contains(buffer.String(), `"dirs": []`) {
		t.Fatalf("expected empty dirs to encode as []:\n%s", buffer.String())
	}
}

func TestWriteTreeXML(t *testing.T) {
	var buffer bytes.Buffer
	if writeError := output.WriteTreeXML(&buffer, sampleTree()); writeError != nil {
		t.Fatalf("WriteTreeXML error: %v", writeError)
	}
	encoded := buffer.String()
	for _, fragment := range []string{"<?xml", "<directory>", "<name>sub</name>", "<size>100</size>", "<kind>subdirectory_unreadable</kind>"} {
		if !strings.Contains(encoded, fragment) {
			t.Fatalf("expected %q in:\n%s", fragment, encoded)
		}
	}
}

func TestRenderRejectsUnknownFormat(t *testing.T) {
	var buffer bytes.Buffer
	if renderError := output.Render(&buffer, sampleTree(), "yaml", output.RawOptions{}); renderError == nil {
		t.Fatalf("expected error for unsupported format")
	}
	if output.IsSupportedFormat("yaml") {
		t.Fatalf("yaml should not be supported")
	}
	for _, format := range []string{types.FormatRaw, types.FormatJSON, "XML"} {
		if !output.IsSupportedFormat(format) {
			t.Fatalf("%s should be supported", format)
		}
	}
}
