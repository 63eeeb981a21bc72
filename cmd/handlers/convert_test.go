package handlers

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"portfolio/internal/blocks"
)

func TestRunConvert(t *testing.T) {
	md := "## Setup\n\nInstall it:\n\n```sh\ngo install ./...\n```\n"

	var out bytes.Buffer
	if err := runConvert(strings.NewReader(md), &out, false, false); err != nil {
		t.Fatalf("runConvert failed: %v", err)
	}

	var pbs []blocks.PortableBlock
	if err := json.Unmarshal(out.Bytes(), &pbs); err != nil {
		t.Fatalf("output is not portable text: %v", err)
	}
	if len(pbs) != 3 {
		t.Fatalf("blocks = %d, want 3", len(pbs))
	}
	if pbs[0].Style != "h2" || pbs[2].Type != blocks.TypeCode || pbs[2].Language != "bash" {
		t.Errorf("blocks = %+v", pbs)
	}
}

func TestRunConvert_HTML(t *testing.T) {
	var out bytes.Buffer
	if err := runConvert(strings.NewReader("Some **bold** words"), &out, false, true); err != nil {
		t.Fatalf("runConvert failed: %v", err)
	}
	if !strings.Contains(out.String(), "<strong>bold</strong>") {
		t.Errorf("html = %q", out.String())
	}
}

func TestRunConvert_Strict(t *testing.T) {
	md := "intro\n\n```go\nfunc main() {}\n"

	if err := runConvert(strings.NewReader(md), &bytes.Buffer{}, false, false); err != nil {
		t.Errorf("lenient conversion should drop the fence: %v", err)
	}
	if err := runConvert(strings.NewReader(md), &bytes.Buffer{}, true, false); err == nil {
		t.Error("strict conversion should reject an unterminated fence")
	}
}
