package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"portfolio/internal/core"
)

type memoryExperience struct {
	entries   []core.Experience
	fetchErr  error
	createErr error
}

func (m *memoryExperience) FetchExperience(ctx context.Context) ([]core.Experience, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return m.entries, nil
}

func (m *memoryExperience) CreateExperience(ctx context.Context, e core.Experience) (*core.Experience, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	e.ID = fmt.Sprintf("exp-%d", len(m.entries)+1)
	m.entries = append(m.entries, e)
	return &e, nil
}

func TestSeedExperience(t *testing.T) {
	entries := core.DefaultExperience()
	existing := []core.Experience{{ID: "old", Title: "Engineer", Company: "Acme"}}

	tests := []struct {
		name        string
		src         *memoryExperience
		force       bool
		wantCreated int
		wantStored  int
		wantErr     bool
	}{
		{"empty store", &memoryExperience{}, false, len(entries), len(entries), false},
		{"existing entries are kept", &memoryExperience{entries: existing}, false, 0, 1, false},
		{"force adds to existing", &memoryExperience{entries: existing}, true, len(entries), len(entries) + 1, false},
		{"fetch failure", &memoryExperience{fetchErr: errors.New("down")}, false, 0, 0, true},
		{"create failure", &memoryExperience{createErr: errors.New("denied")}, false, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			created, err := seedExperience(context.Background(), tt.src, entries, tt.force, &out)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if created != tt.wantCreated {
				t.Errorf("created = %d, want %d", created, tt.wantCreated)
			}
			if len(tt.src.entries) != tt.wantStored {
				t.Errorf("stored = %d, want %d", len(tt.src.entries), tt.wantStored)
			}
		})
	}
}

func TestSeedExperience_Output(t *testing.T) {
	var out bytes.Buffer
	src := &memoryExperience{}
	if _, err := seedExperience(context.Background(), src, core.DefaultExperience()[:1], false, &out); err != nil {
		t.Fatalf("seedExperience failed: %v", err)
	}
	if !strings.Contains(out.String(), "Software Engineer at Seansoft Corporation") {
		t.Errorf("output = %q", out.String())
	}
	if src.entries[0].Order != 0 || src.entries[0].ID != "exp-1" {
		t.Errorf("stored = %+v", src.entries[0])
	}
}
