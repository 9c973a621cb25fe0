package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/domain"
)

func TestPrinter_NoColorOffTerminal(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.Success("done")
	p.Error("failed")
	assert.Equal(t, "✓ done\n✗ failed\n", buf.String())
	assert.NotContains(t, buf.String(), "\033[")
}

func TestPrinter_Session(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.Session(domain.Session{})
	assert.Contains(t, buf.String(), "not logged in")

	buf.Reset()
	user := &domain.User{ID: "u-1", Name: "Ada", Phone: "2348000000000", Stores: []domain.Store{domain.NewTopLevel("s-1", "Mama Put")}}
	p.Session(domain.Session{User: user, Token: "t", IsAuthenticated: true, ActiveStoreID: "s-1"})
	out := buf.String()
	assert.Contains(t, out, "logged in as Ada")
	assert.Contains(t, out, "Mama Put (s-1)")
}

func TestPrinter_StoresMarksActive(t *testing.T) {
	var buf bytes.Buffer
	primary := domain.NewTopLevel("s-1", "Mama Put")
	primary.Branches = []domain.Store{domain.NewBranch("b-1", "Ikeja", "s-1")}

	NewPrinter(&buf).Stores([]domain.Store{primary}, "b-1")
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[2], "*"))
	assert.Contains(t, lines[2], "branch")
}

func TestGenerateCompletion(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish"} {
		var buf bytes.Buffer
		require.NoError(t, GenerateCompletion(&buf, shell))
		assert.Contains(t, buf.String(), "vendorctl")
	}
	assert.Error(t, GenerateCompletion(&bytes.Buffer{}, "powershell"))
}

func TestInstallCompletion(t *testing.T) {
	home := t.TempDir()
	path, err := InstallCompletion(home, "fish")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "fish", "completions", "vendorctl.fish"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, FishCompletion, string(data))
}
