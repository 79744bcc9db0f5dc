package commands

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/mbg_dapur_ledger/internal/platform/config"
)

const emptyTrialBalance = "Kode Akun,Nama Akun,Tipe,Debit,Kredit\nTOTAL,,,0,0\n"

func run(t *testing.T, driver string, args ...string) (string, error) {
	t.Helper()
	a := &app{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		loadConfig: func() (*config.Config, error) {
			return &config.Config{
				StorageDriver:         driver,
				EntryNumberPrefix:     "JE",
				AutoEntryNumberPrefix: "AJ",
			}, nil
		},
	}
	cmd := newRootCommand(a)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTrialBalance_Stdout(t *testing.T) {
	out, err := run(t, config.StorageMemory, "trial-balance", "--as-of", "2025-03-31")
	require.NoError(t, err)
	assert.Equal(t, emptyTrialBalance, out)
}

func TestTrialBalance_OutFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "neraca.csv")

	out, err := run(t, config.StorageMemory, "trial-balance", "--out", path)
	require.NoError(t, err)
	assert.Empty(t, out)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, emptyTrialBalance, string(content))
}

func TestTrialBalance_InvalidDate(t *testing.T) {
	_, err := run(t, config.StorageMemory, "trial-balance", "--as-of", "31/03/2025")
	assert.ErrorContains(t, err, "--as-of")
}

func TestReconcile_Consistent(t *testing.T) {
	out, err := run(t, config.StorageMemory, "reconcile")
	require.NoError(t, err)
	assert.Equal(t, "balances consistent\n", out)
}

func TestStorageFlagOverridesConfig(t *testing.T) {
	out, err := run(t, config.StoragePostgres, "--storage", "MEMORY", "reconcile")
	require.NoError(t, err)
	assert.Equal(t, "balances consistent\n", out)
}

func TestMigrate_NeedsPostgres(t *testing.T) {
	_, err := run(t, config.StorageMemory, "migrate", "up")
	assert.ErrorContains(t, err, "postgres")
}

func TestMigrate_RejectsUnknownDirection(t *testing.T) {
	_, err := run(t, config.StoragePostgres, "migrate", "sideways")
	assert.Error(t, err)
}
