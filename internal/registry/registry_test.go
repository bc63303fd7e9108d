package registry

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/spendkeeper/internal/common"
	"github.com/dmitrijs2005/spendkeeper/internal/cryptox"
	"github.com/dmitrijs2005/spendkeeper/internal/filex"
	"github.com/dmitrijs2005/spendkeeper/internal/logging"
	"github.com/dmitrijs2005/spendkeeper/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestRegistry(t *testing.T, dir string) *Registry {
	t.Helper()
	logger := logging.NewDiscardLogger()
	r, err := Open(context.Background(), filex.NewStore(logger), dir, logger)
	require.NoError(t, err)
	return r
}

func readJSON(t *testing.T, path string, v any) {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, v))
}

func TestOpen_Fresh(t *testing.T) {
	dir := t.TempDir()
	r := openTestRegistry(t, dir)

	assert.DirExists(t, filepath.Join(dir, "users"))

	var accounts map[string]any
	readJSON(t, filepath.Join(dir, "users.json"), &accounts)
	assert.Empty(t, accounts)

	assert.Equal(t, SchemaVersion, r.Version(context.Background()))
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	r := openTestRegistry(t, dir)

	acc, err := r.Create(ctx, "alice", "pw")
	require.NoError(t, err)

	want := models.Account{
		Username:       "alice",
		PasswordHash:   acc.PasswordHash,
		JournalFile:    "user_alice_data.csv",
		CategoriesFile: "user_alice_categories.json",
		BalanceFile:    "user_alice_balance.json",
	}
	if diff := cmp.Diff(want, acc); diff != "" {
		t.Errorf("account mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, cryptox.VerifyPassword(acc.PasswordHash, []byte("pw")))

	got, err := r.Lookup(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, acc, got)

	journal, err := os.ReadFile(filepath.Join(dir, "users", "user_alice_data.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Date,Description,Category,Amount\n", string(journal))

	var balance map[string]any
	readJSON(t, filepath.Join(dir, "users", "user_alice_balance.json"), &balance)
	assert.Equal(t, map[string]any{"balance": float64(0)}, balance)

	raw, err := os.ReadFile(filepath.Join(dir, "users", "user_alice_categories.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"Food": ["grocery", "restaurant", "lunch"],
		"Transport": ["uber", "taxi", "gas"],
		"Entertainment": ["movie", "game", "concert"],
		"Bills": ["electric", "water", "internet"]
	}`, string(raw))

	var registry map[string]map[string]string
	readJSON(t, filepath.Join(dir, "users.json"), &registry)
	assert.Equal(t, "user_alice_data.csv", registry["alice"]["data_file"])
	assert.Equal(t, acc.PasswordHash, registry["alice"]["password_hash"])
}

func TestCreate_Duplicate(t *testing.T) {
	ctx := context.Background()
	r := openTestRegistry(t, t.TempDir())

	first, err := r.Create(ctx, "bob", "p1")
	require.NoError(t, err)

	_, err = r.Create(ctx, "bob", "p2")
	assert.ErrorIs(t, err, common.ErrAlreadyExists)

	got, err := r.Lookup(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, first.PasswordHash, got.PasswordHash)

	// usernames are case-sensitive
	_, err = r.Create(ctx, "Bob", "p2")
	assert.NoError(t, err)
}

func TestCreate_Validation(t *testing.T) {
	ctx := context.Background()
	r := openTestRegistry(t, t.TempDir())

	for _, tc := range []struct{ user, pass string }{
		{"", "pw"},
		{"carol", ""},
		{"../etc", "pw"},
		{"a/b", "pw"},
		{`a\b`, "pw"},
		{".hidden", "pw"},
		{"tab\there", "pw"},
	} {
		_, err := r.Create(ctx, tc.user, tc.pass)
		assert.ErrorIs(t, err, common.ErrValidation, "%q", tc.user)
	}

	accounts, _ := r.Load(ctx)
	assert.Empty(t, accounts)
}

func TestCreate_CorruptRegistryRefused(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	r := openTestRegistry(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "users.json"), []byte("{not json"), 0o600))

	accounts, res := r.Load(ctx)
	assert.Empty(t, accounts)
	assert.Equal(t, filex.StatusCorrupt, res.Status)

	_, err := r.Create(ctx, "dave", "pw")
	assert.ErrorIs(t, err, common.ErrCorruptData)

	b, err := os.ReadFile(filepath.Join(dir, "users.json"))
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(b))
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	r := openTestRegistry(t, t.TempDir())

	_, err := r.Create(ctx, "alice", "secret")
	require.NoError(t, err)

	assert.NoError(t, r.Authenticate(ctx, "alice", "secret"))
	assert.ErrorIs(t, r.Authenticate(ctx, "alice", "wrong"), common.ErrUnauthorized)
	assert.ErrorIs(t, r.Authenticate(ctx, "nobody", "secret"), common.ErrUnauthorized)
	assert.ErrorIs(t, r.Authenticate(ctx, "Alice", "secret"), common.ErrUnauthorized)
}

func TestAuthenticate_UpgradesLegacyHash(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	r := openTestRegistry(t, dir)

	_, err := r.Create(ctx, "erin", "pw")
	require.NoError(t, err)

	accounts, _ := r.Load(ctx)
	acc := accounts["erin"]
	acc.PasswordHash = cryptox.LegacyDigest([]byte("pw"))
	accounts["erin"] = acc
	require.NoError(t, r.save(ctx, accounts))

	require.NoError(t, r.Authenticate(ctx, "erin", "pw"))

	got, err := r.Lookup(ctx, "erin")
	require.NoError(t, err)
	assert.False(t, cryptox.IsLegacy(got.PasswordHash))
	assert.NoError(t, r.Authenticate(ctx, "erin", "pw"))
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	r := openTestRegistry(t, dir)

	acc, err := r.Create(ctx, "alice", "pw")
	require.NoError(t, err)
	pending := r.Path(models.PendingFileName("alice"))
	require.NoError(t, os.WriteFile(pending, []byte("{}"), 0o600))

	require.NoError(t, r.Delete(ctx, "alice"))

	for _, p := range append(r.Files(acc), pending) {
		assert.NoFileExists(t, p)
	}
	_, err = r.Lookup(ctx, "alice")
	assert.ErrorIs(t, err, common.ErrNotFound)

	assert.ErrorIs(t, r.Delete(ctx, "alice"), common.ErrNotFound)
}

func TestDelete_MissingFilesAreFine(t *testing.T) {
	ctx := context.Background()
	r := openTestRegistry(t, t.TempDir())

	acc, err := r.Create(ctx, "frank", "pw")
	require.NoError(t, err)
	require.NoError(t, os.Remove(r.Path(acc.BalanceFile)))

	require.NoError(t, r.Delete(ctx, "frank"))
	accounts, _ := r.Load(ctx)
	assert.NotContains(t, accounts, "frank")
}

func TestOpen_MigratesLegacyRegistry(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "users"), 0o700))

	legacy := `{"gina": {"password_hash": "` + cryptox.LegacyDigest([]byte("pw")) + `",
		"data_file": "user_gina_data.csv", "categories_file": "user_gina_categories.json"}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "users.json"), []byte(legacy), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "users", "user_gina_data.csv"),
		[]byte("Date,Description,Category,Amount\n2024-01-02,Lunch,Food,12.5\n"), 0o600))

	r := openTestRegistry(t, dir)

	acc, err := r.Lookup(ctx, "gina")
	require.NoError(t, err)
	assert.Equal(t, "user_gina_balance.json", acc.BalanceFile)
	for _, p := range r.Files(acc) {
		assert.FileExists(t, p)
	}

	// existing journal is kept as is
	b, err := os.ReadFile(r.Path(acc.JournalFile))
	require.NoError(t, err)
	assert.Contains(t, string(b), "Lunch")

	assert.NoError(t, r.Authenticate(ctx, "gina", "pw"))
	assert.Equal(t, SchemaVersion, r.Version(ctx))
}

func TestOpen_UpToDateDoesNotHeal(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	r := openTestRegistry(t, dir)

	acc, err := r.Create(ctx, "hank", "pw")
	require.NoError(t, err)
	require.NoError(t, os.Remove(r.Path(acc.CategoriesFile)))

	r = openTestRegistry(t, dir)
	assert.NoFileExists(t, r.Path(acc.CategoriesFile))

	n, err := r.Heal(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.FileExists(t, r.Path(acc.CategoriesFile))

	n, err = r.Heal(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLoad_FillsMissingFileRefsAfterMigration(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	openTestRegistry(t, dir)

	record := `{"gina": {"password_hash": "` + cryptox.LegacyDigest([]byte("pw")) + `",
		"data_file": "user_gina_data.csv", "categories_file": "user_gina_categories.json"}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "users.json"), []byte(record), 0o600))

	r := openTestRegistry(t, dir)

	acc, err := r.Lookup(ctx, "gina")
	require.NoError(t, err)
	assert.Equal(t, "user_gina_balance.json", acc.BalanceFile)
	assert.Equal(t, filepath.Join(dir, "users", "user_gina_balance.json"), r.Path(acc.BalanceFile))
	assert.Len(t, r.Files(acc), 3)

	// the registry file itself is left as written
	var raw map[string]map[string]string
	readJSON(t, filepath.Join(dir, "users.json"), &raw)
	assert.NotContains(t, raw["gina"], "balance_file")
}

func TestPath_EmptyName(t *testing.T) {
	r := openTestRegistry(t, t.TempDir())
	assert.Empty(t, r.Path(""))
}

func TestOpen_FailedHealDoesNotBlockStart(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "users"), 0o700))

	legacy := `{"ivan": {"password_hash": "` + cryptox.LegacyDigest([]byte("pw")) + `",
		"data_file": "gone/user_ivan_data.csv", "categories_file": "user_ivan_categories.json"}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "users.json"), []byte(legacy), 0o600))

	r := openTestRegistry(t, dir)

	assert.Zero(t, r.Version(ctx), "marker is not written, the next start retries")
	acc, err := r.Lookup(ctx, "ivan")
	require.NoError(t, err)
	assert.FileExists(t, r.Path(acc.CategoriesFile))
	assert.FileExists(t, r.Path(acc.BalanceFile))
	assert.NoFileExists(t, r.Path(acc.JournalFile))

	// the filled balance reference was still saved
	var raw map[string]map[string]string
	readJSON(t, filepath.Join(dir, "users.json"), &raw)
	assert.Equal(t, "user_ivan_balance.json", raw["ivan"]["balance_file"])
}

func TestOpen_SweepsStaleTempFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "users"), 0o700))
	stale := filepath.Join(dir, "users", "user_a_balance.json.99.tmp")
	require.NoError(t, os.WriteFile(stale, []byte("{"), 0o600))
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	openTestRegistry(t, dir)

	assert.NoFileExists(t, stale)
}

func TestValidateUsername(t *testing.T) {
	assert.NoError(t, ValidateUsername("alice"))
	assert.NoError(t, ValidateUsername("jean.luc"))
	assert.NoError(t, ValidateUsername("Zoë_42"))
	assert.ErrorIs(t, ValidateUsername("a..b"), common.ErrValidation)
	assert.ErrorIs(t, ValidateUsername("c:d"), common.ErrValidation)
}
