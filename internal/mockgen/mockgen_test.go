package mockgen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardstream-dev/cardstream/internal/bank"
	"github.com/cardstream-dev/cardstream/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Institutions: map[string]config.Institution{
			"cube": {
				Format: "csv",
				Columns: config.ColumnMap{
					Date:         "Transaction Date",
					Description:  "Description",
					Amount:       "Amount",
					CardLastFour: "Card No",
					CardName:     "Card Name",
				},
				DateLayouts:      []string{"2006/01/02"},
				FilenameKeywords: []string{"cube"},
			},
			"esun": {
				Format:        "csv",
				Encoding:      "big5",
				HeaderKeyword: "消費日",
				DebitNegative: true,
				Columns: config.ColumnMap{
					Date:         "消費日",
					Description:  "消費明細",
					Amount:       "金額",
					CardLastFour: "卡號末四碼",
					CardName:     "卡片名稱",
				},
				DateLayouts:      []string{"01/02", "2006/01/02"},
				FilenameKeywords: []string{"esun"},
			},
			"hncb": {
				Format: "xml",
				Columns: config.ColumnMap{
					Date:         "txn_date",
					Description:  "desc",
					Amount:       "amt",
					CardLastFour: "card_no",
					CardName:     "card_name",
				},
				DateLayouts:      []string{"2006/01/02"},
				FilenameKeywords: []string{"hncb"},
			},
		},
		Cards: []config.Card{
			{LastFour: "1234", Name: "CUBE-A", AccountKey: "ACC-001"},
			{LastFour: "4321", Name: "ESUN-PI", AccountKey: "ACC-002"},
		},
	}
}

func TestGenerate_OneFilePerInstitution(t *testing.T) {
	dir := t.TempDir()
	g := New(testConfig(), Options{Rows: 10, Seed: 42, Year: 2026, Month: 1})

	paths, err := g.Generate(dir)
	require.NoError(t, err)
	require.Len(t, paths, 3)

	assert.Equal(t, "cube_202601.csv", filepath.Base(paths[0]))
	assert.Equal(t, "esun_202601.csv", filepath.Base(paths[1]))
	assert.Equal(t, "hncb_202601.xml", filepath.Base(paths[2]))
}

func TestGenerate_DeterministicForSeed(t *testing.T) {
	opts := Options{Rows: 15, Seed: 7, Year: 2026, Month: 3}

	dirA := t.TempDir()
	pathsA, err := New(testConfig(), opts).Generate(dirA)
	require.NoError(t, err)

	dirB := t.TempDir()
	pathsB, err := New(testConfig(), opts).Generate(dirB)
	require.NoError(t, err)

	require.Len(t, pathsB, len(pathsA))
	for i := range pathsA {
		a, err := os.ReadFile(pathsA[i])
		require.NoError(t, err)
		b, err := os.ReadFile(pathsB[i])
		require.NoError(t, err)
		assert.Equal(t, a, b, "file %s differs between seeded runs", filepath.Base(pathsA[i]))
	}
}

func TestGenerate_OutputParsesThroughAdapters(t *testing.T) {
	cfg := testConfig()
	dir := t.TempDir()
	paths, err := New(cfg, Options{Rows: 20, Seed: 99, Year: 2026, Month: 2}).Generate(dir)
	require.NoError(t, err)

	registry := bank.NewRegistry(cfg.Institutions)
	for _, path := range paths {
		name := filepath.Base(path)

		inst, err := registry.Detect(name)
		require.NoError(t, err, "file %s", name)
		adapter, err := registry.Get(inst)
		require.NoError(t, err)

		f, err := os.Open(path)
		require.NoError(t, err)
		res, err := adapter.Parse(f, bank.DetectPeriod(name))
		f.Close()
		require.NoError(t, err, "file %s", name)

		// Every generated row survives the real parser.
		assert.Len(t, res.Records, 20, "file %s", name)
		assert.Empty(t, res.Skipped, "file %s", name)

		for _, rec := range res.Records {
			assert.False(t, rec.Date.IsZero())
			assert.NotEmpty(t, rec.Description)
			assert.Equal(t, inst, rec.Institution)
		}
	}
}

func TestGenerate_DebitNegativeConvention(t *testing.T) {
	// The esun descriptor flips signs on parse, so generated esun spend
	// rows must come out positive again after the adapter runs.
	cfg := testConfig()
	dir := t.TempDir()
	_, err := New(cfg, Options{Rows: 30, Seed: 3, Year: 2026, Month: 1}).Generate(dir)
	require.NoError(t, err)

	registry := bank.NewRegistry(cfg.Institutions)
	adapter, err := registry.Get("esun")
	require.NoError(t, err)

	f, err := os.Open(filepath.Join(dir, "esun_202601.csv"))
	require.NoError(t, err)
	defer f.Close()

	res, err := adapter.Parse(f, bank.Period{Year: 2026, Month: 1})
	require.NoError(t, err)
	require.NotEmpty(t, res.Records)

	positives := 0
	for _, rec := range res.Records {
		if rec.Amount.IsPositive() {
			positives++
		}
	}
	assert.Greater(t, positives, len(res.Records)/2, "most rows are spend and parse positive")
}

func TestNew_Defaults(t *testing.T) {
	g := New(testConfig(), Options{})
	assert.Equal(t, 25, g.opts.Rows)
	assert.Equal(t, 2026, g.opts.Year)
	assert.Equal(t, 1, g.opts.Month)
	assert.NotZero(t, g.opts.Seed)
}
