package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/napolitain/lob-optimizer/internal/army"
	"github.com/napolitain/lob-optimizer/internal/converter"
	"github.com/napolitain/lob-optimizer/internal/loader"
)

const dataDir = "../../data"

const searchYAML = `
mode: combat
gold: 500
manpower: 1500
k: 2
target: melee_attack
bounds:
  - min cavalry 2
  - min melee_attack(Cavalry, Infantry) 40
preset:
  - name: Line Infantry
    count: 4
`

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "search.yaml")
	require.NoError(t, os.WriteFile(path, []byte(searchYAML), 0o644))
	return path
}

func TestLoadSearchRequestFromFile(t *testing.T) {
	flags := newSearchCmd(&globalFlags{}).Flags()

	in, err := loadSearchRequest(flags, writeConfig(t))
	require.NoError(t, err)

	assert.Equal(t, "combat", in.Mode)
	assert.Equal(t, 500, in.Gold)
	assert.Equal(t, 1500, in.Manpower)
	assert.Equal(t, 2, in.K)
	assert.Equal(t, "melee_attack", in.Target)
	assert.Equal(t, []string{"min cavalry 2", "min melee_attack(Cavalry, Infantry) 40"}, in.Bounds)
	assert.Equal(t, []converter.UnitCount{{Name: "Line Infantry", Count: 4}}, in.Preset)
}

func TestLoadSearchRequestPrecedence(t *testing.T) {
	t.Setenv("LOB_GOLD", "700")
	t.Setenv("LOB_MANPOWER", "1700")
	t.Setenv("LOB_BOUNDS", "max rifles 1;min hp 5000")

	flags := newSearchCmd(&globalFlags{}).Flags()
	require.NoError(t, flags.Set("manpower", "2000"))
	require.NoError(t, flags.Set("preset", "Hussars=2,Rifles=1"))

	in, err := loadSearchRequest(flags, writeConfig(t))
	require.NoError(t, err)

	assert.Equal(t, 700, in.Gold, "environment beats the file")
	assert.Equal(t, 2000, in.Manpower, "flags beat the environment")
	assert.Equal(t, []string{"max rifles 1", "min hp 5000"}, in.Bounds)
	assert.Equal(t, []converter.UnitCount{{Name: "Hussars", Count: 2}, {Name: "Rifles", Count: 1}}, in.Preset)
}

func TestLoadSearchRequestDefaults(t *testing.T) {
	flags := newSearchCmd(&globalFlags{}).Flags()

	in, err := loadSearchRequest(flags, "")
	require.NoError(t, err)
	assert.Equal(t, "clash", in.Mode)
	assert.Equal(t, converter.DefaultK, in.K)
	assert.Empty(t, in.Bounds)
	assert.Empty(t, in.Preset)
}

func TestLoadSearchRequestMissingFile(t *testing.T) {
	flags := newSearchCmd(&globalFlags{}).Flags()
	_, err := loadSearchRequest(flags, filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

// The reference army is always a feasible answer to its own batch request.
func TestReferenceRequestAdmitsReference(t *testing.T) {
	cat, err := loader.LoadCatalog(dataDir)
	require.NoError(t, err)
	refs, err := loader.LoadReferences(dataDir, cat)
	require.NoError(t, err)

	opts := batchOptions{target: "hp", percent: 100, rangeStep: 50, k: 1}
	for _, mode := range army.AllModes() {
		ref := refs[mode]
		req, err := referenceRequest(cat, ref, opts)
		require.NoError(t, err, mode)
		require.NoError(t, req.Validate(), mode)

		assert.Equal(t, mode, req.Mode)
		assert.Equal(t, ref.GoldCost(), req.Budget.Gold)
		assert.Empty(t, req.Constraint.Violations(ref), mode)
	}
}

func TestRunBatchRejectsBadInput(t *testing.T) {
	cat, err := loader.LoadCatalog(dataDir)
	require.NoError(t, err)
	refs, err := loader.LoadReferences(dataDir, cat)
	require.NoError(t, err)

	_, err = runBatch(context.Background(), cat, refs, batchOptions{target: "hp", rangeStep: 0, k: 1}, zerolog.Nop())
	assert.Error(t, err)

	_, err = runBatch(context.Background(), cat, refs, batchOptions{target: "glory", rangeStep: 50, k: 1}, zerolog.Nop())
	assert.Error(t, err)
}

// Every mode gives up at its deadline and says why instead of failing the batch.
func TestRunBatchStopsAtTimeout(t *testing.T) {
	cat, err := loader.LoadCatalog(dataDir)
	require.NoError(t, err)
	refs, err := loader.LoadReferences(dataDir, cat)
	require.NoError(t, err)

	start := time.Now()
	opts := batchOptions{target: "hp", percent: 100, rangeStep: 50, k: 1, timeout: time.Nanosecond}
	responses, err := runBatch(context.Background(), cat, refs, opts, zerolog.Nop())
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 10*time.Second)

	require.Len(t, responses, len(army.AllModes()))
	for _, resp := range responses {
		assert.Contains(t, resp.Error, "deadline exceeded", resp.Mode)
	}
}

func TestExampleRequestsConvert(t *testing.T) {
	cat, err := loader.LoadCatalog(dataDir)
	require.NoError(t, err)

	files, err := filepath.Glob("../../examples/*.json")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, path := range files {
		t.Run(filepath.Base(path), func(t *testing.T) {
			in, err := loadSearchRequest(newSearchCmd(&globalFlags{}).Flags(), path)
			require.NoError(t, err)
			req, err := converter.ToRequest(in, cat)
			require.NoError(t, err)
			assert.NoError(t, req.Validate())
			assert.NotNil(t, req.Constraint.Target)
		})
	}
}
