package state

import (
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codelens/driftscan/internal/producer"
	"github.com/codelens/driftscan/internal/settings"
	"github.com/codelens/driftscan/internal/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(t.TempDir())
}

func TestLoadMissingDocumentMeansNoActiveRun(t *testing.T) {
	store := newTestStore(t)

	st, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, st)
}

func TestCreateInitializesRun(t *testing.T) {
	store := newTestStore(t)

	st, err := store.Create(settings.Default())
	require.NoError(t, err)

	assert.NotEmpty(t, st.ID)
	assert.Equal(t, StatusPending, st.Status)
	assert.Equal(t, PhaseSettingsCheck, st.Phase.Current)
	assert.Empty(t, st.Phase.History)
	assert.Empty(t, st.Producers)
	assert.Equal(t, SchemaVersion, st.SchemaVersion)

	// The document is on disk and reloadable.
	reloaded, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, reloaded)
	assert.Equal(t, st.ID, reloaded.ID)
	assert.Equal(t, settings.Default(), reloaded.Settings)
}

func TestCreateReplacesPreviousRun(t *testing.T) {
	store := newTestStore(t)

	first, err := store.Create(settings.Default())
	require.NoError(t, err)
	second, err := store.Create(settings.Default())
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)

	st, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, second.ID, st.ID)
}

func TestStartPhaseRejectsUnknownName(t *testing.T) {
	store := newTestStore(t)
	created, err := store.Create(settings.Default())
	require.NoError(t, err)

	_, err = store.StartPhase(Phase("warp-drive"))
	assert.ErrorIs(t, err, ErrInvalidPhase)

	// State unchanged.
	st, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, created.Phase.Current, st.Phase.Current)
	assert.Empty(t, st.Phase.History)
	assert.Equal(t, StatusPending, st.Status)
}

func TestStartPhaseAppendsHistoryAndMarksInProgress(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Create(settings.Default())
	require.NoError(t, err)

	st, err := store.StartPhase(PhaseSettingsCheck)
	require.NoError(t, err)

	assert.Equal(t, PhaseSettingsCheck, st.Phase.Current)
	assert.Equal(t, StatusInProgress, st.Status)
	require.Len(t, st.Phase.History, 1)
	assert.Equal(t, PhaseInProgress, st.Phase.History[0].Status)
	assert.Nil(t, st.Phase.History[0].CompletedAt)
}

func TestStartPhaseWithoutRun(t *testing.T) {
	store := newTestStore(t)
	_, err := store.StartPhase(PhaseSettingsCheck)
	assert.ErrorIs(t, err, ErrNoActiveScan)
}

func TestCompletePhaseFinishesEntryAndAdvances(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Create(settings.Default())
	require.NoError(t, err)
	_, err = store.StartPhase(PhaseSettingsCheck)
	require.NoError(t, err)

	st, err := store.CompletePhase(map[string]any{"ok": true})
	require.NoError(t, err)

	assert.Equal(t, PhaseParallelScan, st.Phase.Current)
	require.Len(t, st.Phase.History, 1)
	entry := st.Phase.History[0]
	assert.Equal(t, PhaseCompleted, entry.Status)
	require.NotNil(t, entry.CompletedAt)
	assert.False(t, entry.CompletedAt.Before(entry.StartedAt))
}

func TestCompletePhaseWalksWholeSequence(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Create(settings.Default())
	require.NoError(t, err)

	seq := PhaseSequence()
	var st *ScanState
	for i := 0; i < len(seq)-1; i++ {
		_, err = store.StartPhase(seq[i])
		require.NoError(t, err)
		st, err = store.CompletePhase(nil)
		require.NoError(t, err)
		assert.Equal(t, seq[i+1], st.Phase.Current)
	}

	// Terminal phase reached: run completed, completion stamped.
	assert.Equal(t, PhaseComplete, st.Phase.Current)
	assert.Equal(t, StatusCompleted, st.Status)
	require.NotNil(t, st.CompletedAt)
	require.Len(t, st.Phase.History, len(seq)-1)
}

func TestCompletePhaseWithoutStartAppendsEntry(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Create(settings.Default())
	require.NoError(t, err)

	st, err := store.CompletePhase("checked")
	require.NoError(t, err)

	require.Len(t, st.Phase.History, 1)
	assert.Equal(t, PhaseSettingsCheck, st.Phase.History[0].Phase)
	assert.Equal(t, PhaseCompleted, st.Phase.History[0].Status)
	assert.Equal(t, PhaseParallelScan, st.Phase.Current)
}

func TestRecordProducerResultWithoutRunIsAbsenceSignal(t *testing.T) {
	store := newTestStore(t)

	ok, err := store.RecordProducerResult(producer.SourceDocs, &producer.Result{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecordProducerResultRejectsUnknownID(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Create(settings.Default())
	require.NoError(t, err)

	_, err = store.RecordProducerResult("telemetry", &producer.Result{})
	assert.Error(t, err)
}

func TestRecordProducerResultRoundTripsPayload(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Create(settings.Default())
	require.NoError(t, err)

	ok, err := store.RecordProducerResult(producer.SourceDocs, &producer.Result{
		DocumentedFeatures: []string{"user authentication", "caching layer"},
		PlannedWork:        &producer.PlannedWork{CheckboxTotal: 20, CompletedCount: 2},
		Summary:            &producer.DocSummary{KeyDocsPresent: producer.KeyDocs{Readme: true}},
	})
	require.NoError(t, err)
	assert.True(t, ok)

	st, err := store.Load()
	require.NoError(t, err)
	rec := st.Producers[producer.SourceDocs]
	require.NotNil(t, rec)
	assert.Equal(t, "completed", rec.Status)
	assert.False(t, rec.CompletedAt.IsZero())
	require.NotNil(t, rec.Result)
	assert.Equal(t, []string{"user authentication", "caching layer"}, rec.Result.DocumentedFeatures)
	assert.Equal(t, 20, rec.Result.PlannedWork.CheckboxTotal)
	assert.True(t, rec.Result.Summary.KeyDocsPresent.Readme)
}

func TestRecordProducerResultOverwritesOnRetry(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Create(settings.Default())
	require.NoError(t, err)

	_, err = store.RecordProducerResult(producer.SourceCode, &producer.Result{
		Patterns: &producer.Patterns{HasTests: false},
	})
	require.NoError(t, err)
	_, err = store.RecordProducerResult(producer.SourceCode, &producer.Result{
		Patterns: &producer.Patterns{HasTests: true},
	})
	require.NoError(t, err)

	st, err := store.Load()
	require.NoError(t, err)
	assert.True(t, st.Producers[producer.SourceCode].Result.Patterns.HasTests)
}

func TestConcurrentProducerWritesAllSurvive(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Create(settings.Default())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, id := range producer.SourceIDs() {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			ok, err := store.RecordProducerResult(id, &producer.Result{})
			assert.NoError(t, err)
			assert.True(t, ok)
		}(id)
	}
	wg.Wait()

	st, err := store.Load()
	require.NoError(t, err)
	require.Len(t, st.Producers, 3)
	for _, id := range producer.SourceIDs() {
		assert.Contains(t, st.Producers, id)
	}
}

func TestAppendFindingsPreservesOrder(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Create(settings.Default())
	require.NoError(t, err)

	first := []types.Finding{
		{Type: "plan-stagnation", Severity: types.SeverityHigh, Description: "a"},
		{Type: "scope-overcommit", Severity: types.SeverityMedium, Description: "b"},
	}
	second := []types.Finding{
		{Type: "milestone-slippage", Severity: types.SeverityHigh, Description: "c"},
	}

	require.NoError(t, store.AppendFindings(CategoryDrift, first))
	require.NoError(t, store.AppendFindings(CategoryDrift, second))

	st, err := store.Load()
	require.NoError(t, err)
	require.Len(t, st.Findings.Drift, 3)
	assert.Equal(t, "a", st.Findings.Drift[0].Description)
	assert.Equal(t, "b", st.Findings.Drift[1].Description)
	assert.Equal(t, "c", st.Findings.Drift[2].Description)
}

func TestAppendFindingsRejectsUnknownCategory(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Create(settings.Default())
	require.NoError(t, err)

	err = store.AppendFindings("anomalies", []types.Finding{{Type: "x"}})
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestSetReport(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Create(settings.Default())
	require.NoError(t, err)

	report := &types.Report{
		Summary:     types.ReportSummary{DriftCount: 2, GapCount: 1, WorkItemCount: 5},
		Markdown:    "# Drift Report\n",
		GeneratedAt: time.Now(),
	}
	require.NoError(t, store.SetReport(report))

	st, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, st.Report)
	assert.Equal(t, 2, st.Report.Summary.DriftCount)
	assert.Equal(t, "# Drift Report\n", st.Report.Markdown)
}

func TestClearRemovesDocument(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Create(settings.Default())
	require.NoError(t, err)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear()) // already gone: still fine

	st, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, st)
}

func TestSaveLeavesNoTempFileBehind(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Create(settings.Default())
	require.NoError(t, err)

	_, err = os.Stat(store.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
