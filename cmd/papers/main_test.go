package main

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"paperindex/application/loading"
	"paperindex/application/queries"
	"paperindex/domain/config"
	"paperindex/domain/paper"
	"paperindex/domain/projection"
	"paperindex/infrastructure/persistence/memory"
	"paperindex/pkg/errors"
)

func TestNewEnvelope(t *testing.T) {
	result := &queries.Result{
		QueryType:  queries.TypePaperByID,
		Parameters: map[string]interface{}{"arxiv_id": "0001"},
		Papers:     []queries.PaperSummary{{ArxivID: "0001", Title: "T"}},
		Count:      1,
	}

	var buf bytes.Buffer
	require.NoError(t, writeEnvelope(&buf, newEnvelope(result, true, 1500*time.Microsecond)))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "paper_by_id", decoded["query_type"])
	assert.Equal(t, 1.5, decoded["execution_time_ms"])
	assert.Equal(t, float64(1), decoded["count"])
	assert.Equal(t, "0001", decoded["results"].(map[string]interface{})["arxiv_id"])

	list := newEnvelope(result, false, 0)
	assert.Equal(t, result.Papers, list.Results)

	miss := newEnvelope(&queries.Result{QueryType: queries.TypePaperByID, Papers: []queries.PaperSummary{}}, true, 0)
	assert.Nil(t, miss.Results)
	assert.Equal(t, 0, miss.Count)
}

func TestPrintLoadReport(t *testing.T) {
	store := memory.NewStore()
	cfg := config.DefaultDomainConfig()
	coordinator := loading.NewCoordinator(store, projection.NewProjector(nil, cfg.KeywordTopK), nil, nil, cfg, zap.NewNop())

	report, err := coordinator.Load(context.Background(), paper.NewSliceSource([]paper.Paper{
		{ID: "0001", Authors: []string{"Ann"}, Categories: []string{"cs.LG"}, Published: "2024-01-01"},
		{ID: "", Authors: []string{"Bo"}, Categories: []string{"cs.LG"}, Published: "2024-01-02"},
	}))
	require.NoError(t, err)

	var buf bytes.Buffer
	printLoadReport(&buf, report)
	printBreakdown(context.Background(), &buf, store)

	out := buf.String()
	assert.Contains(t, out, "Loaded 1 papers\n")
	assert.Contains(t, out, "Created 2 DynamoDB items (denormalized).\n")
	assert.Contains(t, out, "Denormalization factor: 2.00\n")
	assert.Contains(t, out, "Skipped 1 papers:\n")
	assert.Contains(t, out, "Main table items: 2\n")
	assert.Contains(t, out, "author items: 1\n")
}

func TestUnwrittenIDs(t *testing.T) {
	err := errors.NewLoadPartialFailureError([]string{"a", "b"}, stderrors.New("throttled"))
	assert.Equal(t, []string{"a", "b"}, unwrittenIDs(err))
	assert.Nil(t, unwrittenIDs(stderrors.New("other")))
}
