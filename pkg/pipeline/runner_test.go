package pipeline

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/laneflow/laneflow/pkg/cache"
	"github.com/laneflow/laneflow/pkg/errors"
)

const sampleInput = `checkout -- type --> Procedure
checkout -- hasSequencedItem --> step1:scan_items
checkout -- hasSequencedItem --> step2:take_payment
step1:scan_items -- hasStakeholder --> cashier
step2:take_payment -- hasStakeholder --> cashier
step1:scan_items -- hasNext --> step2:take_payment
`

func testRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	logger := log.NewWithOptions(io.Discard, log.Options{})
	return NewRunner(c, nil, logger)
}

func TestRunnerExecute(t *testing.T) {
	r := testRunner(t)
	defer r.Close()

	result, err := r.Execute(context.Background(), Options{Input: sampleInput})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.Stats.ProcedureCount != 1 {
		t.Errorf("ProcedureCount = %d, want 1", result.Stats.ProcedureCount)
	}
	if result.Stats.ItemCount != 2 {
		t.Errorf("ItemCount = %d, want 2", result.Stats.ItemCount)
	}
	if result.GraphHash == "" {
		t.Error("GraphHash should be set")
	}
	if len(result.Layout.Pools) != 1 {
		t.Errorf("Pools = %d, want 1", len(result.Layout.Pools))
	}

	data, ok := result.Artifacts[FormatDrawio]
	if !ok {
		t.Fatal("drawio artifact missing")
	}
	if !bytes.Contains(data, []byte("mxGraphModel")) {
		t.Error("drawio artifact should contain mxGraphModel")
	}
}

func TestRunnerExecuteCaching(t *testing.T) {
	r := testRunner(t)
	defer r.Close()

	opts := Options{Input: sampleInput}

	first, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	if first.CacheInfo.ParseHit || first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Errorf("first run should miss all caches: %+v", first.CacheInfo)
	}

	second, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !second.CacheInfo.ParseHit || !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run should hit all caches: %+v", second.CacheInfo)
	}

	if !bytes.Equal(first.Artifacts[FormatDrawio], second.Artifacts[FormatDrawio]) {
		t.Error("cached artifact should match the rendered one")
	}
}

func TestRunnerRefreshBypassesCache(t *testing.T) {
	r := testRunner(t)
	defer r.Close()

	if _, err := r.Execute(context.Background(), Options{Input: sampleInput}); err != nil {
		t.Fatalf("warm-up Execute: %v", err)
	}

	result, err := r.Execute(context.Background(), Options{Input: sampleInput, Refresh: true})
	if err != nil {
		t.Fatalf("refresh Execute: %v", err)
	}
	if result.CacheInfo.ParseHit {
		t.Error("refresh should bypass the graph cache")
	}
}

func TestRunnerNullCache(t *testing.T) {
	logger := log.NewWithOptions(io.Discard, log.Options{})
	r := NewRunner(nil, nil, logger)
	defer r.Close()

	first, err := r.Execute(context.Background(), Options{Input: sampleInput})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	second, err := r.Execute(context.Background(), Options{Input: sampleInput})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if second.CacheInfo.ParseHit {
		t.Error("null cache should never hit")
	}
	if !bytes.Equal(first.Artifacts[FormatDrawio], second.Artifacts[FormatDrawio]) {
		t.Error("output should be deterministic across runs")
	}
}

func TestRunnerProcedureFilter(t *testing.T) {
	r := testRunner(t)
	defer r.Close()

	input := sampleInput + `returns -- type --> Procedure
returns -- hasSequencedItem --> r1:inspect_item
r1:inspect_item -- hasStakeholder --> clerk
`

	result, err := r.Execute(context.Background(), Options{
		Input:      input,
		Procedures: []string{"returns"},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(result.Layout.Pools) != 1 {
		t.Fatalf("Pools = %d, want 1", len(result.Layout.Pools))
	}
	if result.Layout.Pools[0].Name != "returns" {
		t.Errorf("pool = %q, want %q", result.Layout.Pools[0].Name, "returns")
	}
	// Stats reflect the unfiltered graph
	if result.Stats.ProcedureCount != 2 {
		t.Errorf("ProcedureCount = %d, want 2", result.Stats.ProcedureCount)
	}
}

func TestRunnerUnknownProcedure(t *testing.T) {
	r := testRunner(t)
	defer r.Close()

	_, err := r.Execute(context.Background(), Options{
		Input:      sampleInput,
		Procedures: []string{"missing"},
	})
	if err == nil {
		t.Fatal("unknown procedure should fail")
	}
	if !errors.Is(err, errors.ErrCodeInvalidProcedure) {
		t.Errorf("error code = %v, want INVALID_PROCEDURE", errors.GetCode(err))
	}
}

func TestRunnerMultipleFormats(t *testing.T) {
	r := testRunner(t)
	defer r.Close()

	result, err := r.Execute(context.Background(), Options{
		Input:   sampleInput,
		Formats: []string{FormatDrawio, FormatJSON, FormatDOT},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	for _, f := range []string{FormatDrawio, FormatJSON, FormatDOT} {
		if len(result.Artifacts[f]) == 0 {
			t.Errorf("artifact %q missing", f)
		}
	}
	if !bytes.Contains(result.Artifacts[FormatDOT], []byte("digraph")) {
		t.Error("dot artifact should contain digraph")
	}
}

func TestRunnerEmptyInputRejected(t *testing.T) {
	r := testRunner(t)
	defer r.Close()

	_, err := r.Execute(context.Background(), Options{})
	if err == nil {
		t.Fatal("empty input should fail")
	}
}
