package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"catalog-sync/core/models"

	"github.com/goccy/go-json"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var generatedAt = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

func sampleAggregator() *Aggregator {
	a := NewAggregator("run-0001", false)
	a.SetRows(5, 4, 1)
	a.Add(
		models.UpdateResult{SKU: "A1", Backend: models.BackendRetail, Operation: models.OpCustomFields, Success: true,
			Changes: map[string]string{"customField1": "Lamp"}},
		models.UpdateResult{SKU: "A1", Backend: models.BackendRetail, Operation: models.OpWeight, Success: true,
			Changes: map[string]string{}, Note: "already up to date"},
		models.UpdateResult{SKU: "A2", Backend: models.BackendEcom, Operation: models.OpDescriptions, Success: true,
			Changes: map[string]string{"description": "Short"}},
		models.UpdateResult{SKU: "A2", Backend: models.BackendEcom, Operation: models.OpImages, Success: true,
			Changes: map[string]string{"https://x/1.jpg": "1"}, Error: "1 of 2 image uploads failed"},
		models.UpdateResult{SKU: "A3", Backend: models.BackendEcom, Operation: models.OpDescriptions, Success: false,
			Stage: "write", Error: "api error (400): PUT products/3.json: bad | input", Changes: map[string]string{}},
	)
	a.AddFailure(Failure{SKU: "A4", Error: "retail lookup: server error (502)", Stage: StageResolve, Backend: models.BackendRetail})
	return a
}

func TestAggregator_Summary(t *testing.T) {
	s := sampleAggregator().Summary(generatedAt)

	assert.Equal(t, BackendStats{Succeeded: 2, Unchanged: 1}, s.Retail)
	assert.Equal(t, BackendStats{Succeeded: 2, Failed: 1}, s.Ecom)
	assert.Equal(t, 2, s.Errors)
	assert.Equal(t, 4, s.Updates())
	assert.Equal(t, []string{"A2: 1 of 2 image uploads failed"}, s.Warnings)
	require.Len(t, s.Failures, 2)
	assert.Equal(t, "A3", s.Failures[0].SKU)
	assert.Equal(t, "A4", s.Failures[1].SKU)
}

func TestAggregator_ConcurrentAdds(t *testing.T) {
	a := NewAggregator("run", false)
	var wg sync.WaitGroup
	for _, b := range models.Backends {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				a.Add(models.UpdateResult{SKU: fmt.Sprint(i), Backend: b, Success: i%2 == 0, Changes: map[string]string{}})
			}
		}()
	}
	wg.Wait()

	s := a.Summary(generatedAt)
	assert.Equal(t, 25, s.Retail.Succeeded)
	assert.Equal(t, 25, s.Ecom.Failed)
	assert.Equal(t, 50, s.Errors)
}

func TestRenderMarkdown_Golden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderMarkdown(&buf, sampleAggregator().Summary(generatedAt)))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "sync_report", buf.Bytes())
}

func TestRenderMarkdown_LimitsFailures(t *testing.T) {
	a := NewAggregator("run", true)
	for i := 0; i < 25; i++ {
		a.AddFailure(Failure{SKU: fmt.Sprintf("S%02d", i), Error: "boom", Stage: "write", Backend: models.BackendEcom})
	}

	var buf bytes.Buffer
	require.NoError(t, RenderMarkdown(&buf, a.Summary(generatedAt)))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "# Catalog Sync Report (DRY RUN)"))
	assert.Contains(t, out, "| S19 |")
	assert.NotContains(t, out, "| S20 |")
	assert.Contains(t, out, "*... and 5 more errors*")
	assert.Contains(t, out, "**No Updates:**")
}

func TestWriteFailuresCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteFailuresCSV(&buf, []Failure{
		{SKU: "A1", Error: "bad, very bad", Stage: "write", Backend: models.BackendRetail, Operation: models.OpWeight},
	})
	require.NoError(t, err)

	assert.Equal(t, "sku,error,stage,service,operation\nA1,\"bad, very bad\",write,retail,weight\n", buf.String())
}

func TestWriteAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	paths, err := WriteAll(dir, sampleAggregator().Summary(generatedAt))
	require.NoError(t, err)
	assert.Len(t, paths, 3)

	data, err := os.ReadFile(filepath.Join(dir, SummaryFile))
	require.NoError(t, err)

	var decoded Summary
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "run-0001", decoded.RunID)
	assert.Len(t, decoded.Failures, 2)

	clean := NewAggregator("ok", false).Summary(generatedAt)
	paths, err = WriteAll(filepath.Join(t.TempDir(), "clean"), clean)
	require.NoError(t, err)
	assert.Len(t, paths, 2, "no failures file without failures")
}
