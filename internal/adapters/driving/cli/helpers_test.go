package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/nova/internal/adapters/driven/ai"
	"github.com/custodia-labs/nova/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/nova/internal/app"
	"github.com/custodia-labs/nova/internal/core/domain"
	"github.com/custodia-labs/nova/internal/core/services/servicetest"
)

// newTestApp builds an App over an in-memory index with a deterministic
// embedder. It is closed when the test ends.
func newTestApp(t *testing.T) *app.App {
	t.Helper()

	settings := domain.DefaultSettings()
	settings.Store.Path = t.TempDir()
	settings.Store.Backend = domain.StoreBackendMemory
	settings.Batch.FlushInterval = 0

	a, err := app.New(settings, app.WithProviders(&ai.InitResult{
		EmbeddingService: servicetest.NewVocabEmbedder(512),
		VectorIndex:      memory.NewVectorIndex(),
	}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(context.Background()) })
	return a
}

// seededApp returns a test App holding the servicetest notes.
func seededApp(t *testing.T) *app.App {
	t.Helper()
	a := newTestApp(t)
	require.NoError(t, servicetest.Seed(context.Background(), a.Store))
	return a
}

// resetFlags restores every flag variable to its default; cobra keeps
// values from earlier executions.
func resetFlags() {
	storePath, configPath, verbose = "", "", false
	searchLimit, searchJSON = 0, false
	addID, addSource, addHeading = "", "", ""
	removeSource, statsJSON = false, false
	indexInclude, indexExclude = nil, nil
	indexNoProgress, indexJSON = false, false
	describeChunks = false
}

// runCLI executes the root command with args. A non-nil a is injected
// through the context instead of opening a store from settings.
func runCLI(t *testing.T, a *app.App, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	ctx := context.Background()
	if a != nil {
		ctx = app.WithContext(ctx, a)
	}
	err := rootCmd.ExecuteContext(ctx)
	return buf.String(), err
}
