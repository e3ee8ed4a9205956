package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteTextfile(t *testing.T) {
	t.Run("Disabled", func(t *testing.T) {
		assert.NoError(t, WriteTextfile(Config{}))
	})

	t.Run("Writes", func(t *testing.T) {
		RecordsProcessed.WithLabelValues("ixp", ResultImported).Inc()
		path := filepath.Join(t.TempDir(), "ixp_tracker.prom")

		require.NoError(t, WriteTextfile(Config{Textfile: path}))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "ixp_tracker_records_processed_total")
	})
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(Departures.WithLabelValues("inactive"))
	Departures.WithLabelValues("inactive").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(Departures.WithLabelValues("inactive")))
}
