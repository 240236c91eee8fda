package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"umkmorder/internal/config"

	"github.com/stretchr/testify/require"
)

const minimalConfig = `
app:
  name: umkm-order-service
  version: 1.0.0
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadPath_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadPath(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	require.Equal(t, config.DriverMemory, cfg.Store.Driver)
	require.Equal(t, "umkmOrders", cfg.Store.Key)
	require.Equal(t, "SMB", cfg.Order.IDPrefix)
	require.Equal(t, 48*time.Hour, cfg.Order.PaymentWindow)
	require.Equal(t, 14, cfg.Order.CutoffDay)
	require.Equal(t, 12, cfg.Order.WindowMonths)
	require.False(t, cfg.Order.StrictTransitions)
	require.False(t, cfg.Kafka.Enabled)
	require.Equal(t, "Asia/Jakarta", cfg.Location().String())
}

func TestLoadPath_Overrides(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadPath(writeConfig(t, minimalConfig+`
store:
  driver: redis
  key: orders
order:
  id_prefix: UMKM
  cutoff_day: 10
  strict_transitions: true
  packages:
    - value: basic
      label: Basic
      price: 250000
notify:
  templates:
    orderUpdate: "Hi {{customerName}}"
admin:
  users:
    admin: "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z3ZsB4B3m1pYcV2Zb0mXo7mW"
`))
	require.NoError(t, err)

	require.Equal(t, config.DriverRedis, cfg.Store.Driver)
	require.Equal(t, "orders", cfg.Store.Key)
	require.Equal(t, "UMKM", cfg.Order.IDPrefix)
	require.Equal(t, 10, cfg.Order.CutoffDay)
	require.True(t, cfg.Order.StrictTransitions)
	require.Len(t, cfg.Order.Packages, 1)
	require.Equal(t, int64(250000), cfg.Order.Packages[0].Price)
	require.Equal(t, "Hi {{customerName}}", cfg.Notify.Templates["orderUpdate"])
	require.Contains(t, cfg.Admin.Users, "admin")
}

func TestLoadPath_Invalid(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		desc     string
		input    string
		expected string
	}{
		{
			desc:     "UnknownDriver",
			input:    minimalConfig + "store:\n  driver: mongo\n",
			expected: "Store.Driver",
		},
		{
			desc:     "PostgresWithoutHost",
			input:    minimalConfig + "store:\n  driver: postgres\npostgres:\n  host: \"\"\n",
			expected: "postgres driver requires",
		},
		{
			desc:     "KafkaWithoutBrokers",
			input:    minimalConfig + "kafka:\n  enabled: true\n",
			expected: "kafka intake requires",
		},
		{
			desc:     "UnknownTimezone",
			input:    minimalConfig + "order:\n  timezone: Mars/Olympus\n",
			expected: "ORDER_TIMEZONE",
		},
		{
			desc: "DuplicatePackage",
			input: minimalConfig + `
order:
  packages:
    - value: basic
      label: Basic
      price: 1
    - value: basic
      label: Basic again
      price: 2
`,
			expected: "duplicate endorsement package",
		},
		{
			desc:     "CutoffDayOutOfRange",
			input:    minimalConfig + "order:\n  cutoff_day: 31\n",
			expected: "CutoffDay",
		},
		{
			desc:     "MissingAppName",
			input:    "env: local\n",
			expected: "App.Name",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()

			_, err := config.LoadPath(writeConfig(t, tc.input))
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.expected)
		})
	}
}

func TestLoadPath_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := config.LoadPath(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "config file does not exist")
}

func TestLocation_FallsBackToUTC(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Order: config.Order{Timezone: "Nowhere/Land"}}
	require.Equal(t, time.UTC, cfg.Location())
}
