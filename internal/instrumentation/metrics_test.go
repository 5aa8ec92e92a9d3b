package instrumentation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp.Meter("test"))
	require.NoError(t, err)
	return m, reader
}

// counterValue sums the data points of the named counter that carry attr.
func counterValue(t *testing.T, reader *sdkmetric.ManualReader, name string, attr attribute.KeyValue) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is not an int64 sum", name)
			for _, dp := range sum.DataPoints {
				if v, ok := dp.Attributes.Value(attr.Key); ok && v == attr.Value {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func TestMetrics_RecordClientAuth(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordClientAuth(ctx, ClientAuthSuccess)
	m.RecordClientAuth(ctx, ClientAuthTokenExpired)
	m.RecordClientAuth(ctx, ClientAuthTokenExpired)

	assert.Equal(t, int64(1), counterValue(t, reader, "client_auth_total", attribute.String(attrResult, ClientAuthSuccess)))
	assert.Equal(t, int64(2), counterValue(t, reader, "client_auth_total", attribute.String(attrResult, ClientAuthTokenExpired)))
}

func TestMetrics_RecordOAuthExchange(t *testing.T) {
	m, reader := newTestMetrics(t)

	m.RecordOAuthExchange(context.Background(), ExchangeInvalidRequest)

	assert.Equal(t, int64(1), counterValue(t, reader, "oauth_exchange_total", attribute.String(attrResult, ExchangeInvalidRequest)))
}

func TestMetrics_RecordStoreOperation(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordStoreOperation(ctx, StoreOperationPut, StatusSuccess, time.Millisecond)
	m.RecordStoreOperation(ctx, StoreOperationGet, StatusError, time.Millisecond)

	assert.Equal(t, int64(1), counterValue(t, reader, "token_store_operations_total", attribute.String(attrOperation, StoreOperationPut)))
	assert.Equal(t, int64(1), counterValue(t, reader, "token_store_operations_total", attribute.String(attrStatus, StatusError)))
}

func TestMetrics_RecordHTTPRequest_BoundsPath(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordHTTPRequest(ctx, "GET", "/auth/login", 302, time.Millisecond)
	m.RecordHTTPRequest(ctx, "GET", "/random/probe", 404, time.Millisecond)

	assert.Equal(t, int64(1), counterValue(t, reader, "http_requests_total", attribute.String(attrPath, "/auth/login")))
	assert.Equal(t, int64(1), counterValue(t, reader, "http_requests_total", attribute.String(attrPath, PathOther)))
}

func TestMetrics_RecordToolInvocationAndGoogleAPI(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordToolInvocation(ctx, "drive_list_files", StatusSuccess, 10*time.Millisecond)
	m.RecordGoogleAPIOperation(ctx, ServiceDrive, OperationList, StatusSuccess, 10*time.Millisecond)

	assert.Equal(t, int64(1), counterValue(t, reader, "mcp_tool_invocations_total", attribute.String(attrTool, "drive_list_files")))
	assert.Equal(t, int64(1), counterValue(t, reader, "google_api_operations_total", attribute.String(attrService, ServiceDrive)))
}

func TestMetrics_ZeroValueAndNilAreNoOps(t *testing.T) {
	ctx := context.Background()

	var nilMetrics *Metrics
	assert.NotPanics(t, func() {
		nilMetrics.RecordClientAuth(ctx, ClientAuthSuccess)
		nilMetrics.RecordStoreOperation(ctx, StoreOperationGet, StatusSuccess, time.Second)
	})

	zero := &Metrics{}
	assert.NotPanics(t, func() {
		zero.RecordHTTPRequest(ctx, "GET", "/healthz", 200, time.Second)
		zero.RecordOAuthExchange(ctx, ExchangeSuccess)
		zero.RecordToolInvocation(ctx, "x", StatusError, time.Second)
		zero.RecordGoogleAPIOperation(ctx, ServiceGmail, OperationGet, StatusSuccess, time.Second)
	})
}
