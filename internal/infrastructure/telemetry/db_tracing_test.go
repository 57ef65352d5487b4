package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type tracedRow struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:100"`
}

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedRow{}))
	return db
}

func setupRecorder(t *testing.T) (*sdktrace.TracerProvider, *tracetest.SpanRecorder) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return tp, recorder
}

func TestDefaultDBTracingConfig(t *testing.T) {
	cfg := DefaultDBTracingConfig()

	assert.False(t, cfg.Enabled)
	assert.False(t, cfg.LogFullSQL)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThresh)
	assert.Equal(t, "postgresql", cfg.DBSystem)
}

func TestDBTracingPlugin_RegisterOtelGorm_Disabled(t *testing.T) {
	db := setupTestDB(t)

	err := NewDBTracingPlugin(DefaultDBTracingConfig(), zap.NewNop()).RegisterOtelGorm(db)
	assert.NoError(t, err)
}

func TestDBTracingPlugin_RegisterOtelGorm_Enabled(t *testing.T) {
	db := setupTestDB(t)
	cfg := DefaultDBTracingConfig()
	cfg.Enabled = true
	cfg.DBSystem = "sqlite"

	err := NewDBTracingPlugin(cfg, zap.NewNop()).RegisterOtelGorm(db)
	require.NoError(t, err)

	require.NoError(t, db.Create(&tracedRow{Name: "RET/2026/00001"}).Error)
}

func TestDBTracingPlugin_AfterQuery_SlowQuery(t *testing.T) {
	db := setupTestDB(t)
	tp, recorder := setupRecorder(t)
	plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true, SlowQueryThresh: time.Nanosecond}, zap.NewNop())

	ctx, span := tp.Tracer("test").Start(context.Background(), "slow")
	ctx = WithQueryStartTime(ctx)
	time.Sleep(time.Millisecond)

	tx := db.WithContext(ctx).Find(&[]tracedRow{})
	plugin.afterQuery(tx)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)

	slow := false
	for _, attr := range ended[0].Attributes() {
		if attr.Key == "db.slow_query" && attr.Value.AsBool() {
			slow = true
		}
	}
	assert.True(t, slow)
	require.NotEmpty(t, ended[0].Events())
	assert.Equal(t, "slow_query_warning", ended[0].Events()[0].Name)
}

func TestDBTracingPlugin_AfterQuery_NotFoundIsNotAnError(t *testing.T) {
	db := setupTestDB(t)
	tp, recorder := setupRecorder(t)
	plugin := NewDBTracingPlugin(DefaultDBTracingConfig(), zap.NewNop())

	ctx, span := tp.Tracer("test").Start(context.Background(), "lookup")
	var row tracedRow
	tx := db.WithContext(ctx).First(&row, 99999)
	require.ErrorIs(t, tx.Error, gorm.ErrRecordNotFound)

	plugin.afterQuery(tx)
	span.End()

	assert.NotEqual(t, codes.Error, recorder.Ended()[0].Status().Code)
}

func TestWithQueryStartTime(t *testing.T) {
	ctx := WithQueryStartTime(context.Background())

	startTime, ok := ctx.Value(queryStartTimeKey).(time.Time)
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now(), startTime, time.Second)
}
