package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mercadolens/domain"
)

type fakeEventRepo struct {
	inserted  []domain.Event
	insertErr error
	queryErr  error
	events    []domain.Event
}

func (f *fakeEventRepo) Insert(ctx context.Context, event *domain.Event) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, *event)
	return nil
}

func (f *fakeEventRepo) InsertBatch(ctx context.Context, events []domain.Event) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, events...)
	return nil
}

func (f *fakeEventRepo) QueryByActor(ctx context.Context, actorID, marketID uint64, from, to time.Time) ([]domain.Event, error) {
	return f.events, f.queryErr
}

func (f *fakeEventRepo) QueryByMarket(ctx context.Context, marketID uint64, from, to time.Time, eventType *domain.EventType) ([]domain.Event, error) {
	return f.events, f.queryErr
}

var testNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func newTestService(repo *fakeEventRepo) *CollectorService {
	svc := NewCollectorService(repo)
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestRecord_FillsIDAndTimestamp(t *testing.T) {
	repo := &fakeEventRepo{}
	svc := newTestService(repo)

	err := svc.Record(context.Background(), 7, 1, domain.ProductViewedPayload{ProductID: 3, CategoryID: 2})
	require.NoError(t, err)

	require.Len(t, repo.inserted, 1)
	got := repo.inserted[0]
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, domain.EventProductViewed, got.Type)
	assert.Equal(t, testNow, got.Timestamp)
	assert.Equal(t, uint64(7), got.ActorID)
}

func TestRecord_WriteFailureIsTelemetryError(t *testing.T) {
	repo := &fakeEventRepo{insertErr: errors.New("connection reset")}
	svc := newTestService(repo)

	err := svc.Record(context.Background(), 7, 1, domain.AccessTimePayload{Platform: "web"})

	var terr *domain.TelemetryError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "record", terr.Op)
	assert.ErrorContains(t, err, "connection reset")
}

func TestRecordRaw_RejectsUnknownType(t *testing.T) {
	repo := &fakeEventRepo{}
	svc := newTestService(repo)

	err := svc.RecordRaw(context.Background(), 7, 1, domain.EventType("cart_abandoned"), nil)

	var terr *domain.TelemetryError
	require.ErrorAs(t, err, &terr)
	assert.Empty(t, repo.inserted)
}

func TestRecordRaw_AcceptsKnownType(t *testing.T) {
	repo := &fakeEventRepo{}
	svc := newTestService(repo)

	err := svc.RecordRaw(context.Background(), 7, 1, domain.EventProductSearched, map[string]any{"query": "banana"})
	require.NoError(t, err)

	require.Len(t, repo.inserted, 1)
	assert.Equal(t, domain.EventProductSearched, repo.inserted[0].Type)
	assert.Equal(t, "banana", repo.inserted[0].Metadata["query"])
}

func TestRecordBatch_SkipsInvalidAndFillsDefaults(t *testing.T) {
	repo := &fakeEventRepo{}
	svc := newTestService(repo)

	batch := []domain.Event{
		{ActorID: 1, MarketID: 1, Type: domain.EventProductViewed},
		{ActorID: 2, MarketID: 1, Type: domain.EventType("bogus")},
		{ActorID: 3, MarketID: 1, Type: domain.EventAccessTime, ID: "keep-me", Timestamp: testNow.AddDate(0, 0, -1)},
	}

	err := svc.RecordBatch(context.Background(), batch)
	require.NoError(t, err)

	require.Len(t, repo.inserted, 2)
	assert.NotEmpty(t, repo.inserted[0].ID)
	assert.Equal(t, testNow, repo.inserted[0].Timestamp)
	assert.Equal(t, "keep-me", repo.inserted[1].ID)
	assert.Equal(t, testNow.AddDate(0, 0, -1), repo.inserted[1].Timestamp)
}

func TestRecordBatch_AllInvalidIsNoop(t *testing.T) {
	repo := &fakeEventRepo{insertErr: errors.New("should not be called")}
	svc := newTestService(repo)

	err := svc.RecordBatch(context.Background(), []domain.Event{
		{Type: domain.EventType("bogus")},
	})

	assert.NoError(t, err)
	assert.Empty(t, repo.inserted)
}

func TestQueryByActor_NilBecomesEmptySlice(t *testing.T) {
	svc := newTestService(&fakeEventRepo{})

	events, err := svc.QueryByActor(context.Background(), 7, 1, testNow.AddDate(0, 0, -7), testNow)
	require.NoError(t, err)

	assert.NotNil(t, events)
	assert.Empty(t, events)
}

func TestQueryByMarket_PropagatesError(t *testing.T) {
	svc := newTestService(&fakeEventRepo{queryErr: errors.New("db down")})

	_, err := svc.QueryByMarket(context.Background(), 1, testNow.AddDate(0, 0, -7), testNow, nil)
	assert.Error(t, err)
}
