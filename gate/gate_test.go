package gate_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"HADIRKU/facematch"
	"HADIRKU/gate"
	"HADIRKU/ledger"
	"HADIRKU/ledger/mock"
	"HADIRKU/models"
)

var wib = time.FixedZone("WIB", 7*60*60)

type fakeEmbeddings struct {
	vectors map[string][]float64
	err     error
}

func (f *fakeEmbeddings) Enrolled(ctx context.Context, userId string) ([]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vectors[userId], nil
}

func vec(dim int, fill float64) []float64 {
	v := make([]float64, dim)
	for i := range v {
		v[i] = fill
	}
	return v
}

func newTestGate(embeddings *fakeEmbeddings) (*gate.Gate, *mock.MockEventStore) {
	store := mock.NewMockEventStore()
	l := ledger.New(store, wib)
	m := facematch.NewMatcher(4, 0.6)
	return gate.New(embeddings, m, l), store
}

func TestSubmitNotEnrolled(t *testing.T) {
	g, store := newTestGate(&fakeEmbeddings{vectors: map[string][]float64{}})

	_, err := g.Submit(context.Background(), "U1", vec(4, 1), time.Now())
	if !errors.Is(err, gate.ErrNotEnrolled) {
		t.Fatalf("expected ErrNotEnrolled, got %v", err)
	}
	if store.Count() != 0 {
		t.Errorf("no event may be created, store has %d", store.Count())
	}
}

func TestSubmitIdentityNotVerified(t *testing.T) {
	enrolled := []float64{1, 0, 0, 0}
	g, store := newTestGate(&fakeEmbeddings{vectors: map[string][]float64{"U1": enrolled}})

	// Tegak lurus terhadap vektor terdaftar: similarity 0
	_, err := g.Submit(context.Background(), "U1", []float64{0, 1, 0, 0}, time.Now())

	var verr *gate.VerificationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *VerificationError, got %v", err)
	}
	if math.Abs(verr.Similarity-0) > 1e-9 {
		t.Errorf("rejection should carry the computed similarity, got %v", verr.Similarity)
	}
	if verr.Threshold != 0.6 {
		t.Errorf("rejection should carry the threshold, got %v", verr.Threshold)
	}
	if store.Count() != 0 {
		t.Errorf("no event may be created, store has %d", store.Count())
	}
}

func TestSubmitDimensionMismatch(t *testing.T) {
	g, store := newTestGate(&fakeEmbeddings{vectors: map[string][]float64{"U1": vec(4, 1)}})

	_, err := g.Submit(context.Background(), "U1", vec(3, 1), time.Now())
	if !errors.Is(err, facematch.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
	if store.Count() != 0 {
		t.Errorf("no event may be created, store has %d", store.Count())
	}
}

func TestSubmitFullDay(t *testing.T) {
	enrolled := vec(4, 0.5)
	g, store := newTestGate(&fakeEmbeddings{vectors: map[string][]float64{"U1": enrolled}})
	ctx := context.Background()
	morning := time.Date(2024, 3, 10, 8, 0, 0, 0, wib)
	evening := morning.Add(9 * time.Hour)

	first, err := g.Submit(ctx, "U1", enrolled, morning)
	if err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	if first.Jenis != models.EventMasuk {
		t.Errorf("first submit should record IN, got %s", first.Jenis)
	}
	if math.Abs(first.Skor-1.0) > 1e-9 {
		t.Errorf("recorded score must be the computed similarity, got %v", first.Skor)
	}

	second, err := g.Submit(ctx, "U1", enrolled, evening)
	if err != nil {
		t.Fatalf("second submit failed: %v", err)
	}
	if second.Jenis != models.EventKeluar {
		t.Errorf("second submit should record OUT, got %s", second.Jenis)
	}

	_, err = g.Submit(ctx, "U1", enrolled, evening.Add(time.Minute))
	if !errors.Is(err, gate.ErrDayAlreadyComplete) {
		t.Fatalf("third submit should fail with ErrDayAlreadyComplete, got %v", err)
	}
	if store.Count() != 2 {
		t.Errorf("expected exactly 2 events, store has %d", store.Count())
	}
}

// raceStore memicu kalah-race satu kali: tepat sebelum insert IN pertama,
// kompetitor menyelipkan IN untuk key yang sama.
type raceStore struct {
	*mock.MockEventStore
	competitor func()
	triggered  bool
}

func (r *raceStore) Insert(ctx context.Context, event *models.AttendanceEvent) error {
	if !r.triggered && event.Jenis == models.EventMasuk {
		r.triggered = true
		r.competitor()
	}
	return r.MockEventStore.Insert(ctx, event)
}

func TestSubmitRetriesOnceOnLostRace(t *testing.T) {
	enrolled := vec(4, 0.5)
	inner := mock.NewMockEventStore()
	now := time.Date(2024, 3, 10, 8, 0, 0, 0, wib)

	store := &raceStore{MockEventStore: inner}
	store.competitor = func() {
		err := inner.Insert(context.Background(), &models.AttendanceEvent{
			UserId:   "U1",
			TglAbsen: "2024-03-10",
			Jenis:    models.EventMasuk,
			Waktu:    now,
			Skor:     0.9,
		})
		if err != nil {
			t.Fatalf("competitor insert failed: %v", err)
		}
	}

	l := ledger.New(store, wib)
	g := gate.New(&fakeEmbeddings{vectors: map[string][]float64{"U1": enrolled}},
		facematch.NewMatcher(4, 0.6), l)

	// Kalah race untuk IN → baca ulang status sekali → lanjut catat OUT
	event, err := g.Submit(context.Background(), "U1", enrolled, now.Add(time.Second))
	if err != nil {
		t.Fatalf("submit after lost race failed: %v", err)
	}
	if event.Jenis != models.EventKeluar {
		t.Errorf("retry should have recorded OUT, got %s", event.Jenis)
	}
	if inner.Count() != 2 {
		t.Errorf("expected IN (competitor) + OUT, store has %d", inner.Count())
	}
}

func TestSubmitAdminForOtherUserSeparateKeys(t *testing.T) {
	enrolled := vec(4, 0.5)
	g, _ := newTestGate(&fakeEmbeddings{vectors: map[string][]float64{
		"U1": enrolled,
		"U2": enrolled,
	}})
	ctx := context.Background()
	now := time.Date(2024, 3, 10, 8, 0, 0, 0, wib)

	if _, err := g.Submit(ctx, "U1", enrolled, now); err != nil {
		t.Fatalf("U1 submit failed: %v", err)
	}
	event, err := g.Submit(ctx, "U2", enrolled, now)
	if err != nil {
		t.Fatalf("U2 submit failed: %v", err)
	}
	if event.Jenis != models.EventMasuk {
		t.Errorf("U2's first event of the day should be IN, got %s", event.Jenis)
	}
}

func TestSubmitEmbeddingLookupErrorSurfaces(t *testing.T) {
	infra := errors.New("storage unavailable")
	g, store := newTestGate(&fakeEmbeddings{err: infra})

	if _, err := g.Submit(context.Background(), "U1", vec(4, 1), time.Now()); !errors.Is(err, infra) {
		t.Fatalf("infrastructure error should surface verbatim, got %v", err)
	}
	if store.Count() != 0 {
		t.Errorf("no event may be created, store has %d", store.Count())
	}
}
