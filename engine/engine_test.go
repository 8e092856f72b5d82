package engine_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/warp/workshop-engine/engine"
	"github.com/warp/workshop-engine/workshop"
	"github.com/warp/workshop-engine/workshop/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(d int) workshop.Date { return workshop.NewDate(2024, time.May, d) }

func newEngine() *engine.Engine {
	return engine.New(store.NewMemory(), &workshop.Sequence{}, engine.DefaultOptions(), nil)
}

// snapshotStore records saves and can be told to fail.
type snapshotStore struct {
	mu    sync.Mutex
	saved []workshop.Snapshot
	fail  error
}

func (s *snapshotStore) LoadSnapshot(context.Context) (workshop.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.saved) == 0 {
		return workshop.Snapshot{}, nil
	}
	return s.saved[len(s.saved)-1], nil
}

func (s *snapshotStore) SaveSnapshot(_ context.Context, snap workshop.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.saved = append(s.saved, snap)
	return nil
}

func (s *snapshotStore) saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

// =============================================================================
// COMMAND TESTS
// =============================================================================

func TestEngine_BracketLifecycle(t *testing.T) {
	ctx := context.Background()
	eng := newEngine()

	// GIVEN: A supplier delivers steel and bolts
	supplier, err := eng.AddContact(ctx, workshop.Contact{Name: "Metal Supply", Roles: []workshop.ContactRole{workshop.RoleSupplier}})
	require.NoError(t, err)
	_, err = eng.AddPurchase(ctx, workshop.PurchaseInvoice{SupplierID: supplier.ID, Date: day(1), Items: []workshop.PurchaseItem{
		{ItemName: "Steel Sheet", Quantity: dec("10"), UnitPrice: dec("30000")},
		{ItemName: "Bolt", Quantity: dec("100"), UnitPrice: dec("500")},
	}})
	require.NoError(t, err)

	st, err := eng.State(ctx)
	require.NoError(t, err)
	steel, ok := st.PartByName("steel sheet")
	require.True(t, ok)
	bolt, ok := st.PartByName("BOLT")
	require.True(t, ok)

	// AND: A bracket made of one sheet and four bolts
	bracket, err := eng.AddPart(ctx, workshop.Part{Name: "Bracket", IsAssembly: true, Components: []workshop.Component{
		{PartID: steel.ID, Quantity: dec("1")},
		{PartID: bolt.ID, Quantity: dec("4")},
	}})
	require.NoError(t, err)
	cost, err := eng.ResolveCost(ctx, bracket.ID)
	require.NoError(t, err)
	assert.True(t, cost.Equal(dec("32000")), "cost %s", cost)

	// WHEN: Two brackets are assembled
	ao, err := eng.AddAssemblyOrder(ctx, workshop.AssemblyOrder{PartID: bracket.ID, Quantity: dec("2"), Date: day(2)})
	require.NoError(t, err)
	done, err := eng.CompleteAssemblyOrder(ctx, ao.ID)
	require.NoError(t, err)
	assert.True(t, done.MaterialCost.Equal(dec("64000")))
	assert.True(t, done.NewStock.Equal(dec("2")))

	// AND: Sold, paid in full and delivered
	customer, err := eng.AddContact(ctx, workshop.Contact{Name: "Global Corp", Roles: []workshop.ContactRole{workshop.RoleCustomer}})
	require.NoError(t, err)
	order, err := eng.AddOrder(ctx, workshop.SalesOrder{CustomerID: customer.ID, Date: day(3),
		Items: []workshop.OrderItem{{ProductID: bracket.ID, Quantity: dec("2"), Price: dec("100000")}}})
	require.NoError(t, err)
	order, err = eng.AddPayment(ctx, order.ID, workshop.Payment{Amount: dec("200000"), Date: day(3)})
	require.NoError(t, err)
	assert.Equal(t, workshop.OrderPaid, order.Status)
	delivery, err := eng.DeliverOrder(ctx, order.ID)
	require.NoError(t, err)

	// THEN: The ledger shows revenue against frozen COGS
	assert.True(t, delivery.CostOfGoodsSold.Equal(dec("64000")))
	r, err := eng.Report(ctx, workshop.DateRange{})
	require.NoError(t, err)
	assert.True(t, r.TotalRevenue.Equal(dec("200000")))
	assert.True(t, r.TotalCOGS.Equal(dec("64000")))
	assert.True(t, r.NetProfit.Equal(dec("136000")))
}

func TestEngine_RejectedCommandLeavesStateClean(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zap.InfoLevel)
	eng := engine.New(store.NewMemory(), &workshop.Sequence{}, engine.DefaultOptions(), zap.New(core))

	// WHEN: A command fails validation
	_, err := eng.AddPart(ctx, workshop.Part{Name: "  "})

	// THEN: Nothing changed and nothing needs saving
	assert.ErrorIs(t, err, workshop.ErrValidation)
	st, _ := eng.State(ctx)
	assert.Empty(t, st.Parts)
	assert.False(t, eng.Dirty())

	// AND: The rejection was logged with its code
	rejected := logs.FilterMessage("command rejected").All()
	require.Len(t, rejected, 1)
	assert.Equal(t, "validation", rejected[0].ContextMap()["code"])
	assert.Equal(t, "AddPart", rejected[0].ContextMap()["command"])
}

func TestEngine_ResolveCostUnknownPart(t *testing.T) {
	_, err := newEngine().ResolveCost(context.Background(), 99)
	assert.ErrorIs(t, err, workshop.ErrNotFound)
}

func TestEngine_EditReturnsStoredRecord(t *testing.T) {
	ctx := context.Background()
	eng := newEngine()
	p, err := eng.AddPart(ctx, workshop.Part{Name: "Glue", Stock: dec("1")})
	require.NoError(t, err)

	p.Threshold = dec("5")
	got, err := eng.EditPart(ctx, p)
	require.NoError(t, err)
	assert.True(t, got.Threshold.Equal(dec("5")))

	low, err := eng.LowStock(ctx)
	require.NoError(t, err)
	assert.Len(t, low, 1)
}

// =============================================================================
// SNAPSHOT TESTS
// =============================================================================

func TestEngine_SnapshotRestore(t *testing.T) {
	ctx := context.Background()
	src := newEngine()
	_, err := src.AddPart(ctx, workshop.Part{Name: "Glue", Stock: dec("3"), Cost: nil})
	require.NoError(t, err)
	snap, err := src.Snapshot(ctx)
	require.NoError(t, err)

	// GIVEN: A fresh engine whose IDs start low
	ids := &workshop.Sequence{}
	dst := engine.New(store.NewMemory(), ids, engine.DefaultOptions(), nil)

	// WHEN: The snapshot is restored
	require.NoError(t, dst.Restore(ctx, snap))

	// THEN: The part is back and the engine has unsaved state
	st, _ := dst.State(ctx)
	require.Len(t, st.Parts, 1)
	assert.Equal(t, "Glue", st.Parts[0].Name)
	assert.True(t, dst.Dirty())
}

func TestEngine_RestoreSeedsClockIDs(t *testing.T) {
	ctx := context.Background()
	far := int64(1) << 60
	snap, err := workshop.EncodeState(workshop.State{}.WithPart(workshop.Part{ID: workshop.PartID(far), Name: "Future"}))
	require.NoError(t, err)

	eng := engine.New(store.NewMemory(), workshop.NewClockIDs(), engine.DefaultOptions(), nil)
	require.NoError(t, eng.Restore(ctx, snap))

	p, err := eng.AddPart(ctx, workshop.Part{Name: "Next"})
	require.NoError(t, err)
	assert.Greater(t, int64(p.ID), far)
}

func TestEngine_RestoreRejectsGarbage(t *testing.T) {
	err := newEngine().Restore(context.Background(), workshop.Snapshot{workshop.KeyParts: []byte(`{"not":"a list"}`)})
	assert.ErrorIs(t, err, workshop.ErrValidation)
}

// =============================================================================
// AUTOSAVE TESTS
// =============================================================================

func TestAutoSaver_FlushOnlyWhenDirty(t *testing.T) {
	ctx := context.Background()
	eng := newEngine()
	disk := &snapshotStore{}
	saver := engine.NewAutoSaver(eng, disk, nil)

	// GIVEN: Nothing committed yet
	require.NoError(t, saver.Flush(ctx))
	assert.Equal(t, 0, disk.saves())

	// WHEN: A command commits
	_, err := eng.AddPart(ctx, workshop.Part{Name: "Glue"})
	require.NoError(t, err)
	assert.True(t, eng.Dirty())
	require.NoError(t, saver.Flush(ctx))

	// THEN: One save, then clean
	assert.Equal(t, 1, disk.saves())
	assert.False(t, eng.Dirty())
	require.NoError(t, saver.Flush(ctx))
	assert.Equal(t, 1, disk.saves())
}

func TestAutoSaver_FailedSaveStaysDirty(t *testing.T) {
	ctx := context.Background()
	eng := newEngine()
	disk := &snapshotStore{fail: errors.New("disk full")}
	saver := engine.NewAutoSaver(eng, disk, nil)
	_, err := eng.AddPart(ctx, workshop.Part{Name: "Glue"})
	require.NoError(t, err)

	// WHEN: The save fails
	err = saver.Flush(ctx)

	// THEN: The error surfaces to the saver only and the state stays dirty
	assert.ErrorContains(t, err, "disk full")
	assert.True(t, eng.Dirty())

	// AND: The next attempt succeeds
	disk.mu.Lock()
	disk.fail = nil
	disk.mu.Unlock()
	require.NoError(t, saver.Flush(ctx))
	assert.False(t, eng.Dirty())
}

func TestAutoSaver_BackgroundLoop(t *testing.T) {
	ctx := context.Background()
	eng := newEngine()
	disk := &snapshotStore{}
	saver := engine.NewAutoSaver(eng, disk, nil)
	saver.Interval = 10 * time.Millisecond

	saver.Start()
	defer saver.Stop()

	_, err := eng.AddPart(ctx, workshop.Part{Name: "Glue"})
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return disk.saves() == 1 && !eng.Dirty() },
		time.Second, 5*time.Millisecond)
}

func TestAutoSaver_Disabled(t *testing.T) {
	eng := newEngine()
	disk := &snapshotStore{}
	saver := engine.NewAutoSaver(eng, disk, nil)
	saver.Enabled = false

	saver.Start()
	saver.Stop()

	_, err := eng.AddPart(context.Background(), workshop.Part{Name: "Glue"})
	require.NoError(t, err)
	assert.Equal(t, 0, disk.saves())
}
