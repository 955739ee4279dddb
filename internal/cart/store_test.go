package cart

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/notify"
	"github.com/fjod/go_storefront/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestFetch_ReplacesItems(t *testing.T) {
	svc := &mockService{payload: items(item("a", "₹100", 2), item("b", "₹50", 1))}
	s, _ := newTestStore(svc, "tok")

	require.NoError(t, s.Fetch(context.Background()))

	got := s.Items()
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
	assert.Equal(t, []string{"get:tok"}, svc.Calls())
	assert.NoError(t, s.Err())
}

func TestFetch_Unauthenticated_NoCall(t *testing.T) {
	svc := &mockService{payload: items(item("a", "₹100", 1))}
	s, _ := newTestStore(svc, "")

	require.NoError(t, s.Fetch(context.Background()))

	assert.Empty(t, svc.Calls())
	assert.NotNil(t, s.Items())
	assert.Empty(t, s.Items())
}

func TestFetch_FailureLeavesItems(t *testing.T) {
	svc := &mockService{payload: items(item("a", "₹100", 1))}
	s, feed := newTestStore(svc, "tok")
	require.NoError(t, s.Fetch(context.Background()))

	svc.payload, svc.err = nil, errors.New("connection refused")
	err := s.Fetch(context.Background())

	require.Error(t, err)
	assert.Len(t, s.Items(), 1)
	assert.Error(t, s.Err())
	assert.Empty(t, feed.Drain(), "fetch failures are left to the caller to show")
}

func TestAdd_ReplacesWholesaleAndNotifies(t *testing.T) {
	svc := &mockService{payload: items(item("a", "₹100", 3))}
	s, feed := newTestStore(svc, "tok")
	s.replace(items(item("stale", "₹1", 1), item("a", "₹100", 1)))

	require.NoError(t, s.Add(context.Background(), "a", 2))

	got := s.Items()
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].Quantity)
	n := feed.Drain()
	require.Len(t, n, 1)
	assert.Equal(t, notify.LevelSuccess, n[0].Level)
	assert.Equal(t, MsgAdded, n[0].Message)
}

func TestAdd_FailureSurfacesServerMessage(t *testing.T) {
	svc := &mockService{err: &transport.Error{Status: 400, Message: "quantity must be between 1 and 99"}}
	s, feed := newTestStore(svc, "tok")
	s.replace(items(item("a", "₹100", 1)))

	err := s.Add(context.Background(), "b", 500)

	require.Error(t, err)
	var apiErr *transport.Error
	assert.ErrorAs(t, err, &apiErr)
	assert.Len(t, s.Items(), 1)
	n := feed.Drain()
	require.Len(t, n, 1)
	assert.Equal(t, notify.LevelError, n[0].Level)
	assert.Equal(t, "quantity must be between 1 and 99", n[0].Message)
}

func TestAdd_TransportFailureGenericMessage(t *testing.T) {
	svc := &mockService{err: transport.ErrTransport}
	s, feed := newTestStore(svc, "tok")

	require.Error(t, s.Add(context.Background(), "b", 1))
	n := feed.Drain()
	require.Len(t, n, 1)
	assert.Equal(t, msgAddFailed, n[0].Message)
}

func TestAdd_Unauthenticated_NoCall(t *testing.T) {
	svc := &mockService{payload: items(item("a", "₹100", 1))}
	s, feed := newTestStore(svc, "")

	require.NoError(t, s.Add(context.Background(), "a", 1))
	assert.Empty(t, svc.Calls())
	assert.Empty(t, s.Items())
	assert.Empty(t, feed.Drain())
}

func TestAdd_PayloadWithoutItemsIsUnchanged(t *testing.T) {
	svc := &mockService{payload: &domain.CartPayload{}}
	s, feed := newTestStore(svc, "tok")
	s.replace(items(item("a", "₹100", 1)))

	require.NoError(t, s.Add(context.Background(), "b", 1))
	assert.Len(t, s.Items(), 1)
	assert.Empty(t, feed.Drain())
}

func TestRemove_ReplacesAndNotifies(t *testing.T) {
	svc := &mockService{payload: items()}
	s, feed := newTestStore(svc, "tok")
	s.replace(items(item("a", "₹100", 1)))

	require.NoError(t, s.Remove(context.Background(), "a"))

	assert.Empty(t, s.Items())
	assert.Equal(t, []string{"remove:a"}, svc.Calls())
	n := feed.Drain()
	require.Len(t, n, 1)
	assert.Equal(t, MsgRemoved, n[0].Message)
}

func TestRemove_Failure(t *testing.T) {
	svc := &mockService{err: &transport.Error{Status: 404, Message: "item not found in cart"}}
	s, feed := newTestStore(svc, "tok")
	s.replace(items(item("a", "₹100", 1)))

	require.Error(t, s.Remove(context.Background(), "zzz"))
	assert.Len(t, s.Items(), 1)
	assert.Equal(t, "item not found in cart", feed.Drain()[0].Message)
}

func TestSequence_LastPayloadWins(t *testing.T) {
	svc := &mockService{}
	s, _ := newTestStore(svc, "tok")
	ctx := context.Background()

	steps := []struct {
		op      string
		payload *domain.CartPayload
	}{
		{"add", items(item("a", "₹10", 1))},
		{"add", items(item("a", "₹10", 1), item("b", "₹20", 1))},
		{"remove", items(item("b", "₹20", 1))},
		{"add", items(item("b", "₹20", 4), item("c", "₹5", 1))},
	}
	for _, step := range steps {
		svc.payload = step.payload
		if step.op == "add" {
			require.NoError(t, s.Add(ctx, "x", 1))
		} else {
			require.NoError(t, s.Remove(ctx, "x"))
		}
		assert.Equal(t, step.payload.Items, s.Items())
	}
}

func TestConcurrentAdds_LastResolvedWins(t *testing.T) {
	defer goleak.VerifyNone(t)

	svc := &mockService{gates: map[string]chan *domain.CartPayload{
		"first":  make(chan *domain.CartPayload),
		"second": make(chan *domain.CartPayload),
	}}
	s, _ := newTestStore(svc, "tok")
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(2)
	firstDone := make(chan struct{})
	go func() {
		defer wg.Done()
		defer close(firstDone)
		assert.NoError(t, s.Add(ctx, "first", 1))
	}()
	secondDone := make(chan struct{})
	go func() {
		defer wg.Done()
		defer close(secondDone)
		assert.NoError(t, s.Add(ctx, "second", 1))
	}()

	// the later-issued request resolves first...
	svc.gates["second"] <- items(item("second", "₹2", 1))
	<-secondDone
	// ...and the earlier one lands afterwards and overwrites it
	svc.gates["first"] <- items(item("first", "₹1", 1))
	<-firstDone
	wg.Wait()

	got := s.Items()
	require.Len(t, got, 1)
	assert.Equal(t, "first", got[0].ID)
}

func TestDecreaseQuantity_FloorOfOne(t *testing.T) {
	s, feed := newTestStore(&mockService{}, "tok")
	s.replace(items(item("a", "₹100", 1)))

	s.DecreaseQuantity("a")

	assert.Equal(t, 1, s.Items()[0].Quantity)
	assert.Empty(t, feed.Drain())
}

func TestDecreaseQuantity(t *testing.T) {
	s, feed := newTestStore(&mockService{}, "tok")
	s.replace(items(item("a", "₹100", 3)))

	s.DecreaseQuantity("a")

	assert.Equal(t, 2, s.Items()[0].Quantity)
	n := feed.Drain()
	require.Len(t, n, 1)
	assert.Equal(t, notify.LevelInfo, n[0].Level)
}

func TestIncreaseQuantity(t *testing.T) {
	svc := &mockService{}
	s, feed := newTestStore(svc, "tok")
	s.replace(items(nil, item("a", "₹100", 1)))

	s.IncreaseQuantity("a")

	assert.Equal(t, 2, s.Items()[1].Quantity)
	assert.Equal(t, MsgIncreased, feed.Drain()[0].Message)
	assert.Empty(t, svc.Calls(), "quantity edits stay local")
}

func TestIncreaseQuantity_UnknownID(t *testing.T) {
	s, feed := newTestStore(&mockService{}, "tok")
	s.replace(items(item("a", "₹100", 1)))
	before := s.Items()

	s.IncreaseQuantity("missing")

	assert.Equal(t, before, s.Items())
	assert.Empty(t, feed.Drain())
}

func TestFetch_DiscardsLocalQuantityEdits(t *testing.T) {
	svc := &mockService{payload: items(item("a", "₹100", 1))}
	s, _ := newTestStore(svc, "tok")
	require.NoError(t, s.Fetch(context.Background()))

	s.IncreaseQuantity("a")
	s.IncreaseQuantity("a")
	require.Equal(t, 3, s.Items()[0].Quantity)

	require.NoError(t, s.Fetch(context.Background()))
	assert.Equal(t, 1, s.Items()[0].Quantity)
}

func TestSubtotalAndVisible(t *testing.T) {
	s, _ := newTestStore(&mockService{}, "tok")
	s.replace(items(item("a", "₹100", 2), item("b", "₹50", 1), item("c", "", 4), nil))

	assert.Equal(t, "250.00", s.Subtotal().StringFixed(2))
	visible := s.Visible()
	require.Len(t, visible, 2)
	assert.Equal(t, "a", visible[0].ID)
	assert.Equal(t, "b", visible[1].ID)
	assert.Equal(t, 4, s.Len(), "hidden entries stay stored")
}

func TestClear_Idempotent(t *testing.T) {
	svc := &mockService{}
	s, _ := newTestStore(svc, "tok")

	s.Clear()
	s.Clear()
	assert.Empty(t, s.Items())

	s.replace(items(item("a", "₹100", 1)))
	s.Clear()
	s.Clear()
	assert.Empty(t, s.Items())
	assert.Empty(t, svc.Calls())
}

func TestItems_ReturnsCopy(t *testing.T) {
	s, _ := newTestStore(&mockService{}, "tok")
	s.replace(items(item("a", "₹100", 1)))

	got := s.Items()
	got[0].Quantity = 99

	assert.Equal(t, 1, s.Items()[0].Quantity)
}
