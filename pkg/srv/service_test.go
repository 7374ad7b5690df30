package srv

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	name     string
	startErr error
	order    *[]string
}

func (r *recorder) Start(ctx context.Context) error {
	return r.startErr
}

func (r *recorder) Shutdown(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("shutdown without deadline")
	}
	*r.order = append(*r.order, r.name)
	return nil
}

func TestShutdownServices_ReverseOrder(t *testing.T) {
	var order []string
	services := []Service{
		&recorder{name: "db", order: &order},
		&recorder{name: "http", order: &order},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ShutdownServices(ctx, services)

	assert.Equal(t, []string{"http", "db"}, order)
}

func TestStartServices_ReportsFailure(t *testing.T) {
	var order []string
	boom := errors.New("boom")
	errs := StartServices(context.Background(), []Service{
		&recorder{name: "ok", order: &order},
		&recorder{name: "bad", startErr: boom, order: &order},
	})

	select {
	case err := <-errs:
		require.ErrorIs(t, err, boom)
	case <-time.After(time.Second):
		t.Fatal("start failure not reported")
	}
}

func TestNewCleanup(t *testing.T) {
	called := false
	s := NewCleanup(func() error {
		called = true
		return nil
	})
	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Shutdown(context.Background()))
	assert.True(t, called)
}
