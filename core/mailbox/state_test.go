package mailbox

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestState_JSON(t *testing.T) {
	type Data struct {
		Value int `json:"value"`
	}
	s := NewState[Data](
		t.Context(),
		&Data{Value: 42},
		func(d *Data) {},
	)
	defer s.Close()
	inc := func(d *Data) { d.Value++ }

	go func() {
		for i := 0; i < 10; i++ {
			_, _ = json.Marshal(s)
		}
	}()

	require.NoError(t, s.Process(inc, inc, inc))

	data, err := json.Marshal(s)
	require.NoError(t, err)
	require.Equal(t, `{"value":45}`, string(data))

	v, err := Read[Data, int](s, func(d *Data) int { return d.Value })
	require.NoError(t, err)
	require.Equal(t, 45, v)

	require.NoError(t, json.Unmarshal([]byte(`{"value":7}`), s))
	require.Equal(t, 7, <-ReadAsync[Data, int](s, func(d *Data) int { return d.Value }))
}

func TestState_submitAndCallback(t *testing.T) {
	writes := 0
	s := NewState(t.Context(), new(int), func(*int) { writes++ })

	done := s.Submit(func(v *int) { *v = 10 })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("submit did not complete")
	}

	v, err := Read(s, func(v *int) int { return *v })
	require.NoError(t, err)
	require.Equal(t, 10, v)

	n, err := Read(s, func(*int) int { return writes })
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestState_closed(t *testing.T) {
	s := NewState(t.Context(), new(int), nil)
	s.Close()

	require.ErrorIs(t, s.Process(func(v *int) { *v++ }), ErrQueueClosed)
	_, err := Read(s, func(v *int) int { return *v })
	require.ErrorIs(t, err, ErrQueueClosed)

	_, ok := <-ReadAsync(s, func(v *int) int { return *v })
	require.False(t, ok)

	select {
	case <-s.Submit(func(v *int) {}):
	case <-time.After(time.Second):
		t.Fatal("submit on a closed state must not block")
	}
}
