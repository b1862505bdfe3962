package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParallelMap_OrderPreservation(t *testing.T) {
	values := make([]int, 200)
	for i := range values {
		values[i] = i
	}

	results := ParallelMap(feed(values), 8, func(v int) (int, error) {
		return v * 2, nil
	})

	var collected []int
	err := OrderedCollect(results, func(r WorkResult[int]) error {
		require.NoError(t, r.Err)
		collected = append(collected, r.Value)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, collected, 200)
	for i, v := range collected {
		assert.Equal(t, i*2, v, "result %d out of order", i)
	}
}

func TestParallelMap_SingleWorker(t *testing.T) {
	results := ParallelMap(feed([]string{"a", "b", "c"}), 1, func(s string) (string, error) {
		return s + s, nil
	})

	var collected []string
	err := OrderedCollect(results, func(r WorkResult[string]) error {
		collected = append(collected, r.Value)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"aa", "bb", "cc"}, collected)
}

func TestOrderedCollect_StopsOnError(t *testing.T) {
	values := make([]int, 50)
	results := ParallelMap(feed(values), 4, func(v int) (int, error) {
		return v, nil
	})

	boom := errors.New("boom")
	calls := 0
	err := OrderedCollect(results, func(r WorkResult[int]) error {
		calls++
		if calls == 3 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls, "no calls after the error")
}

func TestParallelMap_WorkerErrorsDelivered(t *testing.T) {
	results := ParallelMap(feed([]int{1, 2, 3}), 2, func(v int) (int, error) {
		if v == 2 {
			return 0, errors.New("bad item")
		}
		return v, nil
	})

	var errs int
	err := OrderedCollect(results, func(r WorkResult[int]) error {
		if r.Err != nil {
			errs++
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, errs)
}
