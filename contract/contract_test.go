// Copyright © 2024 The ELPS authors

package contract

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssertf(t *testing.T) {
	assert.NotPanics(t, func() { Assertf(true, "unused") })
	assert.PanicsWithError(t, "internal error: bad kind 7", func() { Assertf(false, "bad kind %d", 7) })
}

func TestRecover(t *testing.T) {
	run := func() (err error) {
		defer Recover(&err)
		Failf("unhandled node %s", "x")
		return nil
	}
	err := run()
	require.Error(t, err)
	assert.True(t, IsInternal(err))
	assert.Contains(t, fmt.Sprintf("%+v", err), "unhandled node x")
	assert.Contains(t, fmt.Sprintf("%+v", err), "contract_test.go")
}

func TestRecoverRepanics(t *testing.T) {
	assert.PanicsWithValue(t, "boom", func() {
		var err error
		defer Recover(&err)
		panic("boom")
	})
}
