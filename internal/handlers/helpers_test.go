package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFecha(t *testing.T) {
	d, err := parseFecha("2026-03-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), d)

	ts, err := parseFecha("2026-03-15T08:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, 8, ts.Hour())

	_, err = parseFecha("15/03/2026")
	assert.Error(t, err)
}

func TestParseFechaPtr(t *testing.T) {
	result, err := parseFechaPtr(nil)
	require.NoError(t, err)
	assert.Nil(t, result)

	empty := ""
	result, err = parseFechaPtr(&empty)
	require.NoError(t, err)
	assert.Nil(t, result)

	value := "2026-03-15"
	result, err = parseFechaPtr(&value)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 2026, result.Year())

	bad := "soon"
	_, err = parseFechaPtr(&bad)
	assert.Error(t, err)
}
