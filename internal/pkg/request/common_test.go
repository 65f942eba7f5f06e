package request

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowQuery(t *testing.T) {
	assert.False(t, WindowQuery{Date: "2024-06-01", StartTime: "10:00"}.Requested())

	q := WindowQuery{Date: "2024-06-01", StartTime: "10:00", EndTime: "12:30"}
	require.True(t, q.Requested())

	date, window, err := q.Parse()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), date)
	assert.Equal(t, 600, window.Start)
	assert.Equal(t, 750, window.End)

	_, _, err = WindowQuery{Date: "2024-06-01", StartTime: "12:00", EndTime: "10:00"}.Parse()
	assert.Error(t, err)

	_, _, err = WindowQuery{Date: "June 1", StartTime: "10:00", EndTime: "12:00"}.Parse()
	assert.Error(t, err)
}
