package course

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		in      string
		want    Weekday
		wantErr bool
	}{
		{in: "Mon", want: Mon},
		{in: "monday", want: Mon},
		{in: " pon ", want: Mon},
		{in: "śr", want: Wed},
		{in: "ŚR", want: Wed},
		{in: "czw", want: Thu},
		{in: "niedz", want: Sun},
		{in: "SAT", want: Sat},
		{in: "", wantErr: true},
		{in: "someday", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseWeekday(tt.in)
			if tt.wantErr {
				assert.Equal(t, ErrUnknownWeekday, errors.Cause(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWeekdayOf(t *testing.T) {
	// 2024-01-01 was a Monday
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, want := range Weekdays {
		assert.Equal(t, want, WeekdayOf(start.AddDate(0, 0, i)))
	}
}

func TestParseDays(t *testing.T) {
	days, err := ParseDays("pon, śr,, pt ")
	require.NoError(t, err)
	assert.Equal(t, []Weekday{Mon, Wed, Fri}, days.List())

	days, err = ParseDays("")
	require.NoError(t, err)
	assert.True(t, days.IsEmpty())

	_, err = ParseDays("pon, xyz")
	assert.Error(t, err)
}

func TestDays_JSON(t *testing.T) {
	b, err := json.Marshal(NewDays(Fri, Mon))
	require.NoError(t, err)
	assert.JSONEq(t, `["Mon","Fri"]`, string(b))

	tests := []struct {
		name string
		in   string
		want Days
	}{
		{name: "array", in: `["Mon","Fri"]`, want: NewDays(Mon, Fri)},
		{name: "legacy string", in: `"pon, pt"`, want: NewDays(Mon, Fri)},
		{name: "legacy array", in: `["pon","wt"]`, want: NewDays(Mon, Tue)},
		{name: "null", in: `null`, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Days
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))
			assert.Equal(t, tt.want, got)
		})
	}

	var d Days
	assert.Error(t, json.Unmarshal([]byte(`[1, 2]`), &d))
}
