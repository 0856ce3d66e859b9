package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

func leg(from, to string, dep, arr time.Duration, mode Mode, price float64) TransportLeg {
	return TransportLeg{
		Origin:      from,
		Destination: to,
		Departure:   day.Add(dep),
		Arrival:     day.Add(arr),
		Mode:        mode,
		Price:       price,
	}
}

func TestParseMode(t *testing.T) {
	cases := map[string]Mode{
		"":       ModeUnknown,
		"train":  ModeTrain,
		" RAIL ": ModeTrain,
		"plane":  ModePlane,
		"Flight": ModePlane,
		"air":    ModePlane,
	}
	for in, want := range cases {
		got, err := ParseMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseMode("boat")
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestTransportLeg_Validate(t *testing.T) {
	assert.NoError(t, leg("Paris", "Lyon", 8*time.Hour, 10*time.Hour, ModeTrain, 50).Validate())
	assert.ErrorIs(t, leg("Paris", "Lyon", 10*time.Hour, 8*time.Hour, ModeTrain, 50).Validate(), ErrInvalidLeg)
	assert.ErrorIs(t, leg("Paris", "Lyon", 8*time.Hour, 10*time.Hour, ModeTrain, -1).Validate(), ErrInvalidLeg)
	assert.ErrorIs(t, leg("", "Lyon", 8*time.Hour, 10*time.Hour, ModeTrain, 1).Validate(), ErrInvalidLeg)
}

func TestTransportPath_Validate(t *testing.T) {
	tests := []struct {
		name string
		legs []TransportLeg
		want error
	}{
		{
			name: "direct",
			legs: []TransportLeg{leg("Paris", "Lyon", 8*time.Hour, 10*time.Hour, ModeTrain, 50)},
		},
		{
			name: "exactly one hour connection",
			legs: []TransportLeg{
				leg("Tours", "Lyon", 8*time.Hour, 11*time.Hour, ModeTrain, 40),
				leg("lyon", "Nice", 12*time.Hour, 16*time.Hour, ModeTrain, 45),
			},
		},
		{
			name: "empty",
			want: ErrEmptyPath,
		},
		{
			name: "four legs",
			legs: []TransportLeg{
				leg("A", "B", 1*time.Hour, 2*time.Hour, ModeTrain, 1),
				leg("B", "C", 3*time.Hour, 4*time.Hour, ModeTrain, 1),
				leg("C", "D", 5*time.Hour, 6*time.Hour, ModeTrain, 1),
				leg("D", "E", 7*time.Hour, 8*time.Hour, ModeTrain, 1),
			},
			want: ErrTooManyLegs,
		},
		{
			name: "mixed modes",
			legs: []TransportLeg{
				leg("Tours", "Lyon", 8*time.Hour, 11*time.Hour, ModeTrain, 40),
				leg("Lyon", "Nice", 13*time.Hour, 14*time.Hour, ModePlane, 90),
			},
			want: ErrMixedModes,
		},
		{
			name: "broken continuity",
			legs: []TransportLeg{
				leg("Tours", "Lyon", 8*time.Hour, 11*time.Hour, ModeTrain, 40),
				leg("Paris", "Nice", 13*time.Hour, 18*time.Hour, ModeTrain, 90),
			},
			want: ErrBrokenContinuity,
		},
		{
			name: "short connection",
			legs: []TransportLeg{
				leg("Tours", "Lyon", 8*time.Hour, 11*time.Hour, ModeTrain, 40),
				leg("Lyon", "Nice", 11*time.Hour+59*time.Minute, 16*time.Hour, ModeTrain, 45),
			},
			want: ErrShortConnection,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewTransportPath(tt.legs...).Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestTransportPath_Totals(t *testing.T) {
	p := NewTransportPath(
		leg("Tours", "Lyon", 8*time.Hour, 11*time.Hour, ModeTrain, 40),
		leg("Lyon", "Nice", 12*time.Hour, 16*time.Hour, ModeTrain, 45.5),
	)

	assert.InDelta(t, 85.5, p.TotalPrice(), 1e-9)
	assert.Equal(t, 8*time.Hour, p.Duration())
	assert.False(t, p.IsDirect())
	assert.Equal(t, ModeTrain, p.Mode())

	var nilPath *TransportPath
	assert.Zero(t, nilPath.TotalPrice())
	assert.Zero(t, nilPath.Duration())
}

func TestTransportLookup(t *testing.T) {
	assert.True(t, DirectCandidates(nil).Empty())
	assert.True(t, AssembledPath(nil).Empty())
	assert.Equal(t, LookupDirect, DirectCandidates([]TransportLeg{{}}).Kind)
	assert.Equal(t, "path", LookupPath.String())
}
