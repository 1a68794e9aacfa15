package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petitechose-midi-studio/loader/internal/targets"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want Selector
	}{
		{"3", Selector{Kind: KindIndex, Index: 3}},
		{"index:2", Selector{Kind: KindIndex, Index: 2}},
		{"serial:COM6", Selector{Kind: KindID, ID: "serial:COM6"}},
		{"halfkay:usb:1.2", Selector{Kind: KindID, ID: "halfkay:usb:1.2"}},
		{"COM6", Selector{Kind: KindID, ID: "serial:COM6"}},
	}
	for _, c := range cases {
		got, err := Parse(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, got, c.in)
	}
}

func TestSelectorRoundTrip(t *testing.T) {
	ts := []targets.Target{
		{Kind: targets.KindHalfKay, Path: "usb:1.2"},
		{Kind: targets.KindSerial, PortName: "COM6"},
	}
	for _, want := range ts {
		sel, err := Parse(want.ID())
		require.NoError(t, err)
		idx, err := ResolveOne(sel, ts)
		require.NoError(t, err)
		assert.Equal(t, want.ID(), ts[idx].ID())
	}
}

func TestResolveOneErrors(t *testing.T) {
	ts := []targets.Target{
		{Kind: targets.KindSerial, PortName: "COM5"},
		{Kind: targets.KindSerial, PortName: "COM5"},
	}

	_, err := ResolveOne(Selector{Kind: KindID, ID: "serial:COM9"}, ts)
	require.Error(t, err)
	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, ErrNoMatch, serr.Kind)

	_, err = ResolveOne(Selector{Kind: KindID, ID: "serial:COM5"}, ts)
	require.Error(t, err)
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, ErrMultipleMatches, serr.Kind)

	_, err = ResolveOne(Selector{Kind: KindIndex, Index: 9}, ts)
	require.Error(t, err)
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, ErrIndexOutOfRange, serr.Kind)
}
