package targets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTargetID(t *testing.T) {
	hk := Target{Kind: KindHalfKay, Path: "usb:1.2"}
	assert.Equal(t, "halfkay:usb:1.2", hk.ID())

	ser := Target{Kind: KindSerial, PortName: "COM6"}
	assert.Equal(t, "serial:COM6", ser.ID())
}

func TestSortTargetsHalfKayBeforeSerial(t *testing.T) {
	ts := []Target{
		{Kind: KindSerial, PortName: "COM6"},
		{Kind: KindHalfKay, Path: "B"},
		{Kind: KindSerial, PortName: "COM5"},
		{Kind: KindHalfKay, Path: "A"},
	}
	SortTargets(ts)

	got := make([]string, len(ts))
	for i, t2 := range ts {
		got[i] = t2.ID()
	}
	assert.Equal(t, []string{
		"halfkay:A",
		"halfkay:B",
		"serial:COM5",
		"serial:COM6",
	}, got)
}
