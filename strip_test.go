package ws281x_test

import (
	"errors"
	"testing"

	. "github.com/coreman2200/funtimes-ws281x"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var TestOrderParsesToExpectedStripType = []struct {
	Order  string
	Expect StripType
}{
	{"RGB", StripWS2811RGB},
	{"RBG", StripWS2811RBG},
	{"GRB", StripWS2811GRB},
	{"GBR", StripWS2811GBR},
	{"BRG", StripWS2811BRG},
	{"BGR", StripWS2811BGR},
	{"RGBW", StripSK6812RGBW},
	{"GRBW", StripSK6812GRBW},
	{"BGRW", StripSK6812BGRW},
	{"grbw", StripSK6812GRBW},
	{" GRB ", StripWS2811GRB},
}

func TestParseStripType(t *testing.T) {
	for _, e := range TestOrderParsesToExpectedStripType {
		t.Run(e.Order, func(t *testing.T) {
			got, err := ParseStripType(e.Order)
			require.NoError(t, err)
			assert.Equal(t, e.Expect, got)
		})
	}
}

func TestParseStripTypeRejectsBadOrders(t *testing.T) {
	for _, order := range []string{"", "RG", "RGG", "RGBX", "WRGB", "RGBWB"} {
		_, err := ParseStripType(order)
		assert.True(t, errors.Is(err, ErrInvalidConfiguration), "order %q", order)
	}
}

func TestStripTypeShifts(t *testing.T) {
	// On a GRB strip the first wire slot carries green (bit 8 of the
	// packed pixel), then red (16), then blue (0).
	st := StripWS2811GRB
	assert.Equal(t, uint(8), st.Shift1())
	assert.Equal(t, uint(16), st.Shift2())
	assert.Equal(t, uint(0), st.Shift3())
	assert.Equal(t, 3, st.ColorsPerPixel())

	stw := StripSK6812GRBW
	assert.Equal(t, uint(24), stw.Shift4())
	assert.Equal(t, 4, stw.ColorsPerPixel())
}

func TestStripTypeAliases(t *testing.T) {
	assert.Equal(t, StripWS2811GRB, StripWS2812)
	assert.Equal(t, StripWS2811GRB, StripSK6812)
	assert.Equal(t, StripSK6812GRBW, StripSK6812W)
}
