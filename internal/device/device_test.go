package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		dev  *Device
		want string
	}{
		{name: "nil device", dev: nil, want: ""},
		{name: "alias wins", dev: &Device{ID: "/p", Address: "AA", Name: "n", Alias: "a"}, want: "a"},
		{name: "name over address", dev: &Device{ID: "/p", Address: "AA", Name: "n"}, want: "n"},
		{name: "address over id", dev: &Device{ID: "/p", Address: "AA"}, want: "AA"},
		{name: "id only", dev: &Device{ID: "/p"}, want: "/p"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.dev.DisplayName())
		})
	}
}

func TestString(t *testing.T) {
	var none *Device
	assert.Equal(t, "<none>", none.String())
	assert.Equal(t, "HC-05 (98:D3:31:F5:1A:2B)", (&Device{ID: "/p", Name: "HC-05", Address: "98:D3:31:F5:1A:2B"}).String())
	assert.Equal(t, "/p", (&Device{ID: "/p"}).String())
}
