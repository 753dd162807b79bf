package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseScan(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"track 1", "%B998877^PEREZ/JUAN^2512?", "998877"},
		{"track 2", ";998877=2512101?", "998877"},
		{"both tracks read together", "%B123456^DOE/J^25?;123456=25?", "123456"},
		{"bare card number", "998877", "998877"},
		{"typed employee code", "  alc01 \r\n", "alc01"},
		{"full-width digits", "９９８８７７", "998877"},
		{"framed digits without a track", "?;00998877?", "00998877"},
		{"framed code", "%ALC01?", "ALC01"},
		{"framing only", "%;?", ""},
		{"blank", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseScan(tt.raw))
		})
	}
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "ALC01", NormalizeCode(" alc01 "))
	assert.Equal(t, "ALC01", NormalizeCode("ａｌｃ０１"))
}
