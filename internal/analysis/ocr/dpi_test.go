package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdaptiveDPI(t *testing.T) {
	cases := []struct {
		name          string
		width, height int
		want          int
	}{
		{"small page", 600, 800, 200},
		{"medium page", 850, 1100, 250},
		{"large page", 1200, 1600, 300},
		{"boundary below small", 700, 714, 200},
		{"zero dimensions", 0, 0, 200},
		{"negative", -1, 100, 200},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AdaptiveDPI(tc.width, tc.height))
		})
	}
}
