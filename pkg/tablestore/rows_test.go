package tablestore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanCell(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Paracetamol", "Paracetamol"},
		{"  spaced  ", "spaced"},
		{"nan", ""},
		{"NaT", ""},
		{"None", ""},
		{"<NA>", ""},
		{" NaT ", ""},
		{"", ""},
		{"nancy", "nancy"}, // only exact sentinel tokens are dropped
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanCell(tt.in), "CleanCell(%q)", tt.in)
	}
}

func TestCleanRows_PadsRaggedRows(t *testing.T) {
	rows := CleanRows([][]string{
		{"A", "nan"},
		{"B"},
		{},
	}, 3)

	assert.Equal(t, [][]string{
		{"A", "", ""},
		{"B", "", ""},
		{"", "", ""},
	}, rows)
}
