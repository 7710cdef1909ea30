package products

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFoldSearchTerm(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Maçã Gala", "maca gala"},
		{"  PÃO FRANCÊS ", "pao frances"},
		{"leite", "leite"},
		{"", ""},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, foldSearchTerm(tc.in))
	}
}
