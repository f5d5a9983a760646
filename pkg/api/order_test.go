package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrder(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []Order
		wantErr bool
	}{
		{name: "empty", raw: "", want: nil},
		{name: "bare column", raw: "name", want: []Order{{Column: "name"}}},
		{name: "desc", raw: "created_at.desc", want: []Order{{Column: "created_at", Desc: true}}},
		{
			name: "several",
			raw:  "priority.desc, name.asc",
			want: []Order{{Column: "priority", Desc: true}, {Column: "name"}},
		},
		{name: "bad direction", raw: "name.sideways", wantErr: true},
		{name: "missing column", raw: ".desc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseOrder(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
