package status

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/nova/internal/core/domain"
)

func TestNewBar_Defaults(t *testing.T) {
	b := NewBar(nil, nil)

	assert.Equal(t, StateReady, b.State())
	assert.Empty(t, b.Message())
	assert.Contains(t, b.View(), "Ready")
}

func TestBar_States(t *testing.T) {
	tests := []struct {
		name  string
		setup func(b *Bar)
		want  []string
	}{
		{
			name:  "searching",
			setup: func(b *Bar) { b.SetState(StateSearching) },
			want:  []string{"Searching..."},
		},
		{
			name: "results with limit and stats",
			setup: func(b *Bar) {
				b.SetState(StateResults)
				b.SetResultCount(3)
				b.SetLimit(5)
				b.SetStats(domain.StoreStats{Records: 40, Sources: 4})
			},
			want: []string{"3 results", "limit 5", "40 records in 4 sources", "expand"},
		},
		{
			name: "error",
			setup: func(b *Bar) {
				b.SetState(StateError)
				b.SetMessage("store unreadable")
			},
			want: []string{"Error: store unreadable"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBar(nil, nil)
			b.SetWidth(140)
			tt.setup(b)
			view := b.View()
			for _, w := range tt.want {
				assert.Contains(t, view, w)
			}
		})
	}
}

func TestBar_ClearKeepsStats(t *testing.T) {
	b := NewBar(nil, nil)
	b.SetWidth(120)
	b.SetStats(domain.StoreStats{Records: 2, Sources: 1})
	b.SetState(StateResults)
	b.SetResultCount(2)
	b.SetMessage("hello")

	b.Clear()

	assert.Equal(t, StateReady, b.State())
	assert.Empty(t, b.Message())
	assert.Contains(t, b.View(), "2 records in 1 sources")
}
