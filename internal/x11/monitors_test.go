package x11

import "testing"

func TestMarkFallbackPrimary(t *testing.T) {
	tests := []struct {
		name     string
		monitors []Monitor
		want     []bool
	}{
		{
			name:     "reported primary wins",
			monitors: []Monitor{{X: 0, Y: 0}, {X: 1920, Y: 0, Primary: true}},
			want:     []bool{false, true},
		},
		{
			name:     "origin monitor is flagged",
			monitors: []Monitor{{X: 1920, Y: 0}, {X: 0, Y: 0}},
			want:     []bool{false, true},
		},
		{
			name:     "nothing at origin",
			monitors: []Monitor{{X: 100, Y: 0}},
			want:     []bool{false},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			markFallbackPrimary(tt.monitors)
			for i, m := range tt.monitors {
				if m.Primary != tt.want[i] {
					t.Fatalf("monitor %d primary = %v, want %v", i, m.Primary, tt.want[i])
				}
			}
		})
	}
}
