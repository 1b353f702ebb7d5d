package geo

import (
	"math"
	"testing"
)

func TestHaversineDistance(t *testing.T) {
	tests := []struct {
		name      string
		a, b      Location
		want      float64
		tolerance float64
	}{
		{
			name:      "same point",
			a:         Location{Latitude: 55.75, Longitude: 37.61},
			b:         Location{Latitude: 55.75, Longitude: 37.61},
			want:      0,
			tolerance: 0.001,
		},
		{
			name:      "one degree of latitude",
			a:         Location{Latitude: 0, Longitude: 0},
			b:         Location{Latitude: 1, Longitude: 0},
			want:      EarthRadius * math.Pi / 180,
			tolerance: 0.01,
		},
		{
			name:      "moscow to saint petersburg",
			a:         Location{Latitude: 55.7558, Longitude: 37.6173},
			b:         Location{Latitude: 59.9343, Longitude: 30.3351},
			want:      634000,
			tolerance: 3000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.DistanceTo(tt.b)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("DistanceTo() = %f, want %f ± %f", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestNowhereIsInfinitelyFar(t *testing.T) {
	p := Location{Latitude: 0, Longitude: 0}
	if d := p.DistanceTo(Nowhere); !math.IsInf(d, 1) {
		t.Errorf("distance to Nowhere = %f, want +Inf", d)
	}
	if d := Nowhere.DistanceTo(p); !math.IsInf(d, 1) {
		t.Errorf("distance from Nowhere = %f, want +Inf", d)
	}
	if !Nowhere.IsNowhere() {
		t.Error("Nowhere.IsNowhere() = false")
	}
	if p.IsNowhere() {
		t.Error("(0,0).IsNowhere() = true")
	}
}

func TestBoundingBoxCenter(t *testing.T) {
	bb := BoundsOf([]Location{
		{Latitude: 10, Longitude: 20},
		{Latitude: 12, Longitude: 21},
		{Latitude: 11, Longitude: 24},
	})
	c := bb.Center()
	if c.Latitude != 11 || c.Longitude != 22 {
		t.Errorf("Center() = %v, want 11,22", c)
	}
	if NewBoundingBox().IsEmpty() != true {
		t.Error("new box should be empty")
	}
}

func TestValidate(t *testing.T) {
	if err := (Location{Latitude: 91}).Validate(); err == nil {
		t.Error("expected latitude error")
	}
	if err := (Location{Longitude: -181}).Validate(); err == nil {
		t.Error("expected longitude error")
	}
	if err := Nowhere.Validate(); err == nil {
		t.Error("expected error for Nowhere")
	}
	if err := (Location{Latitude: 55, Longitude: 37}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
