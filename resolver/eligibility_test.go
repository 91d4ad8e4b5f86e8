package resolver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/elquelo/elquelo/models"
)

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func tsp(s string) *time.Time {
	t := ts(s)
	return &t
}

func TestIsEligible(t *testing.T) {
	now := ts("2024-06-01T12:00:00Z")

	tests := []struct {
		name string
		dest models.Destination
		want bool
	}{
		{
			name: "inactive is never eligible regardless of window",
			dest: models.Destination{IsActive: false},
			want: false,
		},
		{
			name: "active with no window",
			dest: models.Destination{IsActive: true},
			want: true,
		},
		{
			name: "inside window",
			dest: models.Destination{IsActive: true, StartAt: tsp("2024-06-01T00:00:00Z"), EndAt: tsp("2024-06-02T00:00:00Z")},
			want: true,
		},
		{
			name: "before start",
			dest: models.Destination{IsActive: true, StartAt: tsp("2024-06-02T00:00:00Z")},
			want: false,
		},
		{
			name: "start boundary is inclusive",
			dest: models.Destination{IsActive: true, StartAt: tsp("2024-06-01T12:00:00Z")},
			want: true,
		},
		{
			name: "end boundary is exclusive",
			dest: models.Destination{IsActive: true, EndAt: tsp("2024-06-01T12:00:00Z")},
			want: false,
		},
		{
			name: "after end",
			dest: models.Destination{IsActive: true, EndAt: tsp("2024-06-01T00:00:00Z")},
			want: false,
		},
		{
			name: "only start bound, in the past",
			dest: models.Destination{IsActive: true, StartAt: tsp("2024-05-01T00:00:00Z")},
			want: true,
		},
		{
			name: "only end bound, in the future",
			dest: models.Destination{IsActive: true, EndAt: tsp("2024-07-01T00:00:00Z")},
			want: true,
		},
		{
			name: "inverted window treated as ineligible",
			dest: models.Destination{IsActive: true, StartAt: tsp("2024-06-02T00:00:00Z"), EndAt: tsp("2024-06-01T00:00:00Z")},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsEligible(&tt.dest, now))
		})
	}
}

func TestIsEligibleDeterministic(t *testing.T) {
	now := ts("2024-06-01T12:00:00Z")
	d := models.Destination{IsActive: true, StartAt: tsp("2024-06-01T00:00:00Z"), EndAt: tsp("2024-06-02T00:00:00Z")}

	first := IsEligible(&d, now)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, IsEligible(&d, now))
	}
}
