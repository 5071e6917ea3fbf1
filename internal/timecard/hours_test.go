package timecard

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"Mansoor88-6/timeclock/internal/models"
)

func TestWorkedHours(t *testing.T) {
	tests := []struct {
		name   string
		events []models.ClockEvent
		want   float64
	}{
		{
			name: "lunch is subtracted",
			events: []models.ClockEvent{
				ev("1", day, "08:00", models.KindClockIn),
				ev("2", day, "12:00", models.KindLunchOut),
				ev("3", day, "12:30", models.KindLunchIn),
				ev("4", day, "16:30", models.KindClockOut),
			},
			want: 8,
		},
		{
			name:   "lone clock out",
			events: []models.ClockEvent{ev("1", day, "09:00", models.KindClockOut)},
			want:   0,
		},
		{
			name:   "clock in without clock out",
			events: []models.ClockEvent{ev("1", day, "08:00", models.KindClockIn)},
			want:   0,
		},
		{
			name: "multiple pairs are summed",
			events: []models.ClockEvent{
				ev("1", day, "08:00", models.KindClockIn),
				ev("2", day, "10:00", models.KindClockOut),
				ev("3", day, "13:00", models.KindClockIn),
				ev("4", day, "14:30", models.KindClockOut),
			},
			want: 3.5,
		},
		{
			name: "lunch out without lunch in freezes accrual",
			events: []models.ClockEvent{
				ev("1", day, "08:00", models.KindClockIn),
				ev("2", day, "12:00", models.KindLunchOut),
				ev("3", day, "17:00", models.KindClockOut),
			},
			want: 4,
		},
		{
			name: "open span after lunch counts only the closed part",
			events: []models.ClockEvent{
				ev("1", day, "08:00", models.KindClockIn),
				ev("2", day, "12:00", models.KindLunchOut),
				ev("3", day, "12:30", models.KindLunchIn),
			},
			want: 4,
		},
		{
			name: "repeated clock in keeps the first",
			events: []models.ClockEvent{
				ev("1", day, "08:00", models.KindClockIn),
				ev("2", day, "09:00", models.KindClockIn),
				ev("3", day, "10:00", models.KindClockOut),
			},
			want: 2,
		},
		{
			name: "lunch in without lunch out is ignored",
			events: []models.ClockEvent{
				ev("1", day, "08:00", models.KindClockIn),
				ev("2", day, "12:30", models.KindLunchIn),
				ev("3", day, "16:00", models.KindClockOut),
			},
			want: 8,
		},
		{
			name: "unknown kinds are ignored",
			events: []models.ClockEvent{
				ev("1", day, "08:00", models.KindClockIn),
				ev("2", day, "09:00", models.EventKind("break_start")),
				ev("3", day, "10:00", models.KindClockOut),
			},
			want: 2,
		},
		{
			name:   "empty day",
			events: nil,
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, WorkedHours(tt.events), 1e-9)
		})
	}
}

func TestWorkedHours_IndependentOfInputOrder(t *testing.T) {
	events := []models.ClockEvent{
		ev("1", day, "07:00", models.KindClockIn),
		ev("2", day, "11:00", models.KindLunchOut),
		ev("3", day, "11:45", models.KindLunchIn),
		ev("4", day, "15:00", models.KindClockOut),
		ev("5", day, "18:00", models.KindClockIn),
		ev("6", day, "20:00", models.KindClockOut),
	}
	want := WorkedHours(events)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]models.ClockEvent(nil), events...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.InDelta(t, want, WorkedHours(shuffled), 1e-9)
	}
	assert.InDelta(t, 9.25, want, 1e-9)
}

func TestWorkedHours_SameTimestampTieBreaksByID(t *testing.T) {
	// "a" sorts before "b", so the clock_out closes the span before the
	// second clock_in opens a new one that never closes.
	events := []models.ClockEvent{
		ev("b", day, "12:00", models.KindClockIn),
		ev("a", day, "12:00", models.KindClockOut),
		ev("0", day, "08:00", models.KindClockIn),
	}
	assert.InDelta(t, 4, WorkedHours(events), 1e-9)
}
