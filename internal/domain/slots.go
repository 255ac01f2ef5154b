package domain

import (
	"time"

	"github.com/thesilo/reservations/pkg/types"
)

// ServicePeriod период обслуживания (обед, ужин) с фиксированным шагом слотов.
// Last - время последнего слота включительно.
type ServicePeriod struct {
	Name        string
	First       types.TimeString
	Last        types.TimeString
	StepMinutes int
	Weekdays    []time.Weekday // пусто = каждый день
}

// ServiceSchedule расписание слотов ресторана
type ServiceSchedule struct {
	Periods []ServicePeriod
}

// DefaultServiceSchedule ужин ежедневно 18:00-21:00, обед по субботам 12:00-14:00, шаг 30 минут
func DefaultServiceSchedule() ServiceSchedule {
	return ServiceSchedule{
		Periods: []ServicePeriod{
			{
				Name:        "lunch",
				First:       types.MustTimeString("12:00"),
				Last:        types.MustTimeString("14:00"),
				StepMinutes: 30,
				Weekdays:    []time.Weekday{time.Saturday},
			},
			{
				Name:        "dinner",
				First:       types.MustTimeString("18:00"),
				Last:        types.MustTimeString("21:00"),
				StepMinutes: 30,
			},
		},
	}
}

// SlotsFor возвращает все слоты на указанный день недели в порядке возрастания
func (s ServiceSchedule) SlotsFor(day time.Weekday) []types.TimeString {
	slots := make([]types.TimeString, 0)

	for _, period := range s.Periods {
		if !period.servesOn(day) || period.StepMinutes <= 0 {
			continue
		}

		current := period.First
		for !current.IsAfter(period.Last) {
			slots = append(slots, current)

			next, err := current.AddMinutes(period.StepMinutes)
			if err != nil {
				break
			}
			current = next
		}
	}

	return slots
}

// IsServiceSlot проверяет, что время является слотом расписания в указанную дату
func (s ServiceSchedule) IsServiceSlot(date time.Time, t types.TimeString) bool {
	for _, slot := range s.SlotsFor(date.Weekday()) {
		if slot.Equal(t) {
			return true
		}
	}
	return false
}

// UpcomingSlots возвращает слоты на дату date, которые строго позже now
func (s ServiceSchedule) UpcomingSlots(date time.Time, now time.Time, loc *time.Location) []types.TimeString {
	upcoming := make([]types.TimeString, 0)
	for _, slot := range s.SlotsFor(date.Weekday()) {
		if slot.On(date, loc).After(now) {
			upcoming = append(upcoming, slot)
		}
	}
	return upcoming
}

func (p ServicePeriod) servesOn(day time.Weekday) bool {
	if len(p.Weekdays) == 0 {
		return true
	}
	for _, d := range p.Weekdays {
		if d == day {
			return true
		}
	}
	return false
}
