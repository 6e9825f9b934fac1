package timeline

import (
	"fmt"
	"strings"

	"github.com/mateluky/f1-race-intelligence/internal/model"
	"github.com/mateluky/f1-race-intelligence/internal/openf1"
)

// cautionPitWindow is how many laps either side of a caution a pit stop
// still counts as taken under it.
const cautionPitWindow = 2

// defaultPitImpactThreshold is the fractional lap-time delta that
// classifies a stop as benefited/hurt. Carried over from the heuristic
// this pipeline inherited; tunable via config, not ground truth.
const defaultPitImpactThreshold = 0.05

// computeImpact annotates every merged event with who it affected and
// how. It only fills impact_summary, participants and confidence; it
// never removes or reorders events.
func computeImpact(events []model.TimelineEvent, laps, pits []openf1.Record, names map[int]string, threshold float64) {
	if threshold <= 0 {
		threshold = defaultPitImpactThreshold
	}
	times := lapTimesByDriver(laps)
	numbers := invertNames(names)

	for i := range events {
		e := &events[i]
		switch e.Kind {
		case model.KindSafetyCar, model.KindVirtualSafetyCar:
			cautionImpact(e, pits, names)
		case model.KindPitStop:
			pitImpact(e, times, numbers, threshold)
		default:
			if len(e.Participants) > 0 {
				e.ImpactSummary = strings.Join(e.Participants, ", ") + " affected."
				e.Confidence = model.ConfidenceHigh
			} else {
				e.ImpactSummary = "Track condition change, review strategies."
				e.Confidence = model.ConfidenceHigh
			}
		}
	}
}

// cautionImpact lists drivers who pitted within the caution window.
func cautionImpact(e *model.TimelineEvent, pits []openf1.Record, names map[int]string) {
	if e.Lap == 0 {
		e.ImpactSummary = "No pit stops linked to this caution."
		return
	}

	var beneficiaries []string
	seen := map[string]bool{}
	for _, pit := range pits {
		lap := pit.Lap()
		if lap == 0 || lap < e.Lap-cautionPitWindow || lap > e.Lap+cautionPitWindow {
			continue
		}
		name := nameFor(names, pit.Driver())
		if !seen[name] {
			seen[name] = true
			beneficiaries = append(beneficiaries, name)
		}
	}

	if len(beneficiaries) == 0 {
		e.ImpactSummary = "No one pitted during the caution window."
		return
	}
	e.AddParticipants(beneficiaries...)
	e.ImpactSummary = fmt.Sprintf("Drivers %s benefited from pit opportunity during safety car period.",
		strings.Join(beneficiaries, ", "))
}

// pitImpact compares each pitting driver's pace before the stop with the
// lap right after it. Deltas inside the threshold stay unclassified and
// out of the summary.
func pitImpact(e *model.TimelineEvent, times map[int]map[int]float64, numbers map[string]int, threshold float64) {
	summary := fmt.Sprintf("Pit stop window on lap %d: %d driver(s) changed tires.", e.Lap, len(e.Participants))

	for _, name := range e.Participants {
		num, ok := numbers[name]
		if !ok || e.Lap == 0 {
			continue
		}
		driverTimes := times[num]
		before := meanLapTime(driverTimes, e.Lap-1, e.Lap-1)
		after := driverTimes[e.Lap+1]
		if before <= 0 || after <= 0 {
			continue
		}

		delta := (before - after) / before
		switch {
		case delta >= threshold:
			summary += fmt.Sprintf(" %s benefited: %.1f%% faster after the stop.", name, delta*100)
		case delta <= -threshold:
			summary += fmt.Sprintf(" %s hurt: %.1f%% slower after the stop.", name, -delta*100)
		}
	}
	e.ImpactSummary = summary
}

// lapTimesByDriver indexes lap durations as driver -> lap -> seconds.
func lapTimesByDriver(laps []openf1.Record) map[int]map[int]float64 {
	times := map[int]map[int]float64{}
	for _, rec := range laps {
		num, lap, duration := rec.Driver(), rec.Lap(), rec.LapTime()
		if num == 0 || lap == 0 || duration <= 0 {
			continue
		}
		if times[num] == nil {
			times[num] = map[int]float64{}
		}
		times[num][lap] = duration
	}
	return times
}

// meanLapTime averages the populated laps in [from, to]; 0 when none.
func meanLapTime(times map[int]float64, from, to int) float64 {
	var sum float64
	var n int
	for lap := from; lap <= to; lap++ {
		if t, ok := times[lap]; ok && t > 0 {
			sum += t
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func invertNames(names map[int]string) map[string]int {
	numbers := make(map[string]int, len(names))
	for num, name := range names {
		numbers[name] = num
	}
	return numbers
}
