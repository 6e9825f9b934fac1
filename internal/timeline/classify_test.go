package timeline

import (
	"testing"

	"github.com/mateluky/f1-race-intelligence/internal/model"
)

func TestClassifyControlMessage(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    model.EventKind
		keep    bool
	}{
		{"red flag", "RED FLAG", model.KindRedFlag, true},
		{"red beats yellow", "RED FLAG FOLLOWING YELLOW FLAG IN SECTOR 2", model.KindRedFlag, true},
		{"safety car", "SAFETY CAR DEPLOYED", model.KindSafetyCar, true},
		{"safety car beats debris", "SAFETY CAR DEPLOYED - DEBRIS AT STE DEVOTE", model.KindSafetyCar, true},
		{"virtual safety car", "VIRTUAL SAFETY CAR DEPLOYED", model.KindVirtualSafetyCar, true},
		{"vsc shorthand", "VSC ENDING", model.KindVirtualSafetyCar, true},
		{"yellow flag", "YELLOW FLAG IN SECTOR 7", model.KindYellowFlag, true},
		{"split yellow and flag", "DOUBLE WAVED YELLOW - FLAG MARSHALS AT TURN 3", model.KindYellowFlag, true},
		{"weather", "LIGHT RAIN REPORTED AT TURN 8", model.KindWeather, true},
		{"track conditions", "TRACK CONDITIONS IMPROVING", model.KindWeather, true},
		{"incident collision", "TURN 1 INCIDENT INVOLVING CARS 4 AND 63", model.KindIncident, true},
		{"incident investigation", "FIA STEWARDS: CAR 31 UNDER INVESTIGATION FOR TRACK LIMITS", model.KindIncident, true},
		{"incident penalty", "5 SECOND TIME PENALTY FOR CAR 11", model.KindIncident, true},
		{"grid penalty is still a penalty", "CAR 44 GRID PENALTY APPLIED", model.KindIncident, true},
		{"info green light kept", "GREEN LIGHT - PIT EXIT OPEN", model.KindInfo, true},
		{"info pit lane kept", "PIT LANE CLOSED", model.KindInfo, true},
		{"info tyre rule kept", "TYRE RULE: TWO COMPOUNDS MANDATORY", model.KindInfo, true},
		{"info drs dropped", "DRS DISABLED", model.KindInfo, false},
		{"info chequered flag dropped", "CHEQUERED FLAG", model.KindInfo, false},
		{"rain risk forecast is weather", "RISK OF RAIN FOR F1 RACE IS 0%", model.KindWeather, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, keep := classifyControlMessage(tt.message)
			if kind != tt.want {
				t.Errorf("classifyControlMessage(%q) kind = %s, want %s", tt.message, kind, tt.want)
			}
			if keep != tt.keep {
				t.Errorf("classifyControlMessage(%q) keep = %v, want %v", tt.message, keep, tt.keep)
			}
		})
	}
}

func TestClassifyPriorityOrder(t *testing.T) {
	// A message matching several rules lands on the most severe one.
	kind, keep := classifyControlMessage("RED FLAG - SAFETY CAR RECALLED - RAIN AND DEBRIS ON TRACK")
	if !keep || kind != model.KindRedFlag {
		t.Errorf("expected RED_FLAG to win, got %s (keep=%v)", kind, keep)
	}

	kind, keep = classifyControlMessage("SAFETY CAR DEPLOYED - CRASH AT TURN 4")
	if !keep || kind != model.KindSafetyCar {
		t.Errorf("expected SAFETY_CAR to beat INCIDENT, got %s (keep=%v)", kind, keep)
	}
}
