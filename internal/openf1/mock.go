package openf1

import (
	"context"
)

// MockClient serves canned Monaco 2023 race data for offline use. The
// dataset is shaped like real API payloads (field names included) so
// everything downstream exercises the same code paths as the REST
// client.
type MockClient struct{}

// NewMockClient creates the offline telemetry client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

const mockSessionKey = "9222"

func (m *MockClient) SearchSessions(ctx context.Context, year int, eventName, kind string) []Record {
	var matched []Record
	label := sessionLabel(kind)
	for _, rec := range mockSessions() {
		if rec.Int("year") != year {
			continue
		}
		if label != "" && rec.Str("session_name") != label {
			continue
		}
		if eventName != "" && !sessionMatchesName(rec, eventName) {
			continue
		}
		matched = append(matched, rec)
	}
	return matched
}

func (m *MockClient) GetControlMessages(ctx context.Context, sessionID string) []Record {
	if sessionID != mockSessionKey {
		return nil
	}
	return []Record{
		{"session_key": 9222, "lap_number": 1, "date": "2023-05-28T13:03:10+00:00",
			"category": "Flag", "message": "GREEN LIGHT - PIT EXIT OPEN"},
		{"session_key": 9222, "lap_number": 10, "date": "2023-05-28T13:18:42+00:00",
			"category": "Flag", "message": "YELLOW FLAG IN SECTOR 7"},
		{"session_key": 9222, "lap_number": 12, "date": "2023-05-28T13:21:05+00:00",
			"category": "SafetyCar", "message": "VIRTUAL SAFETY CAR DEPLOYED"},
		{"session_key": 9222, "lap_number": 13, "date": "2023-05-28T13:23:44+00:00",
			"category": "SafetyCar", "message": "VIRTUAL SAFETY CAR ENDING"},
		{"session_key": 9222, "lap_number": 21, "date": "2023-05-28T13:35:30+00:00",
			"category": "SafetyCar", "message": "SAFETY CAR DEPLOYED - DEBRIS AT STE DEVOTE"},
		{"session_key": 9222, "lap_number": 24, "date": "2023-05-28T13:41:12+00:00",
			"category": "SafetyCar", "message": "SAFETY CAR IN THIS LAP"},
		{"session_key": 9222, "lap_number": 30, "date": "2023-05-28T13:52:08+00:00",
			"category": "Other", "message": "FIA STEWARDS: CAR 31 UNDER INVESTIGATION FOR TRACK LIMITS"},
		{"session_key": 9222, "lap_number": 40, "date": "2023-05-28T14:10:55+00:00",
			"category": "Other", "message": "LIGHT RAIN REPORTED AT TURN 8 - TRACK CONDITIONS WORSENING"},
		{"session_key": 9222, "lap_number": 45, "date": "2023-05-28T14:19:21+00:00",
			"category": "Drs", "message": "DRS DISABLED"},
		{"session_key": 9222, "lap_number": 54, "date": "2023-05-28T14:34:02+00:00",
			"category": "Flag", "message": "CHEQUERED FLAG"},
	}
}

func (m *MockClient) GetLaps(ctx context.Context, sessionID string, driver int) []Record {
	if sessionID != mockSessionKey {
		return nil
	}
	var records []Record
	for _, l := range mockLapTable {
		if driver > 0 && l.driver != driver {
			continue
		}
		records = append(records, Record{
			"session_key":   9222,
			"driver_number": l.driver,
			"lap_number":    l.lap,
			"lap_duration":  l.duration,
			"position":      l.position,
		})
	}
	return records
}

func (m *MockClient) GetStints(ctx context.Context, sessionID string, driver int) []Record {
	if sessionID != mockSessionKey {
		return nil
	}
	stints := []Record{
		{"session_key": 9222, "driver_number": 1, "stint_number": 1, "compound": "MEDIUM", "lap_start": 1, "lap_end": 21},
		{"session_key": 9222, "driver_number": 1, "stint_number": 2, "compound": "HARD", "lap_start": 22, "lap_end": 54},
		{"session_key": 9222, "driver_number": 14, "stint_number": 1, "compound": "MEDIUM", "lap_start": 1, "lap_end": 21},
		{"session_key": 9222, "driver_number": 14, "stint_number": 2, "compound": "HARD", "lap_start": 22, "lap_end": 54},
		{"session_key": 9222, "driver_number": 31, "stint_number": 1, "compound": "HARD", "lap_start": 1, "lap_end": 33},
		{"session_key": 9222, "driver_number": 31, "stint_number": 2, "compound": "INTERMEDIATE", "lap_start": 34, "lap_end": 54},
	}
	if driver <= 0 {
		return stints
	}
	var filtered []Record
	for _, s := range stints {
		if s.Driver() == driver {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

func (m *MockClient) GetPitStops(ctx context.Context, sessionID string, driver int) []Record {
	if sessionID != mockSessionKey {
		return nil
	}
	pits := []Record{
		{"session_key": 9222, "driver_number": 1, "lap_number": 22, "pit_duration": 21.5, "compound": "HARD",
			"date": "2023-05-28T13:37:02+00:00"},
		{"session_key": 9222, "driver_number": 14, "lap_number": 22, "pit_duration": 22.1, "compound": "HARD",
			"date": "2023-05-28T13:37:09+00:00"},
		{"session_key": 9222, "driver_number": 31, "lap_number": 34, "pit_duration": 23.4, "compound": "INTERMEDIATE",
			"date": "2023-05-28T13:59:47+00:00"},
	}
	if driver <= 0 {
		return pits
	}
	var filtered []Record
	for _, p := range pits {
		if p.Driver() == driver {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

func (m *MockClient) GetDrivers(ctx context.Context, sessionID string) []Record {
	if sessionID != mockSessionKey {
		return nil
	}
	return []Record{
		{"session_key": 9222, "driver_number": 1, "full_name": "Max Verstappen", "name_acronym": "VER", "team_name": "Red Bull Racing"},
		{"session_key": 9222, "driver_number": 14, "full_name": "Fernando Alonso", "name_acronym": "ALO", "team_name": "Aston Martin"},
		{"session_key": 9222, "driver_number": 31, "full_name": "Esteban Ocon", "name_acronym": "OCO", "team_name": "Alpine"},
		{"session_key": 9222, "driver_number": 44, "full_name": "Lewis Hamilton", "name_acronym": "HAM", "team_name": "Mercedes"},
		{"session_key": 9222, "driver_number": 16, "full_name": "Charles Leclerc", "name_acronym": "LEC", "team_name": "Ferrari"},
	}
}

func (m *MockClient) GetWeather(ctx context.Context, sessionID string) []Record {
	if sessionID != mockSessionKey {
		return nil
	}
	return []Record{
		{"session_key": 9222, "date": "2023-05-28T13:05:00+00:00", "rainfall": 0, "air_temperature": 24.1, "track_temperature": 41.8},
		{"session_key": 9222, "date": "2023-05-28T13:35:00+00:00", "rainfall": 0, "air_temperature": 23.8, "track_temperature": 40.2},
		{"session_key": 9222, "date": "2023-05-28T14:08:00+00:00", "rainfall": 1, "air_temperature": 21.4, "track_temperature": 33.6},
		{"session_key": 9222, "date": "2023-05-28T14:20:00+00:00", "rainfall": 1, "air_temperature": 21.0, "track_temperature": 31.9},
		{"session_key": 9222, "date": "2023-05-28T14:31:00+00:00", "rainfall": 0, "air_temperature": 21.6, "track_temperature": 32.4},
	}
}

func (m *MockClient) GetPositions(ctx context.Context, sessionID string) []Record {
	if sessionID != mockSessionKey {
		return nil
	}
	return []Record{
		{"session_key": 9222, "driver_number": 1, "position": 1, "date": "2023-05-28T13:03:00+00:00"},
		{"session_key": 9222, "driver_number": 14, "position": 3, "date": "2023-05-28T13:03:00+00:00"},
		{"session_key": 9222, "driver_number": 31, "position": 5, "date": "2023-05-28T13:03:00+00:00"},
		{"session_key": 9222, "driver_number": 14, "position": 2, "date": "2023-05-28T13:58:00+00:00"},
		{"session_key": 9222, "driver_number": 31, "position": 3, "date": "2023-05-28T13:09:30+00:00"},
	}
}

func (m *MockClient) GetOvertakes(ctx context.Context, sessionID string) []Record {
	if sessionID != mockSessionKey {
		return nil
	}
	return []Record{
		{"session_key": 9222, "overtaking_driver_number": 14, "overtaken_driver_number": 44,
			"position": 2, "date": "2023-05-28T13:57:40+00:00"},
		{"session_key": 9222, "overtaking_driver_number": 31, "overtaken_driver_number": 55,
			"position": 3, "date": "2023-05-28T13:09:12+00:00"},
	}
}

func (m *MockClient) GetStartingGrid(ctx context.Context, sessionID string) []Record {
	if sessionID != mockSessionKey {
		return nil
	}
	return []Record{
		{"session_key": 9222, "position": 1, "driver_number": 1, "lap_duration": 71.365},
		{"session_key": 9222, "position": 2, "driver_number": 14, "lap_duration": 71.449},
		{"session_key": 9222, "position": 3, "driver_number": 16, "lap_duration": 71.471},
		{"session_key": 9222, "position": 4, "driver_number": 31, "lap_duration": 71.553},
		{"session_key": 9222, "position": 5, "driver_number": 44, "lap_duration": 71.725},
	}
}

func (m *MockClient) GetSessionResult(ctx context.Context, sessionID string) []Record {
	if sessionID != mockSessionKey {
		return nil
	}
	return []Record{
		{"session_key": 9222, "position": 1, "driver_number": 1, "number_of_laps": 54, "gap_to_leader": 0, "dnf": false},
		{"session_key": 9222, "position": 2, "driver_number": 14, "number_of_laps": 54, "gap_to_leader": 27.921, "dnf": false},
		{"session_key": 9222, "position": 3, "driver_number": 31, "number_of_laps": 54, "gap_to_leader": 36.99, "dnf": false},
		{"session_key": 9222, "position": 4, "driver_number": 44, "number_of_laps": 54, "gap_to_leader": 39.062, "dnf": false},
		{"session_key": 9222, "position": 16, "driver_number": 16, "number_of_laps": 41, "gap_to_leader": nil, "dnf": true},
	}
}

func mockSessions() []Record {
	return []Record{
		{"session_key": 9222, "meeting_key": 1211, "year": 2023, "session_name": "Race", "session_type": "Race",
			"country_name": "Monaco", "location": "Monte Carlo", "circuit_short_name": "Monte Carlo",
			"meeting_name": "Monaco Grand Prix", "date_start": "2023-05-28T13:00:00+00:00"},
		{"session_key": 9221, "meeting_key": 1211, "year": 2023, "session_name": "Qualifying", "session_type": "Qualifying",
			"country_name": "Monaco", "location": "Monte Carlo", "circuit_short_name": "Monte Carlo",
			"meeting_name": "Monaco Grand Prix", "date_start": "2023-05-27T14:00:00+00:00"},
		{"session_key": 9102, "meeting_key": 1210, "year": 2023, "session_name": "Race", "session_type": "Race",
			"country_name": "Spain", "location": "Barcelona", "circuit_short_name": "Catalunya",
			"meeting_name": "Spanish Grand Prix", "date_start": "2023-06-04T13:00:00+00:00"},
	}
}

// mockLapTable drives lap, pace and position extraction. Laps 21-23
// bracket the lap-22 stops so pit impact has data to chew on.
var mockLapTable = []struct {
	driver   int
	lap      int
	duration float64
	position int
}{
	{1, 1, 78.5, 1}, {1, 2, 77.9, 1}, {1, 3, 77.8, 1}, {1, 4, 77.7, 1},
	{1, 21, 90.2, 1}, {1, 22, 95.0, 1}, {1, 23, 85.0, 1},
	{1, 33, 76.5, 1}, {1, 52, 75.1, 1},
	{14, 1, 79.0, 3}, {14, 2, 78.4, 3}, {14, 3, 78.2, 3}, {14, 4, 78.1, 3},
	{14, 21, 91.0, 3}, {14, 22, 96.0, 3}, {14, 23, 90.5, 3},
	{14, 33, 77.2, 2}, {14, 52, 76.0, 2},
	{31, 1, 79.5, 5}, {31, 2, 78.9, 5}, {31, 3, 78.8, 5}, {31, 4, 78.6, 3},
	{31, 33, 77.9, 3}, {31, 52, 76.8, 3},
}
