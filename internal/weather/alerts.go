package weather

import "fmt"

// Thresholds for extreme weather alerts.
const (
	HotThresholdC   = 35.0
	ColdThresholdC  = -10.0
	WindThresholdMS = 15.0
)

// Alert describes extreme weather worth notifying the user about.
type Alert struct {
	City    string `json:"city"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// ExtremeAlert reports whether s describes extreme weather: thunderstorms,
// snow, very hot or very cold temperatures, or strong wind.
func ExtremeAlert(s Snapshot) (Alert, bool) {
	extreme := (s.ConditionID > 0 && s.ConditionID < 300) ||
		(s.ConditionID >= 600 && s.ConditionID < 700) ||
		s.Temperature > HotThresholdC ||
		s.Temperature < ColdThresholdC ||
		s.WindSpeed > WindThresholdMS
	if !extreme {
		return Alert{}, false
	}

	return Alert{
		City:    s.Name,
		Title:   "Extreme Weather Alert",
		Message: fmt.Sprintf("%s in %s. Stay safe!", CapitalizeWords(s.Description), s.Name),
	}, true
}
