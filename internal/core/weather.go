package core

// Condition is the display taxonomy for WMO weather codes.
type Condition string

const (
	ConditionClear        Condition = "clear"
	ConditionMainlyClear  Condition = "mainly_clear"
	ConditionPartlyCloudy Condition = "partly_cloudy"
	ConditionOvercast     Condition = "overcast"
	ConditionFog          Condition = "fog"
	ConditionDrizzle      Condition = "drizzle"
	ConditionRain         Condition = "rain"
	ConditionFreezingRain Condition = "freezing_rain"
	ConditionSnow         Condition = "snow"
	ConditionRainShowers  Condition = "rain_showers"
	ConditionSnowShowers  Condition = "snow_showers"
	ConditionThunderstorm Condition = "thunderstorm"
	ConditionUnknown      Condition = "unknown"
)

var conditionLabels = map[Condition]string{
	ConditionClear:        "Clear sky",
	ConditionMainlyClear:  "Mainly clear",
	ConditionPartlyCloudy: "Partly cloudy",
	ConditionOvercast:     "Overcast",
	ConditionFog:          "Fog",
	ConditionDrizzle:      "Drizzle",
	ConditionRain:         "Rain",
	ConditionFreezingRain: "Freezing rain",
	ConditionSnow:         "Snow",
	ConditionRainShowers:  "Rain showers",
	ConditionSnowShowers:  "Snow showers",
	ConditionThunderstorm: "Thunderstorm",
	ConditionUnknown:      "Unknown",
}

// ConditionFor maps a WMO weather code to its condition.
func ConditionFor(code int) Condition {
	switch {
	case code == 0:
		return ConditionClear
	case code == 1:
		return ConditionMainlyClear
	case code == 2:
		return ConditionPartlyCloudy
	case code == 3:
		return ConditionOvercast
	case code == 45 || code == 48:
		return ConditionFog
	case code >= 51 && code <= 57:
		return ConditionDrizzle
	case code == 66 || code == 67:
		return ConditionFreezingRain
	case code >= 61 && code <= 65:
		return ConditionRain
	case code >= 71 && code <= 77:
		return ConditionSnow
	case code >= 80 && code <= 82:
		return ConditionRainShowers
	case code == 85 || code == 86:
		return ConditionSnowShowers
	case code >= 95 && code <= 99:
		return ConditionThunderstorm
	default:
		return ConditionUnknown
	}
}

// Label returns the human-readable name of the condition.
func (c Condition) Label() string {
	if l, ok := conditionLabels[c]; ok {
		return l
	}
	return conditionLabels[ConditionUnknown]
}
