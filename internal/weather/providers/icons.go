package providers

// iconExceptional is used for any icon WeatherFlow adds that we do not know yet.
const iconExceptional = "exceptional"

// weatherFlowIcons maps WeatherFlow forecast icons to home-automation condition names.
// The "cc-" variants are used for current conditions.
var weatherFlowIcons = map[string]string{
	"clear-day":                      "sunny",
	"cc-clear-day":                   "sunny",
	"clear-night":                    "clear-night",
	"cc-clear-night":                 "clear-night",
	"cloudy":                         "cloudy",
	"cc-cloudy":                      "cloudy",
	"foggy":                          "fog",
	"cc-foggy":                       "fog",
	"partly-cloudy-day":              "partlycloudy",
	"cc-partly-cloudy-day":           "partlycloudy",
	"partly-cloudy-night":            "partlycloudy",
	"cc-partly-cloudy-night":         "partlycloudy",
	"possibly-rainy-day":             "rainy",
	"cc-possibly-rainy-day":          "rainy",
	"possibly-rainy-night":           "rainy",
	"cc-possibly-rainy-night":        "rainy",
	"possibly-sleet-day":             "snowy-rainy",
	"cc-possibly-sleet-day":          "snowy-rainy",
	"possibly-sleet-night":           "snowy-rainy",
	"cc-possibly-sleet-night":        "snowy-rainy",
	"possibly-snow-day":              "snowy",
	"cc-possibly-snow-day":           "snowy",
	"possibly-snow-night":            "snowy",
	"cc-possibly-snow-night":         "snowy",
	"possibly-thunderstorm-day":      "lightning-rainy",
	"cc-possibly-thunderstorm-day":   "lightning-rainy",
	"possibly-thunderstorm-night":    "lightning-rainy",
	"cc-possibly-thunderstorm-night": "lightning-rainy",
	"rainy":                          "rainy",
	"cc-rainy":                       "rainy",
	"sleet":                          "snowy-rainy",
	"cc-sleet":                       "snowy-rainy",
	"snow":                           "snowy",
	"cc-snow":                        "snowy",
	"thunderstorm":                   "lightning",
	"cc-thunderstorm":                "lightning",
	"windy":                          "windy",
	"cc-windy":                       "windy",
}

func mapIcon(icon string) string {
	if v, ok := weatherFlowIcons[icon]; ok {
		return v
	}
	return iconExceptional
}
