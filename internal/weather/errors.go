package weather

import "errors"

var (
	ErrMissingCredential  = errors.New("weather api key is not configured")
	ErrInvalidCredential  = errors.New("weather api key was rejected")
	ErrLocationNotFound   = errors.New("location not found")
	ErrServiceUnavailable = errors.New("weather service unavailable")
	ErrStorageUnavailable = errors.New("local storage unavailable")
	ErrPermissionDenied   = errors.New("permission denied")
)

// Kind names the error category of err, or "unknown".
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrMissingCredential):
		return "MissingCredential"
	case errors.Is(err, ErrInvalidCredential):
		return "InvalidCredential"
	case errors.Is(err, ErrLocationNotFound):
		return "LocationNotFound"
	case errors.Is(err, ErrServiceUnavailable):
		return "ServiceUnavailable"
	case errors.Is(err, ErrStorageUnavailable):
		return "StorageUnavailable"
	case errors.Is(err, ErrPermissionDenied):
		return "PermissionDenied"
	default:
		return "unknown"
	}
}

// UserMessage returns the text shown to the user for err.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrMissingCredential):
		return "API key is required. Please set your OpenWeatherMap API key."
	case errors.Is(err, ErrInvalidCredential):
		return "Invalid API key. Please check your OpenWeatherMap API key."
	case errors.Is(err, ErrLocationNotFound):
		return "City not found. Please check the city name and try again."
	case errors.Is(err, ErrServiceUnavailable):
		return "Weather service is unavailable. Please try again."
	case errors.Is(err, ErrStorageUnavailable):
		return "Could not save your settings on this device."
	case errors.Is(err, ErrPermissionDenied):
		return "Permission denied."
	default:
		return "Failed to fetch weather data"
	}
}
