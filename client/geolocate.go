// File: waymate/client/geolocate.go
package client

import (
	"context"
	"time"

	"waymate/config"
	"waymate/utils"

	"go.uber.org/zap"
)

// Locator reports the device's current position.
type Locator interface {
	CurrentPosition(ctx context.Context) (lat, lng float64, err error)
}

// LocatorFunc adapts a function to the Locator interface.
type LocatorFunc func(ctx context.Context) (float64, float64, error)

func (f LocatorFunc) CurrentPosition(ctx context.Context) (float64, float64, error) {
	return f(ctx)
}

// locateTimeout bounds how long an SOS activation waits for a GPS fix. An
// emergency must go out even when the device cannot be located.
const locateTimeout = 4 * time.Second

// locate resolves the device position, falling back to the configured
// default coordinate when the locator is missing, slow or failing.
func locate(ctx context.Context, loc Locator) (float64, float64) {
	fallbackLat := config.AppConfig.DefaultLatitude
	fallbackLng := config.AppConfig.DefaultLongitude

	if loc == nil {
		return fallbackLat, fallbackLng
	}

	ctx, cancel := context.WithTimeout(ctx, locateTimeout)
	defer cancel()

	lat, lng, err := loc.CurrentPosition(ctx)
	if err != nil {
		utils.GetLogger().Warn("geolocation failed, using fallback position", zap.Error(err))
		return fallbackLat, fallbackLng
	}
	return lat, lng
}
