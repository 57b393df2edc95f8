package strategist

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/gridflex/flexcore/core/clock"
	"github.com/gridflex/flexcore/core/market"
	"github.com/gridflex/flexcore/core/schedule"
	"github.com/gridflex/flexcore/core/storage"
	"github.com/gridflex/flexcore/core/timeseries"
)

// ErrFileDispatcherNoForecast is returned by UpdateForesight, since a
// FileDispatcher's plan comes entirely from its schedule file and cannot
// digest a merit-order forecast. Mirrors ERR_CANNOT_USE_FORECAST.
var ErrFileDispatcherNoForecast = errors.New("strategist: file dispatcher cannot digest merit-order foresight, remove its contracts")

// FileDispatcher replays a pre-computed relative charging schedule from a
// TimeSeries instead of optimizing one, bidding at the scarcity or
// minimal price to guarantee the planned power is awarded. Grounded on
// agents.storage.arbitrageStrategists.FileDispatcher.
type FileDispatcher struct {
	device                  *storage.Device
	series                  timeseries.TimeSeries
	scheduleDurationPeriods int
	dispatchToleranceInMWH  float64
	limits                  market.PriceLimits
	log                     zerolog.Logger
}

// NewFileDispatcher builds a FileDispatcher for device, reading relative
// charging power (-1..1 of installed power) from series.
func NewFileDispatcher(cfg Config, device *storage.Device, series timeseries.TimeSeries, dispatchToleranceInMWH float64, log zerolog.Logger) *FileDispatcher {
	return &FileDispatcher{
		device:                  device,
		series:                  series,
		scheduleDurationPeriods: cfg.ScheduleDurationPeriods,
		dispatchToleranceInMWH:  dispatchToleranceInMWH,
		limits:                  cfg.PriceLimits,
		log:                     log,
	}
}

// UpdateForesight always fails: a file-driven plan has no use for a
// merit-order forecast.
func (f *FileDispatcher) UpdateForesight(_ clock.TimePeriod, _, _ *market.SortedBook) error {
	return ErrFileDispatcherNoForecast
}

func (f *FileDispatcher) calcInternalChargingPowerAt(planningTime clock.TimeStamp) float64 {
	relative := f.series.ValueLinear(planningTime)
	return f.device.InstalledPowerInMW() * relative
}

// CreateSchedule replays the configured schedule file for
// scheduleDurationPeriods periods starting at timeSegment, clipping each
// requested power so the device's tracked energy stays within its
// physical bounds, and logging a warning whenever the unclipped request
// would leave those bounds by more than the configured tolerance.
func (f *FileDispatcher) CreateSchedule(timeSegment clock.TimePeriod) (*schedule.BidSchedule, error) {
	result := schedule.New(timeSegment, f.scheduleDurationPeriods)
	currentEnergy := f.device.CurrentEnergyInStorageInMWH()
	capacity := f.device.EnergyStorageCapacityInMWH()

	for element := 0; element < f.scheduleDurationPeriods; element++ {
		planningTime := timeSegment.ShiftByDuration(element).Start
		requestedEnergy := currentEnergy + f.calcInternalChargingPowerAt(planningTime)
		f.warnIfOutsideTolerance(requestedEnergy, planningTime)
		nextEnergy := clampEnergy(requestedEnergy, capacity)
		externalChargePower := f.device.InternalToExternalForSchedule(nextEnergy - currentEnergy)

		result.ChargingPerPeriod[element] = externalChargePower
		result.ExpectedInitialEnergyInMWH[element] = currentEnergy
		currentEnergy = nextEnergy

		result.BidPriceInEURperMWH[element] = f.calcBidPrice(externalChargePower)
	}
	return result, nil
}

func (f *FileDispatcher) warnIfOutsideTolerance(currentEnergy float64, at clock.TimeStamp) {
	if currentEnergy < -f.dispatchToleranceInMWH {
		f.log.Warn().Stringer("time", at).Float64("energyInMWH", currentEnergy).
			Msg("dispatch file not suitable: storage below lower tolerance")
	}
	capacity := f.device.EnergyStorageCapacityInMWH()
	if currentEnergy > capacity+f.dispatchToleranceInMWH {
		f.log.Warn().Stringer("time", at).Float64("energyInMWH", currentEnergy).
			Msg("dispatch file not suitable: storage above upper tolerance")
	}
}

func (f *FileDispatcher) calcBidPrice(externalChargePower float64) float64 {
	switch {
	case externalChargePower > 0:
		return f.limits.ScarcityPrice
	case externalChargePower < 0:
		return f.limits.MinimalPrice
	default:
		return 0
	}
}

// ChargingPowerForecastInMW reports the file's planned external charging
// power at targetTime, independent of any schedule already built.
func (f *FileDispatcher) ChargingPowerForecastInMW(targetTime clock.TimeStamp) float64 {
	internal := f.calcInternalChargingPowerAt(targetTime)
	return f.device.InternalToExternalForSchedule(internal)
}

func clampEnergy(energy, capacity float64) float64 {
	if energy < 0 {
		return 0
	}
	if energy > capacity {
		return capacity
	}
	return energy
}
