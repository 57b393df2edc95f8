package strategist

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/gridflex/flexcore/core/clock"
	"github.com/gridflex/flexcore/core/schedule"
	"github.com/gridflex/flexcore/core/storage"
)

// ErrNoValidTransition is returned when a state cannot reach any final
// state within the configured transition bound, which only happens if a
// strategist is misconfigured (zero transition states, zero energy
// states).
var ErrNoValidTransition = errors.New("strategist: no valid storage transition found")

// PriceFunc values the income of a hypothetical external energy delta at
// a given period, optionally varying by the discretized power-step index
// (0 at maximum discharging power, 2*numberOfTransitionStates at maximum
// charging power) so price-impact-aware flavors can plug in a stepwise
// merit-order sensitivity instead of a single scalar price.
type PriceFunc func(period clock.TimePeriod, stepIndex int, externalEnergyDeltaInMW float64) float64

// Optimizer runs backward-induction dynamic programming over a
// discretized storage energy state space, generalizing
// DynamicProgrammingStrategist/ProfitMaximiserPriceTaker in the original
// model into a single reusable engine: any Strategist flavor supplies a
// PriceFunc and a maximize/minimize choice instead of overriding methods
// on a shared base class.
type Optimizer struct {
	device                   *storage.Device
	numberOfEnergyStates     int
	numberOfTransitionStates int
	forecastSteps            int
	maximize                 bool

	valueTable    *mat.Dense
	bestNextState [][]int
	powerSteps    []float64
	energyPerState float64
}

// NewOptimizer builds an Optimizer for device, discretizing its energy
// capacity into numberOfEnergyStates states (0 = empty, last = full), and
// planning forecastSteps periods with at most numberOfTransitionStates
// power steps reachable per period in each direction.
func NewOptimizer(device *storage.Device, numberOfEnergyStates, numberOfTransitionStates, forecastSteps int, maximize bool) *Optimizer {
	o := &Optimizer{
		device:                   device,
		numberOfEnergyStates:     numberOfEnergyStates,
		numberOfTransitionStates: numberOfTransitionStates,
		forecastSteps:            forecastSteps,
		maximize:                 maximize,
	}
	o.valueTable = mat.NewDense(forecastSteps, numberOfEnergyStates, nil)
	o.bestNextState = make([][]int, forecastSteps)
	for i := range o.bestNextState {
		o.bestNextState[i] = make([]int, numberOfEnergyStates)
	}
	if numberOfEnergyStates > 1 {
		o.energyPerState = device.EnergyStorageCapacityInMWH() / float64(numberOfEnergyStates-1)
	}
	o.powerSteps = calcPowerSteps(device, numberOfTransitionStates)
	return o
}

// calcPowerSteps distributes the device's max charging and discharging
// power into 2*numberOfTransitionStates+1 equal increments, matching
// ProfitMaximiserPriceTaker.calcPowerSteps / agents.storage.StepPower.
func calcPowerSteps(device *storage.Device, numberOfTransitionStates int) []float64 {
	steps := make([]float64, 2*numberOfTransitionStates+1)
	if numberOfTransitionStates == 0 {
		return steps
	}
	maxCharge := device.ExternalChargingPowerInMW()
	maxDischarge := device.ExternalDischargingPowerInMW()
	for i := -numberOfTransitionStates; i <= numberOfTransitionStates; i++ {
		idx := i + numberOfTransitionStates
		switch {
		case i > 0:
			steps[idx] = maxCharge * float64(i) / float64(numberOfTransitionStates)
		case i < 0:
			steps[idx] = maxDischarge * float64(-i) / float64(numberOfTransitionStates)
		default:
			steps[idx] = 0
		}
	}
	return steps
}

// Optimize fills the value table and best-next-state table by backward
// induction starting at firstPeriod, using priceOf to value each
// candidate transition's external energy delta.
func (o *Optimizer) Optimize(firstPeriod clock.TimePeriod, priceOf PriceFunc) error {
	for k := 0; k < o.forecastSteps; k++ {
		period := o.forecastSteps - k - 1
		nextPeriod := period + 1
		timePeriod := firstPeriod.ShiftByDuration(period)

		for initialState := 0; initialState < o.numberOfEnergyStates; initialState++ {
			best := math.Inf(-1)
			if !o.maximize {
				best = math.Inf(1)
			}
			bestFinal := -1

			lower, upper := o.finalStateBounds(initialState)
			for finalState := lower; finalState <= upper; finalState++ {
				stateDelta := finalState - initialState
				arrayIndex := o.numberOfTransitionStates + stateDelta
				externalDelta := o.powerSteps[arrayIndex]
				income := priceOf(timePeriod, arrayIndex, externalDelta) + o.bestIncome(nextPeriod, finalState)

				if o.better(income, best) {
					best = income
					bestFinal = finalState
				}
			}
			if bestFinal < 0 {
				return ErrNoValidTransition
			}
			o.valueTable.Set(period, initialState, best)
			o.bestNextState[period][initialState] = bestFinal
		}
	}
	return nil
}

func (o *Optimizer) better(candidate, current float64) bool {
	if o.maximize {
		return candidate > current
	}
	return candidate < current
}

func (o *Optimizer) bestIncome(period, state int) float64 {
	if period < o.forecastSteps {
		return o.valueTable.At(period, state)
	}
	return 0
}

func (o *Optimizer) finalStateBounds(initialState int) (lower, upper int) {
	lower = initialState - o.numberOfTransitionStates
	if lower < 0 {
		lower = 0
	}
	upper = initialState + o.numberOfTransitionStates
	if upper > o.numberOfEnergyStates-1 {
		upper = o.numberOfEnergyStates - 1
	}
	return lower, upper
}

// currentState returns the discretized state index closest to the
// device's current internal energy content.
func (o *Optimizer) currentState() int {
	if o.energyPerState == 0 {
		return 0
	}
	state := int(math.Round(o.device.CurrentEnergyInStorageInMWH() / o.energyPerState))
	if state < 0 {
		state = 0
	}
	if state > o.numberOfEnergyStates-1 {
		state = o.numberOfEnergyStates - 1
	}
	return state
}

// BuildSchedule walks the best-next-state table forward from the
// device's current energy content, producing a BidSchedule whose bid
// price for each period is supplied by bidPriceOf.
func (o *Optimizer) BuildSchedule(firstPeriod clock.TimePeriod, bidPriceOf func(externalEnergyDeltaInMW float64) float64) *schedule.BidSchedule {
	result := schedule.New(firstPeriod, o.forecastSteps)
	state := o.currentState()
	energy := float64(state) * o.energyPerState

	for element := 0; element < o.forecastSteps; element++ {
		result.ExpectedInitialEnergyInMWH[element] = energy
		finalState := o.bestNextState[element][state]
		stateDelta := finalState - state
		arrayIndex := o.numberOfTransitionStates + stateDelta
		externalDelta := o.powerSteps[arrayIndex]

		result.ChargingPerPeriod[element] = externalDelta
		result.BidPriceInEURperMWH[element] = bidPriceOf(externalDelta)

		state = finalState
		energy = float64(state) * o.energyPerState
	}
	return result
}
