// Package storage models a physical energy storage device: a battery or
// pumped-hydro plant with fixed energy-to-power ratio, charge/discharge
// efficiencies and self-discharge, charged and discharged in discrete
// steps by a Strategist. Grounded on agents.storage.Device in the
// original model.
package storage

import (
	"math"

	"github.com/gridflex/flexcore/core/clock"
)

// Specification carries the physical parameters of a Device, decoded from
// configuration the same way the original model reads its parameter Tree.
type Specification struct {
	EnergyToPowerRatio       float64 `json:"energy_to_power_ratio"`
	SelfDischargeRatePerHour float64 `json:"self_discharge_rate_per_hour"`
	ChargingEfficiency       float64 `json:"charging_efficiency"`
	DischargingEfficiency    float64 `json:"discharging_efficiency"`
	InitialEnergyLevelInMWH  float64 `json:"initial_energy_level_mwh"`
	InstalledPowerInMW       float64 `json:"installed_power_mw"`
}

// dischargingDeviationWindow bounds the ring buffer tracking self-discharge
// losses per clearing step, replacing the original's unbounded TreeMap
// keyed by TimeStamp (spec.md §9 REDESIGN FLAG f).
const dischargingDeviationWindow = 168 // one week of hourly steps

type deviationSample struct {
	step  clock.TimeStamp
	value float64
	set   bool
}

// Device is a physical storage device with internal energy tracked in
// MWh. All internal computation is in "internal" energy, which already
// accounts for one-way conversion losses; external callers only see
// power/energy at the grid connection point.
type Device struct {
	energyToPowerRatio       float64
	selfDischargeRatePerHour float64
	chargingEfficiency       float64
	dischargingEfficiency    float64

	internalPowerInMW          float64
	energyStorageCapacityInMWH float64

	currentEnergyInStorageInMWH   float64
	accountedInternalEnergyFlows  float64
	accountedFullStorageCycles    float64

	deviations    [dischargingDeviationWindow]deviationSample
	haveDeviation bool
}

// NewDevice builds a Device from spec, clamping the initial energy level
// into [0, capacity] exactly as the original constructor does.
func NewDevice(spec Specification) *Device {
	d := &Device{
		energyToPowerRatio:       spec.EnergyToPowerRatio,
		selfDischargeRatePerHour: spec.SelfDischargeRatePerHour,
		chargingEfficiency:       spec.ChargingEfficiency,
		dischargingEfficiency:    spec.DischargingEfficiency,
	}
	d.setInternalPowerInMW(spec.InstalledPowerInMW)
	d.currentEnergyInStorageInMWH = clampFloat(spec.InitialEnergyLevelInMWH, 0, d.energyStorageCapacityInMWH)
	return d
}

func (d *Device) setInternalPowerInMW(internalPowerInMW float64) {
	d.internalPowerInMW = internalPowerInMW
	d.energyStorageCapacityInMWH = internalPowerInMW * d.energyToPowerRatio * d.chargingEfficiency
	if d.currentEnergyInStorageInMWH > d.energyStorageCapacityInMWH {
		d.currentEnergyInStorageInMWH = d.energyStorageCapacityInMWH
	}
}

// EnergyStorageCapacityInMWH returns the internal energy capacity implied
// by the installed power and the energy-to-power ratio.
func (d *Device) EnergyStorageCapacityInMWH() float64 { return d.energyStorageCapacityInMWH }

// InstalledPowerInMW returns the device's internal power rating.
func (d *Device) InstalledPowerInMW() float64 { return d.internalPowerInMW }

// ExternalChargingPowerInMW returns the maximum external charging power:
// the installed power rating, converted through its own internal
// charging bound so it never exceeds the nameplate rating regardless of
// charging efficiency.
func (d *Device) ExternalChargingPowerInMW() float64 {
	return d.internalToExternalEnergy(d.internalChargingPowerLimit())
}

// ExternalDischargingPowerInMW returns the maximum external discharging
// power (a negative number, mirroring ExternalChargingPowerInMW's sign
// convention), converted through its own internal discharging bound.
func (d *Device) ExternalDischargingPowerInMW() float64 {
	return d.internalToExternalEnergy(d.internalDischargingPowerLimit())
}

// internalChargingPowerLimit is the internal power bound a charging
// request is clipped to: the installed power rating scaled down by the
// charging efficiency, since less reaches storage than flows in from the
// grid. Grounded on spec.md §4.1 step 2's asymmetric, efficiency-scaled
// power bounds.
func (d *Device) internalChargingPowerLimit() float64 {
	return d.internalPowerInMW * d.chargingEfficiency
}

// internalDischargingPowerLimit is the internal power bound a
// discharging request is clipped to: the installed power rating scaled
// up by the inverse discharging efficiency, since more must leave
// storage than reaches the grid.
func (d *Device) internalDischargingPowerLimit() float64 {
	if d.dischargingEfficiency == 0 {
		return 0
	}
	return -d.internalPowerInMW / d.dischargingEfficiency
}

// CurrentEnergyInStorageInMWH returns the current internal energy content.
func (d *Device) CurrentEnergyInStorageInMWH() float64 { return d.currentEnergyInStorageInMWH }

// AccountedInternalEnergyFlowsInMWH returns the running total of internal
// energy flows since the last ResetEnergyAccounting.
func (d *Device) AccountedInternalEnergyFlowsInMWH() float64 { return d.accountedInternalEnergyFlows }

// AccountedFullStorageCycles returns the running total of full storage
// cycle equivalents since the last ResetEnergyAccounting.
func (d *Device) AccountedFullStorageCycles() float64 { return d.accountedFullStorageCycles }

// ResetEnergyAccounting zeroes the running energy-flow and cycle counters,
// typically called once per settlement period.
func (d *Device) ResetEnergyAccounting() {
	d.accountedInternalEnergyFlows = 0
	d.accountedFullStorageCycles = 0
}

// externalToInternalEnergy converts a grid-side power/energy value to its
// internal equivalent, applying charging efficiency when charging
// (positive) and dividing by discharging efficiency when discharging
// (negative), since more must leave storage than reaches the grid.
func (d *Device) externalToInternalEnergy(external float64) float64 {
	if external >= 0 {
		return external * d.chargingEfficiency
	}
	return external / d.dischargingEfficiency
}

// InternalToExternalForSchedule converts an internal power/energy value
// to its external, grid-side equivalent. Exported for strategists that
// plan directly in internal energy terms, such as FileDispatcher reading
// a relative-power schedule.
func (d *Device) InternalToExternalForSchedule(internal float64) float64 {
	return d.internalToExternalEnergy(internal)
}

// internalToExternalEnergy is the inverse of externalToInternalEnergy.
func (d *Device) internalToExternalEnergy(internal float64) float64 {
	if internal >= 0 {
		if d.chargingEfficiency == 0 {
			return 0
		}
		return internal / d.chargingEfficiency
	}
	return internal * d.dischargingEfficiency
}

func (d *Device) considerPowerLimits(internal float64) float64 {
	if internal > 0 {
		return minFloat(internal, d.internalChargingPowerLimit())
	}
	return maxFloat(internal, d.internalDischargingPowerLimit())
}

func (d *Device) calcInternalSelfDischargeInMWH(currentEnergy float64) float64 {
	return currentEnergy * d.selfDischargeRatePerHour
}

func (d *Device) considerEnergyRestrictions(next float64) float64 {
	return clampFloat(next, 0, d.energyStorageCapacityInMWH)
}

func (d *Device) calcFullStorageCycles(internalEnergyDelta float64) float64 {
	if d.energyStorageCapacityInMWH == 0 {
		return 0
	}
	return internalEnergyDelta / (2.0 * d.energyStorageCapacityInMWH)
}

// ChargeInMW (dis-)charges the device by externalChargingPower for one
// operation period ending at timeStamp. Positive values charge, negative
// values deplete. The return value is the actual external power realized
// once power and energy-capacity restrictions are applied; it can differ
// in magnitude from externalChargingPower when the device is nearly full,
// nearly empty, or the request exceeds its power rating.
func (d *Device) ChargeInMW(externalChargingPower float64, timeStamp clock.TimeStamp) float64 {
	internalChargingPower := d.externalToInternalEnergy(externalChargingPower)
	internalChargingPower = d.considerPowerLimits(internalChargingPower)
	internalSelfDischarge := d.calcInternalSelfDischargeInMWH(d.currentEnergyInStorageInMWH)

	nextEnergy := d.currentEnergyInStorageInMWH + internalChargingPower - internalSelfDischarge
	d.trackInternalLosses(internalSelfDischarge, timeStamp)
	nextEnergy = d.considerEnergyRestrictions(nextEnergy)

	internalEnergyDelta := nextEnergy - d.currentEnergyInStorageInMWH
	d.currentEnergyInStorageInMWH = nextEnergy

	d.accountedInternalEnergyFlows += math.Abs(internalEnergyDelta)
	d.accountedFullStorageCycles += d.calcFullStorageCycles(math.Abs(internalEnergyDelta))

	return d.internalToExternalEnergy(internalEnergyDelta + internalSelfDischarge)
}

// trackInternalLosses records the self-discharge loss for timeStamp. The
// very first sample recorded is always zero regardless of the true
// self-discharge, matching the original model's behavior of seeding the
// deviation map with a placeholder before any real observation exists.
func (d *Device) trackInternalLosses(internalSelfDischarge float64, timeStamp clock.TimeStamp) {
	value := internalSelfDischarge
	if !d.haveDeviation {
		value = 0
		d.haveDeviation = true
	}
	slot := int(uint64(timeStamp)) % dischargingDeviationWindow
	d.deviations[slot] = deviationSample{step: timeStamp, value: value, set: true}
}

// DischargingDeviationFor returns the tracked self-discharge loss at
// timeStamp, or the theoretical self-discharge for the current energy
// content if no observation has been recorded yet.
func (d *Device) DischargingDeviationFor(timeStamp clock.TimeStamp) float64 {
	if !d.haveDeviation {
		return d.currentEnergyInStorageInMWH * d.selfDischargeRatePerHour
	}
	slot := int(uint64(timeStamp)) % dischargingDeviationWindow
	sample := d.deviations[slot]
	if sample.set && sample.step == timeStamp {
		return sample.value
	}
	return 0
}

// ClearDischargingDeviationBefore drops any tracked samples older than
// timeStamp, bounding the ring buffer's effective lookback window.
func (d *Device) ClearDischargingDeviationBefore(timeStamp clock.TimeStamp) {
	for i, sample := range d.deviations {
		if sample.set && sample.step < timeStamp {
			d.deviations[i] = deviationSample{}
		}
	}
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
