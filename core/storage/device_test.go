package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gridflex/flexcore/core/clock"
)

func testSpec() Specification {
	return Specification{
		EnergyToPowerRatio:       4,
		SelfDischargeRatePerHour: 0.001,
		ChargingEfficiency:       0.95,
		DischargingEfficiency:    0.95,
		InitialEnergyLevelInMWH:  10,
		InstalledPowerInMW:       5,
	}
}

func TestNewDevice_ClampsInitialEnergy(t *testing.T) {
	spec := testSpec()
	spec.InitialEnergyLevelInMWH = 999
	d := NewDevice(spec)
	assert.Equal(t, d.EnergyStorageCapacityInMWH(), d.CurrentEnergyInStorageInMWH())
}

func TestNewDevice_CapacityAccountsForChargingEfficiency(t *testing.T) {
	spec := testSpec()
	d := NewDevice(spec)
	expected := spec.InstalledPowerInMW * spec.EnergyToPowerRatio * spec.ChargingEfficiency
	assert.InDelta(t, expected, d.EnergyStorageCapacityInMWH(), 1e-9)
}

func TestDevice_ExternalPowerBoundsMatchNameplateDespiteEfficiencyLosses(t *testing.T) {
	spec := testSpec()
	d := NewDevice(spec)

	assert.InDelta(t, spec.InstalledPowerInMW, d.ExternalChargingPowerInMW(), 1e-9,
		"efficiency losses are absorbed internally, not re-exposed as a higher external bound")
	assert.InDelta(t, -spec.InstalledPowerInMW, d.ExternalDischargingPowerInMW(), 1e-9,
		"efficiency losses are absorbed internally, not re-exposed as a lower external bound")
}

func TestDevice_ExternalPowerBoundsMatchNameplateWithAsymmetricEfficiencies(t *testing.T) {
	spec := testSpec()
	spec.ChargingEfficiency = 0.9
	spec.DischargingEfficiency = 0.8
	d := NewDevice(spec)

	assert.InDelta(t, spec.InstalledPowerInMW, d.ExternalChargingPowerInMW(), 1e-9)
	assert.InDelta(t, -spec.InstalledPowerInMW, d.ExternalDischargingPowerInMW(), 1e-9)
}

func TestDevice_ChargeInMW_RespectsPowerLimit(t *testing.T) {
	d := NewDevice(testSpec())
	realized := d.ChargeInMW(1000, clock.TimeStamp(0))
	assert.LessOrEqual(t, realized, d.ExternalChargingPowerInMW()+1e-9)
}

func TestDevice_ChargeInMW_DischargingIsNegative(t *testing.T) {
	d := NewDevice(testSpec())
	before := d.CurrentEnergyInStorageInMWH()
	realized := d.ChargeInMW(-2, clock.TimeStamp(0))
	assert.Less(t, realized, 0.0)
	assert.Less(t, d.CurrentEnergyInStorageInMWH(), before)
}

func TestDevice_FirstDischargingDeviationSampleIsZero(t *testing.T) {
	d := NewDevice(testSpec())
	d.ChargeInMW(-1, clock.TimeStamp(10))
	assert.Equal(t, 0.0, d.DischargingDeviationFor(clock.TimeStamp(10)))
}

func TestDevice_SubsequentDischargingDeviationSamplesAreTracked(t *testing.T) {
	d := NewDevice(testSpec())
	d.ChargeInMW(-1, clock.TimeStamp(10))
	d.ChargeInMW(-1, clock.TimeStamp(11))
	assert.Greater(t, d.DischargingDeviationFor(clock.TimeStamp(11)), 0.0)
}

func TestDevice_DischargingDeviationBeforeFirstSampleUsesTheoreticalValue(t *testing.T) {
	d := NewDevice(testSpec())
	expected := d.CurrentEnergyInStorageInMWH() * testSpec().SelfDischargeRatePerHour
	assert.Equal(t, expected, d.DischargingDeviationFor(clock.TimeStamp(0)))
}

func TestDevice_ResetEnergyAccounting(t *testing.T) {
	d := NewDevice(testSpec())
	d.ChargeInMW(1, clock.TimeStamp(0))
	assert.NotEqual(t, 0.0, d.AccountedInternalEnergyFlowsInMWH())
	d.ResetEnergyAccounting()
	assert.Equal(t, 0.0, d.AccountedInternalEnergyFlowsInMWH())
	assert.Equal(t, 0.0, d.AccountedFullStorageCycles())
}

func TestDevice_ClearDischargingDeviationBefore(t *testing.T) {
	d := NewDevice(testSpec())
	d.ChargeInMW(-1, clock.TimeStamp(10))
	d.ClearDischargingDeviationBefore(clock.TimeStamp(20))
	assert.False(t, d.deviations[10%dischargingDeviationWindow].set)
}
