// Package bus defines the wire messages exchanged between a market
// clearing process and the traders it serves, and their explicit binary
// codecs. Grounded on the original model's Portable-serialized contract
// messages (Bid, AwardData, ClearingTimes, AmountAtTime, PointInTime)
// exchanged between agents; per spec.md §9 REDESIGN FLAG d these use
// explicit encode/decode pairs and integer-tagged enum variants instead
// of a generic reflective Portable serializer.
package bus

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/gridflex/flexcore/core/clock"
	"github.com/gridflex/flexcore/core/market"
)

// wire format tags, one per message type, written as the first byte of
// every encoded message so a receiver can dispatch on type without an
// external schema registry.
const (
	tagBidsAtTime uint8 = iota + 1
	tagAwardData
	tagClearingTimes
	tagAmountAtTime
	tagPointInTime
)

// PointInTime pairs a scalar value with the TimeStamp it applies to.
type PointInTime struct {
	Time  clock.TimeStamp
	Value float64
}

// AmountAtTime pairs an energy amount with the TimeStamp it applies to,
// used for schedules and forecasts exchanged between agents.
type AmountAtTime struct {
	Time      clock.TimeStamp
	AmountMWH float64
}

// BidsAtTime bundles every Bid a trader submits for one operation period.
type BidsAtTime struct {
	Time clock.TimeStamp
	Bids []market.Bid
}

// AwardData is what a cleared market reports back to one trader: its net
// awarded power and the uniform price it cleared at.
type AwardData struct {
	Time                   clock.TimeStamp
	AwardedSupplyPowerInMW float64
	AwardedDemandPowerInMW float64
	PowerPriceInEURperMWH  float64
}

// ClearingTimes lists the TimeStamps a market clearing covers, used to
// request forecasts or awards over a horizon rather than one period.
type ClearingTimes struct {
	Times []clock.TimeStamp
}

// MarshalBinary encodes p using the explicit wire format: tag, then
// fixed-width fields, big-endian.
func (p PointInTime) MarshalBinary() ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.WriteByte(byte(tagPointInTime))
	writeInt64(buf, int64(p.Time))
	writeFloat64(buf, p.Value)
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes a PointInTime encoded by MarshalBinary.
func (p *PointInTime) UnmarshalBinary(data []byte) error {
	r := bytes.NewReader(data)
	if err := expectTag(r, tagPointInTime); err != nil {
		return err
	}
	t, err := readInt64(r)
	if err != nil {
		return err
	}
	v, err := readFloat64(r)
	if err != nil {
		return err
	}
	p.Time, p.Value = clock.TimeStamp(t), v
	return nil
}

// MarshalBinary encodes a using the explicit wire format.
func (a AmountAtTime) MarshalBinary() ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.WriteByte(byte(tagAmountAtTime))
	writeInt64(buf, int64(a.Time))
	writeFloat64(buf, a.AmountMWH)
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes an AmountAtTime encoded by MarshalBinary.
func (a *AmountAtTime) UnmarshalBinary(data []byte) error {
	r := bytes.NewReader(data)
	if err := expectTag(r, tagAmountAtTime); err != nil {
		return err
	}
	t, err := readInt64(r)
	if err != nil {
		return err
	}
	v, err := readFloat64(r)
	if err != nil {
		return err
	}
	a.Time, a.AmountMWH = clock.TimeStamp(t), v
	return nil
}

// MarshalBinary encodes b's tag, time, and each Bid as
// (side, energy, price, marginalCost, traderID-length, traderID).
func (b BidsAtTime) MarshalBinary() ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.WriteByte(byte(tagBidsAtTime))
	writeInt64(buf, int64(b.Time))
	writeInt64(buf, int64(len(b.Bids)))
	for _, bid := range b.Bids {
		writeBid(buf, bid)
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes a BidsAtTime encoded by MarshalBinary.
func (b *BidsAtTime) UnmarshalBinary(data []byte) error {
	r := bytes.NewReader(data)
	if err := expectTag(r, tagBidsAtTime); err != nil {
		return err
	}
	t, err := readInt64(r)
	if err != nil {
		return err
	}
	count, err := readInt64(r)
	if err != nil {
		return err
	}
	bids := make([]market.Bid, count)
	for i := range bids {
		bid, err := readBid(r)
		if err != nil {
			return err
		}
		bids[i] = bid
	}
	b.Time, b.Bids = clock.TimeStamp(t), bids
	return nil
}

func writeBid(buf *bytes.Buffer, bid market.Bid) {
	buf.WriteByte(byte(bid.Side))
	writeFloat64(buf, bid.EnergyInMWH)
	writeFloat64(buf, bid.PriceInEURperMWH)
	writeFloat64(buf, bid.MarginalCostInEURperMWH)
	writeString(buf, bid.TraderID)
}

func readBid(r *bytes.Reader) (market.Bid, error) {
	var bid market.Bid
	side, err := r.ReadByte()
	if err != nil {
		return bid, err
	}
	bid.Side = market.Side(side)
	if bid.EnergyInMWH, err = readFloat64(r); err != nil {
		return bid, err
	}
	if bid.PriceInEURperMWH, err = readFloat64(r); err != nil {
		return bid, err
	}
	if bid.MarginalCostInEURperMWH, err = readFloat64(r); err != nil {
		return bid, err
	}
	if bid.TraderID, err = readString(r); err != nil {
		return bid, err
	}
	return bid, nil
}

// MarshalBinary encodes a's tag and fixed-width fields.
func (a AwardData) MarshalBinary() ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.WriteByte(byte(tagAwardData))
	writeInt64(buf, int64(a.Time))
	writeFloat64(buf, a.AwardedSupplyPowerInMW)
	writeFloat64(buf, a.AwardedDemandPowerInMW)
	writeFloat64(buf, a.PowerPriceInEURperMWH)
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes an AwardData encoded by MarshalBinary.
func (a *AwardData) UnmarshalBinary(data []byte) error {
	r := bytes.NewReader(data)
	if err := expectTag(r, tagAwardData); err != nil {
		return err
	}
	t, err := readInt64(r)
	if err != nil {
		return err
	}
	supply, err := readFloat64(r)
	if err != nil {
		return err
	}
	demand, err := readFloat64(r)
	if err != nil {
		return err
	}
	price, err := readFloat64(r)
	if err != nil {
		return err
	}
	a.Time, a.AwardedSupplyPowerInMW, a.AwardedDemandPowerInMW, a.PowerPriceInEURperMWH = clock.TimeStamp(t), supply, demand, price
	return nil
}

// MarshalBinary encodes c's tag and the list of TimeStamps it covers.
func (c ClearingTimes) MarshalBinary() ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.WriteByte(byte(tagClearingTimes))
	writeInt64(buf, int64(len(c.Times)))
	for _, t := range c.Times {
		writeInt64(buf, int64(t))
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes a ClearingTimes encoded by MarshalBinary.
func (c *ClearingTimes) UnmarshalBinary(data []byte) error {
	r := bytes.NewReader(data)
	if err := expectTag(r, tagClearingTimes); err != nil {
		return err
	}
	count, err := readInt64(r)
	if err != nil {
		return err
	}
	times := make([]clock.TimeStamp, count)
	for i := range times {
		v, err := readInt64(r)
		if err != nil {
			return err
		}
		times[i] = clock.TimeStamp(v)
	}
	c.Times = times
	return nil
}

func expectTag(r *bytes.Reader, want uint8) error {
	got, err := r.ReadByte()
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("bus: unexpected message tag %d, want %d", got, want)
	}
	return nil
}

func writeInt64(buf *bytes.Buffer, v int64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	buf.Write(b[:])
}

func readInt64(r *bytes.Reader) (int64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(b[:])), nil
}

func writeFloat64(buf *bytes.Buffer, v float64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], math.Float64bits(v))
	buf.Write(b[:])
}

func readFloat64(r *bytes.Reader) (float64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b[:])), nil
}

func writeString(buf *bytes.Buffer, s string) {
	writeInt64(buf, int64(len(s)))
	buf.WriteString(s)
}

func readString(r *bytes.Reader) (string, error) {
	n, err := readInt64(r)
	if err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}
