// Package segment implements the AUD/SPS segmenter state machine and the
// per-sequence PES packetizer. It sits between annexb (NAL-unit parsing)
// and damcontainer
// (final file assembly): Segment groups a flat NAL-unit list into sequences
// of access units, and Generate turns those sequences into a payload byte
// stream plus the GOP-index entries damcontainer rebases and splices in.
package segment

import "math/big"

// systemClockFrequency is the 27 MHz system clock PTS/SCR arithmetic is
// defined against; dividing by 300 yields the 90 kHz PTS/DTS tick.
const systemClockFrequency = 27000000

// Common frame rates the generate CLI subcommand accepts. Declared as exact
// rationals so presentation-time arithmetic never touches floating point.
var (
	FrameRate24000_1001 = big.NewRat(24000, 1001)
	FrameRate24         = big.NewRat(24, 1)
	FrameRate30000_1001 = big.NewRat(30000, 1001)
	FrameRate30         = big.NewRat(30, 1)
	FrameRate60000_1001 = big.NewRat(60000, 1001)
	FrameRate60         = big.NewRat(60, 1)
)

// Clock tracks picture_count and converts it to SCR/PTS values using exact
// rational arithmetic throughout; only the final conversion to a 90 kHz (or
// 27 MHz, pre-division) tick truncates, per the "Numeric semantics" rule
// that binary floating point is insufficient for long streams.
type Clock struct {
	frameRate    *big.Rat
	pictureCount int64
}

// NewClock returns a Clock starting at picture_count=0 for the given frame
// rate (num/den, e.g. 30000/1001).
func NewClock(frameRate *big.Rat) *Clock {
	return &Clock{frameRate: frameRate}
}

// AddPicture increments picture_count by one. Called for every NAL unit of
// type 1 (non-IDR slice) or 5 (IDR) as it is concatenated into an access
// unit's buffer, so the increment lands before any PTS computed for a
// *later* access unit, but never affects the PTS already captured for the
// access unit currently being built.
func (c *Clock) AddPicture() {
	c.pictureCount++
}

// floorFreqT returns ⌊systemClockFrequency · presentation_time⌋ as an exact
// integer, the shared numerator both Base and Ext are derived from.
func (c *Clock) floorFreqT() *big.Int {
	// t = pictureCount/frameRate = pictureCount*frameRate.Denom/frameRate.Num
	num := new(big.Int).Mul(big.NewInt(c.pictureCount), c.frameRate.Denom())
	num.Mul(num, big.NewInt(systemClockFrequency))
	return new(big.Int).Div(num, c.frameRate.Num())
}

// Base returns SCR_base / PTS: ⌊systemClockFrequency · t / 300⌋, the 90 kHz
// tick count.
func (c *Clock) Base() uint64 {
	return new(big.Int).Div(c.floorFreqT(), big.NewInt(300)).Uint64()
}

// Ext returns SCR_ext: ⌊systemClockFrequency · t⌋ mod 300.
func (c *Clock) Ext() uint16 {
	return uint16(new(big.Int).Mod(c.floorFreqT(), big.NewInt(300)).Uint64())
}
