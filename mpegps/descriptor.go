package mpegps

import (
	"github.com/bugVanisher/damps/common/errs"
	"github.com/bugVanisher/damps/internal/bitio"
)

const (
	DescriptorTagAvc  = 0x28
	DescriptorTagAac  = 0x2B
	DescriptorTagHevc = 0x38
)

// Descriptor is the closed sum type for program-stream and elementary-stream
// descriptors, dispatched by descriptor_tag. Exactly one of the
// pointer fields is non-nil; an unrecognized tag always produces Generic.
type Descriptor struct {
	Generic *GenericDescriptor
	Avc     *AvcVideoDescriptor
	Aac     *AacAudioDescriptor
	Hevc    *HevcVideoDescriptor
}

type GenericDescriptor struct {
	Tag  uint8
	Data []byte
}

type AvcVideoDescriptor struct {
	ProfileIdc                    uint8
	ConstraintSet0Flag            uint8
	ConstraintSet1Flag            uint8
	ConstraintSet2Flag            uint8
	ConstraintSet3Flag            uint8
	ConstraintSet4Flag            uint8
	ConstraintSet5Flag            uint8
	AvcCompatibleFlags            uint8 // 2 bits
	LevelIdc                      uint8
	AvcStillPresent               uint8
	Avc24HourPictureFlag          uint8
	FramePackingSeiNotPresentFlag uint8
}

type AacAudioDescriptor struct {
	Profile               uint8
	ChannelConfiguration  uint8
	AdditionalInformation uint8
}

type HevcVideoDescriptor struct {
	ProfileSpace                   uint8  // 2 bits
	TierFlag                       uint8  // 1 bit
	ProfileIdc                     uint8  // 5 bits
	ProfileCompatibilityIndication uint32 // 32 bits
	ProgressiveSourceFlag          uint8
	InterlacedSourceFlag           uint8
	NonPackedConstraintFlag        uint8
	FrameOnlyConstraintFlag        uint8
	Copied44Bits                   uint64 // 44 bits
	LevelIdc                       uint8
	TemporalLayerSubsetFlag        uint8
	HevcStillPresentFlag           uint8
	Hevc24HourPicturePresentFlag   uint8
	SubPicHrdParamsNotPresentFlag  uint8
	HdrWcgIdc                      uint8  // 2 bits
	TemporalIdMin                  uint8  // 3 bits, only when TemporalLayerSubsetFlag=1
	TemporalIdMax                  uint8  // 3 bits, only when TemporalLayerSubsetFlag=1
}

// WriteDescriptor dispatches d to its tagged write function.
func WriteDescriptor(w *bitio.Writer, d Descriptor) {
	switch {
	case d.Avc != nil:
		writeAvcVideoDescriptor(w, *d.Avc)
	case d.Aac != nil:
		writeAacAudioDescriptor(w, *d.Aac)
	case d.Hevc != nil:
		writeHevcVideoDescriptor(w, *d.Hevc)
	case d.Generic != nil:
		writeGenericDescriptor(w, *d.Generic)
	}
}

func writeGenericDescriptor(w *bitio.Writer, d GenericDescriptor) {
	w.WriteBits(uint64(d.Tag), 8)
	w.WriteBits(uint64(len(d.Data)), 8)
	w.WriteBytes(d.Data)
}

func writeAvcVideoDescriptor(w *bitio.Writer, d AvcVideoDescriptor) {
	w.WriteBits(DescriptorTagAvc, 8)
	w.WriteBits(4, 8) // descriptor_length
	w.WriteBits(uint64(d.ProfileIdc), 8)
	w.WriteBits(uint64(d.ConstraintSet0Flag&0x01), 1)
	w.WriteBits(uint64(d.ConstraintSet1Flag&0x01), 1)
	w.WriteBits(uint64(d.ConstraintSet2Flag&0x01), 1)
	w.WriteBits(uint64(d.ConstraintSet3Flag&0x01), 1)
	w.WriteBits(uint64(d.ConstraintSet4Flag&0x01), 1)
	w.WriteBits(uint64(d.ConstraintSet5Flag&0x01), 1)
	w.WriteBits(uint64(d.AvcCompatibleFlags&0x03), 2)
	w.WriteBits(uint64(d.LevelIdc), 8)
	w.WriteBits(uint64(d.AvcStillPresent&0x01), 1)
	w.WriteBits(uint64(d.Avc24HourPictureFlag&0x01), 1)
	w.WriteBits(uint64(d.FramePackingSeiNotPresentFlag&0x01), 1)
	w.WriteBits(0x1f, 5) // reserved
}

func writeAacAudioDescriptor(w *bitio.Writer, d AacAudioDescriptor) {
	w.WriteBits(DescriptorTagAac, 8)
	w.WriteBits(3, 8) // descriptor_length
	w.WriteBits(uint64(d.Profile), 8)
	w.WriteBits(uint64(d.ChannelConfiguration), 8)
	w.WriteBits(uint64(d.AdditionalInformation), 8)
}

func writeHevcVideoDescriptor(w *bitio.Writer, d HevcVideoDescriptor) {
	w.WriteBits(DescriptorTagHevc, 8)
	if d.TemporalLayerSubsetFlag&0x01 == 0x01 {
		w.WriteBits(15, 8)
	} else {
		w.WriteBits(13, 8)
	}
	w.WriteBits(uint64(d.ProfileSpace&0x03), 2)
	w.WriteBits(uint64(d.TierFlag&0x01), 1)
	w.WriteBits(uint64(d.ProfileIdc&0x1f), 5)
	w.WriteBits(uint64(d.ProfileCompatibilityIndication), 32)
	w.WriteBits(uint64(d.ProgressiveSourceFlag&0x01), 1)
	w.WriteBits(uint64(d.InterlacedSourceFlag&0x01), 1)
	w.WriteBits(uint64(d.NonPackedConstraintFlag&0x01), 1)
	w.WriteBits(uint64(d.FrameOnlyConstraintFlag&0x01), 1)
	w.WriteBits(d.Copied44Bits, 44)
	w.WriteBits(uint64(d.LevelIdc), 8)
	w.WriteBits(uint64(d.TemporalLayerSubsetFlag&0x01), 1)
	w.WriteBits(uint64(d.HevcStillPresentFlag&0x01), 1)
	w.WriteBits(uint64(d.Hevc24HourPicturePresentFlag&0x01), 1)
	w.WriteBits(uint64(d.SubPicHrdParamsNotPresentFlag&0x01), 1)
	w.WriteBits(0x03, 2) // reserved
	w.WriteBits(uint64(d.HdrWcgIdc&0x03), 2)
	if d.TemporalLayerSubsetFlag&0x01 == 0x01 {
		w.WriteBits(uint64(d.TemporalIdMin&0x07), 3)
		w.WriteBits(0x1f, 5) // reserved
		w.WriteBits(uint64(d.TemporalIdMax&0x07), 3)
		w.WriteBits(0x1f, 5) // reserved
	}
}

// ReadDescriptor peeks the descriptor_tag at r's current position and
// dispatches to the matching tagged reader. Returns a KindUnexpectedEof
// error when r is exhausted.
func ReadDescriptor(r *bitio.Reader) (Descriptor, error) {
	tag, err := r.PeekByte()
	if err != nil {
		return Descriptor{}, err
	}
	switch tag {
	case DescriptorTagAvc:
		d, err := readAvcVideoDescriptor(r)
		if err != nil {
			return Descriptor{}, err
		}
		return Descriptor{Avc: &d}, nil
	case DescriptorTagAac:
		d, err := readAacAudioDescriptor(r)
		if err != nil {
			return Descriptor{}, err
		}
		return Descriptor{Aac: &d}, nil
	case DescriptorTagHevc:
		d, err := readHevcVideoDescriptor(r)
		if err != nil {
			return Descriptor{}, err
		}
		return Descriptor{Hevc: &d}, nil
	default:
		d, err := readGenericDescriptor(r)
		if err != nil {
			return Descriptor{}, err
		}
		return Descriptor{Generic: &d}, nil
	}
}

func readGenericDescriptor(r *bitio.Reader) (GenericDescriptor, error) {
	tag, err := r.ReadBits(8)
	if err != nil {
		return GenericDescriptor{}, err
	}
	length, err := r.ReadBits(8)
	if err != nil {
		return GenericDescriptor{}, err
	}
	data, err := r.ReadBytes(int(length))
	if err != nil {
		return GenericDescriptor{}, err
	}
	return GenericDescriptor{Tag: uint8(tag), Data: data}, nil
}

func readAvcVideoDescriptor(r *bitio.Reader) (AvcVideoDescriptor, error) {
	tag, err := r.ReadBits(8)
	if err != nil {
		return AvcVideoDescriptor{}, err
	}
	if tag != DescriptorTagAvc {
		return AvcVideoDescriptor{}, errs.New(errs.KindInvalidField, "mpegps: expected AVC descriptor_tag")
	}
	if _, err := r.ReadBits(8); err != nil { // descriptor_length
		return AvcVideoDescriptor{}, err
	}
	var d AvcVideoDescriptor
	profileIdc, err := r.ReadBits(8)
	if err != nil {
		return AvcVideoDescriptor{}, err
	}
	d.ProfileIdc = uint8(profileIdc)
	bits := [6]*uint8{&d.ConstraintSet0Flag, &d.ConstraintSet1Flag, &d.ConstraintSet2Flag,
		&d.ConstraintSet3Flag, &d.ConstraintSet4Flag, &d.ConstraintSet5Flag}
	for _, target := range bits {
		v, err := r.ReadBits(1)
		if err != nil {
			return AvcVideoDescriptor{}, err
		}
		*target = uint8(v)
	}
	compat, err := r.ReadBits(2)
	if err != nil {
		return AvcVideoDescriptor{}, err
	}
	d.AvcCompatibleFlags = uint8(compat)
	level, err := r.ReadBits(8)
	if err != nil {
		return AvcVideoDescriptor{}, err
	}
	d.LevelIdc = uint8(level)
	still, err := r.ReadBits(1)
	if err != nil {
		return AvcVideoDescriptor{}, err
	}
	d.AvcStillPresent = uint8(still)
	hour, err := r.ReadBits(1)
	if err != nil {
		return AvcVideoDescriptor{}, err
	}
	d.Avc24HourPictureFlag = uint8(hour)
	framePacking, err := r.ReadBits(1)
	if err != nil {
		return AvcVideoDescriptor{}, err
	}
	d.FramePackingSeiNotPresentFlag = uint8(framePacking)
	if err := r.SkipBits(5); err != nil { // reserved
		return AvcVideoDescriptor{}, err
	}
	return d, nil
}

func readAacAudioDescriptor(r *bitio.Reader) (AacAudioDescriptor, error) {
	tag, err := r.ReadBits(8)
	if err != nil {
		return AacAudioDescriptor{}, err
	}
	if tag != DescriptorTagAac {
		return AacAudioDescriptor{}, errs.New(errs.KindInvalidField, "mpegps: expected AAC descriptor_tag")
	}
	if _, err := r.ReadBits(8); err != nil { // descriptor_length
		return AacAudioDescriptor{}, err
	}
	profile, err := r.ReadBits(8)
	if err != nil {
		return AacAudioDescriptor{}, err
	}
	channel, err := r.ReadBits(8)
	if err != nil {
		return AacAudioDescriptor{}, err
	}
	additional, err := r.ReadBits(8)
	if err != nil {
		return AacAudioDescriptor{}, err
	}
	return AacAudioDescriptor{
		Profile:               uint8(profile),
		ChannelConfiguration:  uint8(channel),
		AdditionalInformation: uint8(additional),
	}, nil
}

func readHevcVideoDescriptor(r *bitio.Reader) (HevcVideoDescriptor, error) {
	tag, err := r.ReadBits(8)
	if err != nil {
		return HevcVideoDescriptor{}, err
	}
	if tag != DescriptorTagHevc {
		return HevcVideoDescriptor{}, errs.New(errs.KindInvalidField, "mpegps: expected HEVC descriptor_tag")
	}
	if _, err := r.ReadBits(8); err != nil { // descriptor_length
		return HevcVideoDescriptor{}, err
	}
	var d HevcVideoDescriptor
	profileSpace, err := r.ReadBits(2)
	if err != nil {
		return HevcVideoDescriptor{}, err
	}
	d.ProfileSpace = uint8(profileSpace)
	tierFlag, err := r.ReadBits(1)
	if err != nil {
		return HevcVideoDescriptor{}, err
	}
	d.TierFlag = uint8(tierFlag)
	profileIdc, err := r.ReadBits(5)
	if err != nil {
		return HevcVideoDescriptor{}, err
	}
	d.ProfileIdc = uint8(profileIdc)
	compat, err := r.ReadBits(32)
	if err != nil {
		return HevcVideoDescriptor{}, err
	}
	d.ProfileCompatibilityIndication = uint32(compat)
	progressive, err := r.ReadBits(1)
	if err != nil {
		return HevcVideoDescriptor{}, err
	}
	d.ProgressiveSourceFlag = uint8(progressive)
	interlaced, err := r.ReadBits(1)
	if err != nil {
		return HevcVideoDescriptor{}, err
	}
	d.InterlacedSourceFlag = uint8(interlaced)
	nonPacked, err := r.ReadBits(1)
	if err != nil {
		return HevcVideoDescriptor{}, err
	}
	d.NonPackedConstraintFlag = uint8(nonPacked)
	frameOnly, err := r.ReadBits(1)
	if err != nil {
		return HevcVideoDescriptor{}, err
	}
	d.FrameOnlyConstraintFlag = uint8(frameOnly)
	copied, err := r.ReadBits(44)
	if err != nil {
		return HevcVideoDescriptor{}, err
	}
	d.Copied44Bits = copied
	level, err := r.ReadBits(8)
	if err != nil {
		return HevcVideoDescriptor{}, err
	}
	d.LevelIdc = uint8(level)
	temporalSubset, err := r.ReadBits(1)
	if err != nil {
		return HevcVideoDescriptor{}, err
	}
	d.TemporalLayerSubsetFlag = uint8(temporalSubset)
	stillPresent, err := r.ReadBits(1)
	if err != nil {
		return HevcVideoDescriptor{}, err
	}
	d.HevcStillPresentFlag = uint8(stillPresent)
	hour, err := r.ReadBits(1)
	if err != nil {
		return HevcVideoDescriptor{}, err
	}
	d.Hevc24HourPicturePresentFlag = uint8(hour)
	subPicHrd, err := r.ReadBits(1)
	if err != nil {
		return HevcVideoDescriptor{}, err
	}
	d.SubPicHrdParamsNotPresentFlag = uint8(subPicHrd)
	if err := r.SkipBits(2); err != nil { // reserved
		return HevcVideoDescriptor{}, err
	}
	hdrWcg, err := r.ReadBits(2)
	if err != nil {
		return HevcVideoDescriptor{}, err
	}
	d.HdrWcgIdc = uint8(hdrWcg)
	if d.TemporalLayerSubsetFlag&0x01 == 0x01 {
		idMin, err := r.ReadBits(3)
		if err != nil {
			return HevcVideoDescriptor{}, err
		}
		d.TemporalIdMin = uint8(idMin)
		if err := r.SkipBits(5); err != nil { // reserved
			return HevcVideoDescriptor{}, err
		}
		idMax, err := r.ReadBits(3)
		if err != nil {
			return HevcVideoDescriptor{}, err
		}
		d.TemporalIdMax = uint8(idMax)
		if err := r.SkipBits(5); err != nil { // reserved
			return HevcVideoDescriptor{}, err
		}
	}
	return d, nil
}
