package mpegps

import (
	"github.com/bugVanisher/damps/common/errs"
	"github.com/bugVanisher/damps/internal/bitio"
)

var psmStartCode = []byte{0x00, 0x00, 0x01, 0xBC}

// ElementaryStreamMapEntry is one entry of a program-stream map's
// elementary_stream_map list.
type ElementaryStreamMapEntry struct {
	StreamType           uint8
	ElementaryStreamId   uint8
	ElementaryStreamInfo []Descriptor
}

// ProgramStreamMap is the MPEG-2 Program Stream program_stream_map record,
// read/written with a trailing classic-MPEG-2 CRC-32.
type ProgramStreamMap struct {
	CurrentNextIndicator uint8
	Version              uint8 // 5 bits
	ProgramStreamInfo    []Descriptor
	ElementaryStreamMap  []ElementaryStreamMapEntry
}

func writeDescriptorList(descriptors []Descriptor) []byte {
	inner := bitio.NewWriter()
	for _, d := range descriptors {
		WriteDescriptor(inner, d)
	}
	inner.Flush()
	return inner.Bytes()
}

func readDescriptorList(buf []byte) ([]Descriptor, error) {
	r := bitio.NewReader(buf)
	var descriptors []Descriptor
	for r.Remaining() > 0 {
		d, err := ReadDescriptor(r)
		if err != nil {
			return nil, err
		}
		descriptors = append(descriptors, d)
	}
	return descriptors, nil
}

// WriteProgramStreamMap serializes m, appending to w, with the trailing
// CRC-32 computed over exactly the bytes from the PSM's own start code
// through its last descriptor byte.
func WriteProgramStreamMap(w *bitio.Writer, m ProgramStreamMap) {
	psm := bitio.NewWriter()
	psm.WriteBytes(psmStartCode)

	body := bitio.NewWriter()
	body.WriteBits(uint64(m.CurrentNextIndicator&0x01), 1)
	body.WriteBits(0x03, 2) // reserved
	body.WriteBits(uint64(m.Version&0x1f), 5)
	body.WriteBits(0x7f, 7) // reserved
	body.WriteBits(1, 1)    // marker_bit
	body.Flush()

	programStreamInfoBytes := writeDescriptorList(m.ProgramStreamInfo)
	body.WriteBits(uint64(len(programStreamInfoBytes)), 16)
	body.WriteBytes(programStreamInfoBytes)

	esMap := bitio.NewWriter()
	for _, entry := range m.ElementaryStreamMap {
		esMap.WriteBits(uint64(entry.StreamType), 8)
		esMap.WriteBits(uint64(entry.ElementaryStreamId), 8)
		infoBytes := writeDescriptorList(entry.ElementaryStreamInfo)
		esMap.WriteBits(uint64(len(infoBytes)), 16)
		esMap.WriteBytes(infoBytes)
	}
	esMap.Flush()
	esMapBytes := esMap.Bytes()
	body.WriteBits(uint64(len(esMapBytes)), 16)
	body.WriteBytes(esMapBytes)
	body.Flush()
	bodyBytes := body.Bytes()

	psm.WriteBits(uint64(len(bodyBytes)+4), 16)
	psm.WriteBytes(bodyBytes)

	crc := crc32MPEG2(psm.Bytes())
	psm.WriteBits(uint64(crc), 32)

	w.WriteBytes(psm.Bytes())
}

// ReadProgramStreamMap parses a program_stream_map record at r's current
// position. The trailing CRC-32 is skipped without being verified against
// the payload; the `check` command does not verify it either.
func ReadProgramStreamMap(r *bitio.Reader) (ProgramStreamMap, error) {
	prefix, err := r.ReadBytes(4)
	if err != nil {
		return ProgramStreamMap{}, err
	}
	if string(prefix) != string(psmStartCode) {
		return ProgramStreamMap{}, errs.New(errs.KindInvalidStartCode, "mpegps: expected program_stream_map start code")
	}

	mapLength, err := r.ReadBits(16)
	if err != nil {
		return ProgramStreamMap{}, err
	}
	bodyBytes, err := r.ReadBytes(int(mapLength))
	if err != nil {
		return ProgramStreamMap{}, err
	}
	if len(bodyBytes) < 4 {
		return ProgramStreamMap{}, errs.New(errs.KindInvalidField, "mpegps: program_stream_map_length too small for CRC")
	}
	body := bitio.NewReader(bodyBytes[:len(bodyBytes)-4])

	var m ProgramStreamMap
	indicator, err := body.ReadBits(1)
	if err != nil {
		return ProgramStreamMap{}, err
	}
	m.CurrentNextIndicator = uint8(indicator)
	if err := body.SkipBits(2); err != nil { // reserved
		return ProgramStreamMap{}, err
	}
	version, err := body.ReadBits(5)
	if err != nil {
		return ProgramStreamMap{}, err
	}
	m.Version = uint8(version)
	if err := body.SkipBits(8); err != nil { // reserved + marker_bit
		return ProgramStreamMap{}, err
	}

	infoLength, err := body.ReadBits(16)
	if err != nil {
		return ProgramStreamMap{}, err
	}
	infoBytes, err := body.ReadBytes(int(infoLength))
	if err != nil {
		return ProgramStreamMap{}, err
	}
	m.ProgramStreamInfo, err = readDescriptorList(infoBytes)
	if err != nil {
		return ProgramStreamMap{}, err
	}

	esMapLength, err := body.ReadBits(16)
	if err != nil {
		return ProgramStreamMap{}, err
	}
	esMapBytes, err := body.ReadBytes(int(esMapLength))
	if err != nil {
		return ProgramStreamMap{}, err
	}
	esMapReader := bitio.NewReader(esMapBytes)
	for esMapReader.Remaining() > 0 {
		streamType, err := esMapReader.ReadBits(8)
		if err != nil {
			return ProgramStreamMap{}, err
		}
		if streamType == 0x00 {
			break
		}
		elementaryStreamId, err := esMapReader.ReadBits(8)
		if err != nil {
			return ProgramStreamMap{}, err
		}
		entryInfoLength, err := esMapReader.ReadBits(16)
		if err != nil {
			return ProgramStreamMap{}, err
		}
		entryInfoBytes, err := esMapReader.ReadBytes(int(entryInfoLength))
		if err != nil {
			return ProgramStreamMap{}, err
		}
		entryDescriptors, err := readDescriptorList(entryInfoBytes)
		if err != nil {
			return ProgramStreamMap{}, err
		}
		m.ElementaryStreamMap = append(m.ElementaryStreamMap, ElementaryStreamMapEntry{
			StreamType:           uint8(streamType),
			ElementaryStreamId:   uint8(elementaryStreamId),
			ElementaryStreamInfo: entryDescriptors,
		})
	}

	return m, nil
}
