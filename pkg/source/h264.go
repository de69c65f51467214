package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/time/rate"
)

// NAL unit types (H.264, lower 5 bits of the first byte after the start code).
const (
	NALTypeSliceNonIDR uint8 = 1
	NALTypeSliceIDR    uint8 = 5
	NALTypeSEI         uint8 = 6
	NALTypeSPS         uint8 = 7
	NALTypePPS         uint8 = 8
	NALTypeAUD         uint8 = 9
)

var (
	startCode = []byte{0x00, 0x00, 0x00, 0x01}

	// ErrNoAccessUnits means the input held no recognizable NAL units.
	ErrNoAccessUnits = errors.New("no access units in stream")
)

// FileSource replays an H.264 Annex-B elementary stream from disk, one
// access unit per frame, paced at FPS.
type FileSource struct {
	Path string
	FPS  int
	Loop bool
}

// Run splits the file into access units and feeds them to the sink.
func (f *FileSource) Run(ctx context.Context, sink Sink) error {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return fmt.Errorf("read stream: %w", err)
	}
	units := AccessUnits(data)
	if len(units) == 0 {
		return ErrNoAccessUnits
	}

	limiter := rate.NewLimiter(rate.Limit(f.FPS), 1)
	for {
		for _, au := range units {
			if err := limiter.Wait(ctx); err != nil {
				return ctx.Err()
			}
			sink(au)
		}
		if !f.Loop {
			return nil
		}
	}
}

// AccessUnits splits an Annex-B byte stream into access units. A new unit
// begins at an access unit delimiter, at an SPS, or at a slice NAL when the
// current unit already contains a slice. Leading bytes before the first
// start code are dropped.
func AccessUnits(data []byte) [][]byte {
	nals := splitNALs(data)
	if len(nals) == 0 {
		return nil
	}

	var units [][]byte
	var current []byte
	haveSlice := false

	flush := func() {
		if len(current) > 0 {
			units = append(units, current)
			current = nil
			haveSlice = false
		}
	}

	for _, nal := range nals {
		t := nalType(nal)
		switch {
		case t == NALTypeAUD || t == NALTypeSPS:
			flush()
		case (t == NALTypeSliceIDR || t == NALTypeSliceNonIDR) && haveSlice:
			flush()
		}
		current = append(current, startCode...)
		current = append(current, nal...)
		if t == NALTypeSliceIDR || t == NALTypeSliceNonIDR {
			haveSlice = true
		}
	}
	flush()
	return units
}

// splitNALs returns the NAL unit bodies between start codes (3- or 4-byte
// form), without the start codes themselves.
func splitNALs(data []byte) [][]byte {
	var nals [][]byte
	// Normalize on the 3-byte code; a preceding zero belongs to the 4-byte form.
	sc := []byte{0x00, 0x00, 0x01}
	i := bytes.Index(data, sc)
	if i < 0 {
		return nil
	}
	data = data[i+len(sc):]
	for {
		j := bytes.Index(data, sc)
		if j < 0 {
			if nal := trimTrailingZero(data); len(nal) > 0 {
				nals = append(nals, nal)
			}
			return nals
		}
		if nal := trimTrailingZero(data[:j]); len(nal) > 0 {
			nals = append(nals, nal)
		}
		data = data[j+len(sc):]
	}
}

// trimTrailingZero removes the zero that belongs to a following 4-byte
// start code.
func trimTrailingZero(nal []byte) []byte {
	if len(nal) > 0 && nal[len(nal)-1] == 0x00 {
		return nal[:len(nal)-1]
	}
	return nal
}

func nalType(nal []byte) uint8 {
	if len(nal) == 0 {
		return 0
	}
	return nal[0] & 0x1F
}
