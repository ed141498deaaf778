package scheduler

import (
	"strings"

	"github.com/arnavshah/crew-scheduler-api/pkg/models"
)

// ShiftCode is a fine-grained shift: a block plus full or half duration
type ShiftCode string

const (
	OpenFull   ShiftCode = "O_F"
	OpenHalf   ShiftCode = "O_H"
	MiddleFull ShiftCode = "M_F"
	MiddleHalf ShiftCode = "M_H"
	CloseFull  ShiftCode = "C_F"
	CloseHalf  ShiftCode = "C_H"
	CodeOff    ShiftCode = "OFF"
)

// Workload units for full and half shifts
const (
	FullUnit = 1.0
	HalfUnit = 0.5
)

// shiftHours is the fixed duration table. Full shifts include the unpaid break.
var shiftHours = map[ShiftCode]float64{
	OpenFull:   8, // 08:00-17:00
	OpenHalf:   4, // 08:00-12:00
	MiddleFull: 8, // 11:00-20:00
	MiddleHalf: 4, // 11:00-15:00
	CloseFull:  8, // 12:30-21:30
	CloseHalf:  4, // 17:30-21:30
	CodeOff:    0,
}

var blockPrefix = map[models.Shift]string{
	models.ShiftOpen:   "O",
	models.ShiftMiddle: "M",
	models.ShiftClose:  "C",
}

// CodeFor builds the code for a block and duration
func CodeFor(shift models.Shift, half bool) ShiftCode {
	prefix, ok := blockPrefix[shift]
	if !ok {
		return CodeOff
	}
	if half {
		return ShiftCode(prefix + "_H")
	}
	return ShiftCode(prefix + "_F")
}

// Block returns the block a code belongs to; false for OFF or unknown codes
func (c ShiftCode) Block() (models.Shift, bool) {
	switch {
	case strings.HasPrefix(string(c), "O_"):
		return models.ShiftOpen, true
	case strings.HasPrefix(string(c), "M_"):
		return models.ShiftMiddle, true
	case strings.HasPrefix(string(c), "C_"):
		return models.ShiftClose, true
	}
	return "", false
}

// IsHalf reports whether the code is a half shift
func (c ShiftCode) IsHalf() bool {
	return strings.HasSuffix(string(c), "_H")
}

// Unit is the workload weight of the code
func (c ShiftCode) Unit() float64 {
	if c == CodeOff {
		return 0
	}
	if c.IsHalf() {
		return HalfUnit
	}
	return FullUnit
}

// Hours returns the fixed duration of the code
func (c ShiftCode) Hours() float64 {
	return shiftHours[c]
}
