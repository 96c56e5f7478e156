package model

// Setting holds the global dispenser timing characteristics. It is a
// singleton, created with defaults on first read.
type Setting struct {
	// DispenserEmptyingTime is the time in seconds needed to discharge one
	// unit of volume from a measuring cup.
	DispenserEmptyingTime float64 `json:"dispenserEmptyingTime" bson:"dispenser_emptying_time"`
	// DispenserFillingTime is the time in seconds needed to refill one unit
	// of volume, applied as the delay between consecutive doses.
	DispenserFillingTime float64 `json:"dispenserFillingTime" bson:"dispenser_filling_time"`
}

// DefaultSetting is persisted the first time settings are read.
var DefaultSetting = Setting{
	DispenserEmptyingTime: 2,
	DispenserFillingTime:  3,
}
