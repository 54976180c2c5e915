package rules

import (
	"github.com/gpukit/hlo-lower/gpurt"
	"github.com/gpukit/hlo-lower/hlo"
	"github.com/gpukit/hlo-lower/lower"
)

// RegisterInfeedOutfeed contributes the host data feed lowerings.
func RegisterInfeedOutfeed(reg *lower.Registry, conv *lower.TypeConverter) {
	reg.Add(streamedPattern("lower-infeed", hlo.KindInfeed, gpurt.KindInfeed))
	reg.Add(streamedPattern("lower-outfeed", hlo.KindOutfeed, gpurt.KindOutfeed))
}
